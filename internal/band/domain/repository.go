package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, band *Band) error
	List(ctx context.Context, db *gorm.DB) ([]Band, error)
	// ListEffective returns bands of one kind and frequency whose validity
	// window covers asOf, ordered ascending by lower bound.
	ListEffective(ctx context.Context, db *gorm.DB, kind BandKind, frequency BandFrequency, asOf time.Time) ([]Band, error)
}
