package repository

import (
	"context"
	"time"

	banddomain "github.com/smallbiznis/malipo/internal/band/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() banddomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, band *banddomain.Band) error {
	return db.WithContext(ctx).Create(band).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]banddomain.Band, error) {
	var items []banddomain.Band
	err := db.WithContext(ctx).
		Model(&banddomain.Band{}).
		Order("kind ASC, frequency ASC, period_start ASC, lower ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListEffective(ctx context.Context, db *gorm.DB, kind banddomain.BandKind, frequency banddomain.BandFrequency, asOf time.Time) ([]banddomain.Band, error) {
	var items []banddomain.Band
	err := db.WithContext(ctx).
		Model(&banddomain.Band{}).
		Where("kind = ? AND frequency = ? AND period_start <= ? AND period_end >= ?", kind, frequency, asOf, asOf).
		Order("lower ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
