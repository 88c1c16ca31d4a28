package repository

import (
	"context"

	"github.com/smallbiznis/malipo/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is a thin generic store for models that only need query-by-example
// access. Domain packages with richer queries keep their own repositories.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Count(ctx context.Context, query *T) (int64, error)
}
