package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, code *PayrollCode) error
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]PayrollCode, error)
	// ListEffective returns every row with effective_from at or before asOf
	// for the company, ordered by variable then effective_from descending, so
	// the service can reduce to the latest version per variable.
	ListEffective(ctx context.Context, db *gorm.DB, companyID snowflake.ID, asOf time.Time) ([]PayrollCode, error)
	ExistsByOrderAndEffective(ctx context.Context, db *gorm.DB, companyID snowflake.ID, order int, effectiveFrom time.Time) (bool, error)
}
