package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/malipo/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() catalogdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, code *catalogdomain.PayrollCode) error {
	return db.WithContext(ctx).Create(code).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]catalogdomain.PayrollCode, error) {
	var items []catalogdomain.PayrollCode
	err := db.WithContext(ctx).
		Model(&catalogdomain.PayrollCode{}).
		Where("company_id = ?", companyID).
		Order("sort_order ASC, effective_from ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListEffective(ctx context.Context, db *gorm.DB, companyID snowflake.ID, asOf time.Time) ([]catalogdomain.PayrollCode, error) {
	var items []catalogdomain.PayrollCode
	err := db.WithContext(ctx).
		Model(&catalogdomain.PayrollCode{}).
		Where("company_id = ? AND effective_from <= ?", companyID, asOf).
		Order("variable ASC, effective_from DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ExistsByOrderAndEffective(ctx context.Context, db *gorm.DB, companyID snowflake.ID, order int, effectiveFrom time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&catalogdomain.PayrollCode{}).
		Where("company_id = ? AND sort_order = ? AND effective_from = ?", companyID, order, effectiveFrom).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
