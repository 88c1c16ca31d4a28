package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	computationdomain "github.com/smallbiznis/malipo/internal/computation/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() computationdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, computation *computationdomain.Computation) error {
	return db.WithContext(ctx).Create(computation).Error
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, id snowflake.ID) (*computationdomain.Computation, error) {
	var computation computationdomain.Computation
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&computation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, computationdomain.ErrNotFound
		}
		return nil, err
	}
	return &computation, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from []computationdomain.Status, to computationdomain.Status, at time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&computationdomain.Computation{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) UpsertComponent(ctx context.Context, db *gorm.DB, component *computationdomain.ComputationComponent) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "computation_id"},
				{Name: "payroll_code_id"},
				{Name: "staff_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(component).Error
}

func (r *repo) FindComponent(ctx context.Context, db *gorm.DB, computationID, payrollCodeID, staffID snowflake.ID) (*computationdomain.ComputationComponent, error) {
	var component computationdomain.ComputationComponent
	err := db.WithContext(ctx).
		Where("computation_id = ? AND payroll_code_id = ? AND staff_id = ?", computationID, payrollCodeID, staffID).
		First(&component).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &component, nil
}

func (r *repo) ListComponents(ctx context.Context, db *gorm.DB, computationID snowflake.ID) ([]computationdomain.ComputationComponent, error) {
	var components []computationdomain.ComputationComponent
	err := db.WithContext(ctx).
		Where("computation_id = ?", computationID).
		Order("staff_id ASC, payroll_code_id ASC").
		Find(&components).Error
	if err != nil {
		return nil, err
	}
	return components, nil
}
