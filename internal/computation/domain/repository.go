package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, computation *Computation) error
	Find(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Computation, error)
	// UpdateStatus performs a guarded transition: the row moves to the new
	// status only if its current status is one of from. Returns false when
	// the guard did not match, so callers can distinguish lost races.
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from []Status, to Status, at time.Time) (bool, error)

	// UpsertComponent inserts or, on the (run, code, staff) key, replaces the
	// stored value. This is what makes re-runs idempotent.
	UpsertComponent(ctx context.Context, db *gorm.DB, component *ComputationComponent) error
	// FindComponent returns nil without error when no row exists.
	FindComponent(ctx context.Context, db *gorm.DB, computationID, payrollCodeID, staffID snowflake.ID) (*ComputationComponent, error)
	ListComponents(ctx context.Context, db *gorm.DB, computationID snowflake.ID) ([]ComputationComponent, error)
}
