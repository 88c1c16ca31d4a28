package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id snowflake.ID) (*Response, error)
	// Cancel moves a draft or processing run to cancelled. Cancelling an
	// already-cancelled run is a no-op.
	Cancel(ctx context.Context, id snowflake.ID) error
	// SupplyInput records one staff member's value for an input-kind
	// component ahead of a run. Re-supplying replaces the previous value.
	SupplyInput(ctx context.Context, id snowflake.ID, staffNumber, variable string, value decimal.Decimal) error
	// Run executes the component chain for every active staff member in
	// staff-number order, streaming one StaffResult per staff. The returned
	// channel is closed once the run reaches a terminal status.
	Run(ctx context.Context, id snowflake.ID) (<-chan StaffResult, error)
}

type CreateRequest struct {
	CompanyID   string    `json:"company_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Notes       *string   `json:"notes,omitempty"`
	GeneratedBy *string   `json:"generated_by,omitempty"`
}

type Response struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Status      Status    `json:"status"`
	Notes       *string   `json:"notes,omitempty"`
	GeneratedBy *string   `json:"generated_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
