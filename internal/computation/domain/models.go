package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	staffdomain "github.com/smallbiznis/malipo/internal/staff/domain"
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// RunnableStatuses are the states a run may start from. Completed and failed
// runs may be re-run; the upsert on components makes the re-run idempotent.
func RunnableStatuses() []Status {
	return []Status{StatusDraft, StatusCompleted, StatusFailed}
}

// Computation is one payroll run over a company's roster for a period.
// Status moves draft -> processing -> completed|failed; cancelled is reachable
// from draft and processing only.
type Computation struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	CompanyID snowflake.ID `json:"company_id" gorm:"column:company_id;not null;index"`

	PeriodStart time.Time `json:"period_start" gorm:"column:period_start;not null"`
	PeriodEnd   time.Time `json:"period_end" gorm:"column:period_end;not null"`

	Status      Status  `json:"status" gorm:"type:text;not null;default:draft"`
	Notes       *string `json:"notes,omitempty" gorm:"type:text"`
	GeneratedBy *string `json:"generated_by,omitempty" gorm:"column:generated_by;type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Computation) TableName() string { return "computations" }

func (c *Computation) Validate() error {
	if c.CompanyID == 0 {
		return ErrInvalidCompany
	}
	if !c.PeriodEnd.After(c.PeriodStart) {
		return ErrInvalidPeriod
	}
	return nil
}

// ComputationComponent is one persisted value: (run, code, staff) -> amount.
// The unique index makes re-runs converge instead of duplicating rows.
// Value is stored rounded to 2 decimal places.
type ComputationComponent struct {
	ID snowflake.ID `json:"id" gorm:"primaryKey"`

	ComputationID snowflake.ID `json:"computation_id" gorm:"column:computation_id;not null;uniqueIndex:uq_components_run_code_staff"`
	PayrollCodeID snowflake.ID `json:"payroll_code_id" gorm:"column:payroll_code_id;not null;uniqueIndex:uq_components_run_code_staff"`
	StaffID       snowflake.ID `json:"staff_id" gorm:"column:staff_id;not null;uniqueIndex:uq_components_run_code_staff"`

	Variable string          `json:"variable" gorm:"type:text;not null"`
	Value    decimal.Decimal `json:"value" gorm:"type:numeric(20,2);not null"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ComputationComponent) TableName() string { return "computation_components" }

// StaffResult is one roster entry's outcome, streamed in staff-number order.
// Values holds every variable bound for the staff, rounded to 2 decimal
// places; Err is set when the staff's chain failed and Values is nil.
type StaffResult struct {
	Staff  staffdomain.Staff
	Values map[string]decimal.Decimal
	Err    error
}
