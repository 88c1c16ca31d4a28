package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type CodeKind string

const (
	// CodeKindInput values arrive out-of-band (compensation upload) before a run.
	CodeKindInput CodeKind = "input"
	// CodeKindFixed values come straight from the catalog row.
	CodeKindFixed CodeKind = "fixed"
	// CodeKindFormula values are evaluated against earlier-order bindings.
	CodeKindFormula CodeKind = "formula"
)

// PayrollCode is one versioned payroll component definition. A change in
// behaviour is expressed as a new row with a later EffectiveFrom, never by
// mutating Kind/Value/Formula in place. SortOrder is the sole dependency
// ordering mechanism between components.
type PayrollCode struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	CompanyID snowflake.ID `json:"company_id" gorm:"column:company_id;not null;index;uniqueIndex:uq_payroll_codes_company_order_effective"`

	Name        string  `json:"name" gorm:"type:text;not null"`
	Description *string `json:"description,omitempty" gorm:"type:text"`

	// Variable is the identifier formulas reference this component by.
	Variable string                      `json:"variable" gorm:"type:text;not null;index:idx_payroll_codes_company_variable"`
	Kind     CodeKind                    `json:"kind" gorm:"type:text;not null"`
	Tags     datatypes.JSONSlice[string] `json:"tags,omitempty" gorm:"type:jsonb"`

	Value   *decimal.Decimal `json:"value,omitempty" gorm:"type:numeric(20,4)"`
	Formula *string          `json:"formula,omitempty" gorm:"type:text"`

	SortOrder     int       `json:"order" gorm:"column:sort_order;not null;uniqueIndex:uq_payroll_codes_company_order_effective"`
	EffectiveFrom time.Time `json:"effective_from" gorm:"column:effective_from;not null;uniqueIndex:uq_payroll_codes_company_order_effective"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PayrollCode) TableName() string { return "payroll_codes" }

// Validate enforces the kind/value/formula pairing at construction time.
func (c *PayrollCode) Validate() error {
	if c.CompanyID == 0 {
		return ErrInvalidCompany
	}
	if c.Name == "" {
		return ErrInvalidName
	}
	if c.Variable == "" {
		return ErrInvalidVariable
	}
	if c.SortOrder < 0 {
		return ErrInvalidOrder
	}
	switch c.Kind {
	case CodeKindInput:
		if c.Value != nil || c.Formula != nil {
			return ErrInputHasDefinition
		}
	case CodeKindFixed:
		if c.Value == nil {
			return ErrMissingValue
		}
		if c.Formula != nil {
			return ErrUnexpectedFormula
		}
	case CodeKindFormula:
		if c.Formula == nil || *c.Formula == "" {
			return ErrMissingFormula
		}
		if c.Value != nil {
			return ErrUnexpectedValue
		}
	default:
		return ErrInvalidKind
	}
	return nil
}
