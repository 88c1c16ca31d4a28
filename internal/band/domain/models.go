package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/malipo/internal/formula"
)

type BandKind string

const (
	BandKindTax          BandKind = "TAX"
	BandKindContribution BandKind = "CONTRIBUTION"
)

type BandFrequency string

const (
	BandFrequencyMonthly BandFrequency = "MONTHLY"
	BandFrequencyAnnual  BandFrequency = "ANNUAL"
)

// Band is one progressive-rate bracket, valid for the period window. Upper is
// nil for the open-ended top bracket; Rate is a percentage (10.00 = 10%).
// Rows referenced by a completed computation must be treated as immutable.
type Band struct {
	ID snowflake.ID `json:"id" gorm:"primaryKey"`

	Kind      BandKind      `json:"kind" gorm:"type:text;not null;index:idx_bands_kind_frequency"`
	Frequency BandFrequency `json:"frequency" gorm:"type:text;not null;index:idx_bands_kind_frequency"`

	Lower decimal.Decimal  `json:"lower" gorm:"type:numeric(20,4);not null"`
	Upper *decimal.Decimal `json:"upper,omitempty" gorm:"type:numeric(20,4)"`
	Rate  decimal.Decimal  `json:"rate" gorm:"type:numeric(7,4);not null"`

	PeriodStart time.Time `json:"period_start" gorm:"column:period_start;not null"`
	PeriodEnd   time.Time `json:"period_end" gorm:"column:period_end;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Band) TableName() string { return "bands" }

func (b *Band) Validate() error {
	if b.Kind != BandKindTax && b.Kind != BandKindContribution {
		return ErrInvalidKind
	}
	if b.Frequency != BandFrequencyMonthly && b.Frequency != BandFrequencyAnnual {
		return ErrInvalidFrequency
	}
	if b.Lower.IsNegative() {
		return ErrInvalidBounds
	}
	if b.Upper != nil && !b.Upper.GreaterThan(b.Lower) {
		return ErrInvalidBounds
	}
	if b.Rate.IsNegative() {
		return ErrInvalidRate
	}
	if !b.PeriodEnd.After(b.PeriodStart) {
		return ErrInvalidPeriod
	}
	return nil
}

// Brackets converts band rows to evaluator brackets, preserving order.
func Brackets(bands []Band) []formula.Bracket {
	out := make([]formula.Bracket, 0, len(bands))
	for _, b := range bands {
		out = append(out, formula.Bracket{
			Lower: b.Lower,
			Upper: b.Upper,
			Rate:  b.Rate,
		})
	}
	return out
}
