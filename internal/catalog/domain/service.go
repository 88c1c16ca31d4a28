package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, companyID snowflake.ID) ([]Response, error)
	// Applicable selects, per variable, the most recent version with
	// effective_from at or before asOf, ordered ascending by sort order.
	Applicable(ctx context.Context, companyID snowflake.ID, asOf time.Time) ([]PayrollCode, error)
}

type CreateRequest struct {
	CompanyID     string           `json:"company_id"`
	Name          string           `json:"name"`
	Description   *string          `json:"description,omitempty"`
	Variable      string           `json:"variable"`
	Kind          CodeKind         `json:"kind"`
	Tags          []string         `json:"tags,omitempty"`
	Value         *decimal.Decimal `json:"value,omitempty"`
	Formula       *string          `json:"formula,omitempty"`
	Order         int              `json:"order"`
	EffectiveFrom time.Time        `json:"effective_from"`
}

type Response struct {
	ID            string           `json:"id"`
	CompanyID     string           `json:"company_id"`
	Name          string           `json:"name"`
	Description   *string          `json:"description,omitempty"`
	Variable      string           `json:"variable"`
	Kind          CodeKind         `json:"kind"`
	Tags          []string         `json:"tags,omitempty"`
	Value         *decimal.Decimal `json:"value,omitempty"`
	Formula       *string          `json:"formula,omitempty"`
	Order         int              `json:"order"`
	EffectiveFrom time.Time        `json:"effective_from"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
