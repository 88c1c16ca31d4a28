package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	// Lookup returns the brackets valid at asOf for one kind and frequency,
	// ascending by lower bound. An empty result is legal and yields a zero
	// banded calculation downstream.
	Lookup(ctx context.Context, kind BandKind, frequency BandFrequency, asOf time.Time) ([]Band, error)
}

type CreateRequest struct {
	Kind        BandKind         `json:"kind"`
	Frequency   BandFrequency    `json:"frequency"`
	Lower       decimal.Decimal  `json:"lower"`
	Upper       *decimal.Decimal `json:"upper,omitempty"`
	Rate        decimal.Decimal  `json:"rate"`
	PeriodStart time.Time        `json:"period_start"`
	PeriodEnd   time.Time        `json:"period_end"`
}

type Response struct {
	ID          string           `json:"id"`
	Kind        BandKind         `json:"kind"`
	Frequency   BandFrequency    `json:"frequency"`
	Lower       decimal.Decimal  `json:"lower"`
	Upper       *decimal.Decimal `json:"upper,omitempty"`
	Rate        decimal.Decimal  `json:"rate"`
	PeriodStart time.Time        `json:"period_start"`
	PeriodEnd   time.Time        `json:"period_end"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
