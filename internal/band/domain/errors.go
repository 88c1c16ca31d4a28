package domain

import "errors"

var (
	ErrInvalidKind      = errors.New("invalid_band_kind")
	ErrInvalidFrequency = errors.New("invalid_band_frequency")
	ErrInvalidBounds    = errors.New("invalid_band_bounds")
	ErrInvalidRate      = errors.New("invalid_band_rate")
	ErrInvalidPeriod    = errors.New("invalid_band_period")
	ErrInvalidID        = errors.New("invalid_id")
	ErrNotFound         = errors.New("not_found")
)
