package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	banddomain "github.com/smallbiznis/malipo/internal/band/domain"
	"github.com/smallbiznis/malipo/internal/config"
	"gorm.io/gorm"
)

// EnsureStatutoryBands seeds the configured tax and contribution brackets so
// a fresh install can run a computation out of the box. Existing rows with
// the same kind, frequency, lower bound and period start are left untouched.
func EnsureStatutoryBands(db *gorm.DB, cfg config.StatutoryConfig) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	periodStart, err := time.Parse("2006-01-02", cfg.EffectiveFrom)
	if err != nil {
		return err
	}
	periodEnd, err := time.Parse("2006-01-02", cfg.EffectiveTo)
	if err != nil {
		return err
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, band := range cfg.Bands {
			if err := ensureBandTx(ctx, tx, node, band, periodStart, periodEnd); err != nil {
				return err
			}
		}
		return nil
	})
}

func ensureBandTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, band config.StatutoryBand, periodStart, periodEnd time.Time) error {
	var existing banddomain.Band
	err := tx.WithContext(ctx).
		Where("kind = ? AND frequency = ? AND lower = ? AND period_start = ?",
			band.Kind, band.Frequency, decimal.NewFromFloat(band.Lower), periodStart).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var upper *decimal.Decimal
	if band.Upper != nil {
		u := decimal.NewFromFloat(*band.Upper)
		upper = &u
	}

	now := time.Now().UTC()
	row := banddomain.Band{
		ID:          node.Generate(),
		Kind:        banddomain.BandKind(band.Kind),
		Frequency:   banddomain.BandFrequency(band.Frequency),
		Lower:       decimal.NewFromFloat(band.Lower),
		Upper:       upper,
		Rate:        decimal.NewFromFloat(band.Rate),
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := row.Validate(); err != nil {
		return err
	}
	return tx.WithContext(ctx).Create(&row).Error
}
