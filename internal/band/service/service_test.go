package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	banddomain "github.com/smallbiznis/malipo/internal/band/domain"
	bandrepository "github.com/smallbiznis/malipo/internal/band/repository"
	"github.com/smallbiznis/malipo/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupBandService(t *testing.T) banddomain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&banddomain.Band{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  bandrepository.Provide(),
	})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestLookupReturnsEffectiveBracketsAscending(t *testing.T) {
	svc := setupBandService(t)
	ctx := context.Background()

	start := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2033, 7, 1, 0, 0, 0, 0, time.UTC)

	// Inserted out of order on purpose.
	for _, req := range []banddomain.CreateRequest{
		{Kind: banddomain.BandKindTax, Frequency: banddomain.BandFrequencyMonthly, Lower: dec("24000"), Upper: decPtr("32333"), Rate: dec("25"), PeriodStart: start, PeriodEnd: end},
		{Kind: banddomain.BandKindTax, Frequency: banddomain.BandFrequencyMonthly, Lower: dec("0"), Upper: decPtr("24000"), Rate: dec("10"), PeriodStart: start, PeriodEnd: end},
		{Kind: banddomain.BandKindContribution, Frequency: banddomain.BandFrequencyMonthly, Lower: dec("0"), Upper: decPtr("7000"), Rate: dec("6"), PeriodStart: start, PeriodEnd: end},
	} {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	bands, err := svc.Lookup(ctx, banddomain.BandKindTax, banddomain.BandFrequencyMonthly, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, bands, 2)
	assert.True(t, bands[0].Lower.IsZero(), "got %s", bands[0].Lower)
	assert.True(t, bands[1].Lower.Equal(dec("24000")), "got %s", bands[1].Lower)
}

func TestLookupExcludesExpiredWindows(t *testing.T) {
	svc := setupBandService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, banddomain.CreateRequest{
		Kind:        banddomain.BandKindTax,
		Frequency:   banddomain.BandFrequencyMonthly,
		Lower:       dec("0"),
		Upper:       decPtr("10000"),
		Rate:        dec("10"),
		PeriodStart: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	bands, err := svc.Lookup(ctx, banddomain.BandKindTax, banddomain.BandFrequencyMonthly, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, bands)
}

func TestCreateValidation(t *testing.T) {
	svc := setupBandService(t)
	ctx := context.Background()

	start := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2033, 7, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		req  banddomain.CreateRequest
		want error
	}{
		{
			name: "unknown kind",
			req:  banddomain.CreateRequest{Kind: "LEVY", Frequency: banddomain.BandFrequencyMonthly, Lower: dec("0"), Rate: dec("10"), PeriodStart: start, PeriodEnd: end},
			want: banddomain.ErrInvalidKind,
		},
		{
			name: "upper not above lower",
			req:  banddomain.CreateRequest{Kind: banddomain.BandKindTax, Frequency: banddomain.BandFrequencyMonthly, Lower: dec("5000"), Upper: decPtr("5000"), Rate: dec("10"), PeriodStart: start, PeriodEnd: end},
			want: banddomain.ErrInvalidBounds,
		},
		{
			name: "inverted period",
			req:  banddomain.CreateRequest{Kind: banddomain.BandKindTax, Frequency: banddomain.BandFrequencyMonthly, Lower: dec("0"), Rate: dec("10"), PeriodStart: end, PeriodEnd: start},
			want: banddomain.ErrInvalidPeriod,
		},
		{
			name: "negative rate",
			req:  banddomain.CreateRequest{Kind: banddomain.BandKindTax, Frequency: banddomain.BandFrequencyMonthly, Lower: dec("0"), Rate: dec("-1"), PeriodStart: start, PeriodEnd: end},
			want: banddomain.ErrInvalidRate,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
