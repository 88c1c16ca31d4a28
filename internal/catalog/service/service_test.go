package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/malipo/internal/catalog/domain"
	catalogrepository "github.com/smallbiznis/malipo/internal/catalog/repository"
	"github.com/smallbiznis/malipo/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCatalogService(t *testing.T) (catalogdomain.Service, snowflake.ID) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&catalogdomain.PayrollCode{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  catalogrepository.Provide(),
	})
	return svc, node.Generate()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string { return &s }

func effective(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func TestCreateKindPairing(t *testing.T) {
	svc, companyID := setupCatalogService(t)
	ctx := context.Background()

	base := catalogdomain.CreateRequest{
		CompanyID:     companyID.String(),
		Name:          "Basic Salary",
		Variable:      "basic_salary",
		Order:         10,
		EffectiveFrom: effective(2023, 7, 1),
	}

	cases := []struct {
		name   string
		mutate func(req *catalogdomain.CreateRequest)
		want   error
	}{
		{
			name: "input with a value",
			mutate: func(req *catalogdomain.CreateRequest) {
				req.Kind = catalogdomain.CodeKindInput
				req.Value = decPtr("100")
			},
			want: catalogdomain.ErrInputHasDefinition,
		},
		{
			name: "fixed without a value",
			mutate: func(req *catalogdomain.CreateRequest) {
				req.Kind = catalogdomain.CodeKindFixed
			},
			want: catalogdomain.ErrMissingValue,
		},
		{
			name: "formula without a formula",
			mutate: func(req *catalogdomain.CreateRequest) {
				req.Kind = catalogdomain.CodeKindFormula
			},
			want: catalogdomain.ErrMissingFormula,
		},
		{
			name: "formula with a value",
			mutate: func(req *catalogdomain.CreateRequest) {
				req.Kind = catalogdomain.CodeKindFormula
				req.Formula = strPtr("1 + 1")
				req.Value = decPtr("100")
			},
			want: catalogdomain.ErrUnexpectedValue,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			_, err := svc.Create(ctx, req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateRejectsUnknownReference(t *testing.T) {
	svc, companyID := setupCatalogService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, catalogdomain.CreateRequest{
		CompanyID:     companyID.String(),
		Name:          "Basic Salary",
		Variable:      "basic_salary",
		Kind:          catalogdomain.CodeKindInput,
		Order:         10,
		EffectiveFrom: effective(2023, 7, 1),
	})
	require.NoError(t, err)

	// References an earlier-order variable and a band seed: accepted.
	_, err = svc.Create(ctx, catalogdomain.CreateRequest{
		CompanyID:     companyID.String(),
		Name:          "PAYE",
		Variable:      "paye",
		Kind:          catalogdomain.CodeKindFormula,
		Formula:       strPtr("progressive_tax(basic_salary, tax_bands)"),
		Order:         20,
		EffectiveFrom: effective(2023, 7, 1),
	})
	require.NoError(t, err)

	// References a name nothing introduces: rejected.
	_, err = svc.Create(ctx, catalogdomain.CreateRequest{
		CompanyID:     companyID.String(),
		Name:          "Net Pay",
		Variable:      "net_pay",
		Kind:          catalogdomain.CodeKindFormula,
		Formula:       strPtr("basic_salary - paye - mystery_levy"),
		Order:         30,
		EffectiveFrom: effective(2023, 7, 1),
	})
	var unknown *catalogdomain.UnknownReferenceError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "mystery_levy", unknown.Name)

	// A variable introduced at the same order is not an earlier one.
	_, err = svc.Create(ctx, catalogdomain.CreateRequest{
		CompanyID:     companyID.String(),
		Name:          "Shadow",
		Variable:      "shadow",
		Kind:          catalogdomain.CodeKindFormula,
		Formula:       strPtr("paye * 2"),
		Order:         20,
		EffectiveFrom: effective(2023, 8, 1),
	})
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "paye", unknown.Name)
}

func TestCreateRejectsDuplicateOrder(t *testing.T) {
	svc, companyID := setupCatalogService(t)
	ctx := context.Background()

	req := catalogdomain.CreateRequest{
		CompanyID:     companyID.String(),
		Name:          "House Allowance",
		Variable:      "house_allowance",
		Kind:          catalogdomain.CodeKindFixed,
		Value:         decPtr("15000"),
		Order:         10,
		EffectiveFrom: effective(2023, 7, 1),
	}
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	req.Name = "Transport Allowance"
	req.Variable = "transport_allowance"
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, catalogdomain.ErrDuplicateOrder)
}

func TestApplicableSelectsLatestVersionPerVariable(t *testing.T) {
	svc, companyID := setupCatalogService(t)
	ctx := context.Background()

	versions := []struct {
		value string
		order int
		from  time.Time
	}{
		{value: "15000", order: 10, from: effective(2023, 7, 1)},
		{value: "18000", order: 10, from: effective(2024, 1, 1)},
		{value: "21000", order: 10, from: effective(2024, 6, 1)},
	}
	for _, v := range versions {
		_, err := svc.Create(ctx, catalogdomain.CreateRequest{
			CompanyID:     companyID.String(),
			Name:          "House Allowance",
			Variable:      "house_allowance",
			Kind:          catalogdomain.CodeKindFixed,
			Value:         decPtr(v.value),
			Order:         v.order,
			EffectiveFrom: v.from,
		})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, catalogdomain.CreateRequest{
		CompanyID:     companyID.String(),
		Name:          "Bonus",
		Variable:      "bonus",
		Kind:          catalogdomain.CodeKindFixed,
		Value:         decPtr("5000"),
		Order:         5,
		EffectiveFrom: effective(2023, 7, 1),
	})
	require.NoError(t, err)

	codes, err := svc.Applicable(ctx, companyID, effective(2024, 3, 1))
	require.NoError(t, err)
	require.Len(t, codes, 2)

	// Ascending by order, each variable at its newest effective version.
	assert.Equal(t, "bonus", codes[0].Variable)
	assert.Equal(t, "house_allowance", codes[1].Variable)
	assert.True(t, codes[1].Value.Equal(dec("18000")), "got %s", codes[1].Value)

	codes, err = svc.Applicable(ctx, companyID, effective(2024, 7, 1))
	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.True(t, codes[1].Value.Equal(dec("21000")), "got %s", codes[1].Value)
}

func TestApplicableRejectsAmbiguousVersions(t *testing.T) {
	svc, companyID := setupCatalogService(t)
	ctx := context.Background()

	// Same variable, same effective date, different orders: the unique index
	// cannot catch this, Applicable must.
	for _, order := range []int{10, 20} {
		_, err := svc.Create(ctx, catalogdomain.CreateRequest{
			CompanyID:     companyID.String(),
			Name:          "Basic Salary",
			Variable:      "basic_salary",
			Kind:          catalogdomain.CodeKindInput,
			Order:         order,
			EffectiveFrom: effective(2023, 7, 1),
		})
		require.NoError(t, err)
	}

	_, err := svc.Applicable(ctx, companyID, effective(2024, 1, 1))
	var ambiguous *catalogdomain.AmbiguousVersionError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, "basic_salary", ambiguous.Variable)
}
