package formula

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// Statutory monthly tax brackets used across the evaluator tests.
func taxBands() []Bracket {
	return []Bracket{
		{Lower: dec("0"), Upper: decPtr("24000"), Rate: dec("10")},
		{Lower: dec("24000"), Upper: decPtr("32333"), Rate: dec("25")},
		{Lower: dec("32333"), Upper: nil, Rate: dec("30")},
	}
}

func TestEvaluate_Arithmetic(t *testing.T) {
	env := NewEnv()
	env.Bind("gross_pay", dec("600000"))

	cases := []struct {
		name    string
		formula string
		want    string
	}{
		{"rate times variable", "0.015 * gross_pay", "9000"},
		{"chained subtraction", "gross_pay - 100 - 200", "599700"},
		{"parentheses", "(gross_pay + 400) / 2", "300200"},
		{"unary minus", "-gross_pay + 600001", "1"},
		{"precedence", "2 + 3 * 4", "14"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Evaluate(tc.formula, env)
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestEvaluate_UndefinedVariable(t *testing.T) {
	env := NewEnv()
	env.Bind("basic_salary", dec("500000"))

	_, err := Evaluate("basic_salary - personal_relief_monthly", env)
	var undefErr *UndefinedVariableError
	require.ErrorAs(t, err, &undefErr)
	assert.Equal(t, "personal_relief_monthly", undefErr.Name)
}

func TestEvaluate_DivisionByZero(t *testing.T) {
	env := NewEnv()
	env.Bind("x", dec("10"))

	_, err := Evaluate("x / 0", env)
	var divErr *DivisionByZeroError
	assert.ErrorAs(t, err, &divErr)
}

func TestEvaluate_TypeMismatch(t *testing.T) {
	env := NewEnv()
	env.Bind("gross_pay", dec("40000"))
	env.BindBands(TaxBandsVar, taxBands())

	t.Run("bands in arithmetic", func(t *testing.T) {
		_, err := Evaluate("gross_pay + tax_bands", env)
		var typeErr *TypeMismatchError
		assert.ErrorAs(t, err, &typeErr)
	})

	t.Run("number where bands expected", func(t *testing.T) {
		_, err := Evaluate("progressive_tax(gross_pay, gross_pay)", env)
		var typeErr *TypeMismatchError
		assert.ErrorAs(t, err, &typeErr)
	})

	t.Run("bare band table result", func(t *testing.T) {
		_, err := Evaluate("tax_bands", env)
		var typeErr *TypeMismatchError
		assert.ErrorAs(t, err, &typeErr)
	})
}

func TestParse_RejectsOutsideGrammar(t *testing.T) {
	cases := []struct {
		name    string
		formula string
	}{
		{"call to non-builtin", "__import__(1, 2)"},
		{"attribute access", "os.system"},
		{"string literal", `"rm -rf" * 2`},
		{"comparison", "a > b"},
		{"wrong arity", "progressive_tax(income)"},
		{"empty", ""},
		{"dangling operator", "1 +"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.formula)
			assert.Error(t, err)
		})
	}
}

func TestParse_Variables(t *testing.T) {
	expr, err := Parse("gross_paye - personal_relief_monthly - affordable_housing_relief")
	require.NoError(t, err)
	assert.Equal(t, []string{"affordable_housing_relief", "gross_paye", "personal_relief_monthly"}, expr.Variables())

	expr, err = Parse("progressive_tax(taxable_income, tax_bands)")
	require.NoError(t, err)
	assert.Equal(t, []string{"tax_bands", "taxable_income"}, expr.Variables())
}

func TestProgressiveTax_BracketWalk(t *testing.T) {
	env := NewEnv()
	env.BindBands(TaxBandsVar, taxBands())
	env.Bind("taxable_income", dec("40000"))

	// 24000*10% + 8333*25% + 7667*30% = 2400 + 2083.25 + 2300.10
	got, err := Evaluate("progressive_tax(taxable_income, tax_bands)", env)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("6783.35")), "got %s", got)
}

func TestProgressiveTax_FirstBracketOnly(t *testing.T) {
	env := NewEnv()
	env.BindBands(TaxBandsVar, taxBands())
	env.Bind("taxable_income", dec("20000"))

	got, err := Evaluate("progressive_tax(taxable_income, tax_bands)", env)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("2000")), "got %s", got)
}

func TestProgressiveTax_EmptyBandsYieldsZero(t *testing.T) {
	env := NewEnv()
	env.BindBands(TaxBandsVar, nil)
	env.BindBands(ContributionBandsVar, nil)
	env.Bind("amount", dec("123456.78"))

	tax, err := Evaluate("progressive_tax(amount, tax_bands)", env)
	require.NoError(t, err)
	assert.True(t, tax.IsZero())

	contrib, err := Evaluate("progressive_contribution(amount, contribution_bands)", env)
	require.NoError(t, err)
	assert.True(t, contrib.IsZero())
}

func TestProgressiveTax_MonotoneAndContinuous(t *testing.T) {
	env := NewEnv()
	env.BindBands(TaxBandsVar, taxBands())

	// Non-decreasing in the first argument.
	prev := decimal.Zero
	for _, income := range []string{"0", "10000", "24000", "24000.01", "32333", "40000", "1000000"} {
		env.Bind("income", dec(income))
		got, err := Evaluate("progressive_tax(income, tax_bands)", env)
		require.NoError(t, err)
		assert.True(t, got.GreaterThanOrEqual(prev), "tax decreased at income %s", income)
		prev = got
	}

	// Value at a bracket's upper equals entering the next bracket at its lower.
	env.Bind("income", dec("24000"))
	atUpper, err := Evaluate("progressive_tax(income, tax_bands)", env)
	require.NoError(t, err)

	entering := progressiveAmount(dec("24000"), taxBands()[1:2])
	assert.True(t, atUpper.Equal(dec("2400")))
	assert.True(t, entering.IsZero(), "entering bracket at its lower must add nothing, got %s", entering)
}

func TestEnv_NumbersExcludesBandSeeds(t *testing.T) {
	env := NewEnv()
	env.BindBands(TaxBandsVar, taxBands())
	env.Bind("basic_salary", dec("500000"))

	nums := env.Numbers()
	assert.Len(t, nums, 1)
	assert.True(t, nums["basic_salary"].Equal(dec("500000")))
}
