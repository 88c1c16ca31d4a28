package formula

import "github.com/shopspring/decimal"

// Seed variable names available to every formula before any component binds.
const (
	TaxBandsVar          = "tax_bands"
	ContributionBandsVar = "contribution_bands"
)

// Bracket is one progressive-rate interval. A nil Upper means unbounded.
// Rate is a percentage (10.00 means 10%).
type Bracket struct {
	Lower decimal.Decimal
	Upper *decimal.Decimal
	Rate  decimal.Decimal
}

// Value is either a number or a band table. The zero Value is the number 0.
type Value struct {
	num    decimal.Decimal
	bands  []Bracket
	banded bool
}

func NumberValue(d decimal.Decimal) Value {
	return Value{num: d}
}

func BandsValue(b []Bracket) Value {
	return Value{bands: b, banded: true}
}

func (v Value) IsBands() bool { return v.banded }

func (v Value) Number() decimal.Decimal { return v.num }

func (v Value) Bands() []Bracket { return v.bands }

// Env is the per-staff, per-run variable environment. It grows as components
// are evaluated in order; formulas may only read what was bound before them.
type Env struct {
	vars map[string]Value
}

func NewEnv() *Env {
	return &Env{vars: make(map[string]Value)}
}

// Bind binds a numeric variable, replacing any previous binding.
func (e *Env) Bind(name string, d decimal.Decimal) {
	e.vars[name] = NumberValue(d)
}

// BindBands binds a band table variable.
func (e *Env) BindBands(name string, brackets []Bracket) {
	e.vars[name] = BandsValue(brackets)
}

func (e *Env) Lookup(name string) (Value, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Numbers returns the numeric bindings only, for surfacing results.
func (e *Env) Numbers() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(e.vars))
	for name, v := range e.vars {
		if !v.IsBands() {
			out[name] = v.Number()
		}
	}
	return out
}
