package formula

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// Eval evaluates the formula against env. The result must be numeric; a
// formula that resolves to a bare band table is a type mismatch.
func (e *Expr) Eval(env *Env) (decimal.Decimal, error) {
	v, err := e.root.eval(env)
	if err != nil {
		return decimal.Zero, err
	}
	if v.IsBands() {
		return decimal.Zero, &TypeMismatchError{Msg: "formula result is a band table, not a number"}
	}
	return v.Number(), nil
}

type node interface {
	eval(env *Env) (Value, error)
}

type numberNode struct {
	val decimal.Decimal
}

func (n *numberNode) eval(*Env) (Value, error) {
	return NumberValue(n.val), nil
}

type variableNode struct {
	name string
}

func (n *variableNode) eval(env *Env) (Value, error) {
	v, ok := env.Lookup(n.name)
	if !ok {
		return Value{}, &UndefinedVariableError{Name: n.name}
	}
	return v, nil
}

type negateNode struct {
	operand node
}

func (n *negateNode) eval(env *Env) (Value, error) {
	v, err := n.operand.eval(env)
	if err != nil {
		return Value{}, err
	}
	if v.IsBands() {
		return Value{}, &TypeMismatchError{Msg: "cannot negate a band table"}
	}
	return NumberValue(v.Number().Neg()), nil
}

type binaryNode struct {
	op    tokenKind
	left  node
	right node
}

func (n *binaryNode) eval(env *Env) (Value, error) {
	left, err := n.left.eval(env)
	if err != nil {
		return Value{}, err
	}
	right, err := n.right.eval(env)
	if err != nil {
		return Value{}, err
	}
	if left.IsBands() || right.IsBands() {
		return Value{}, &TypeMismatchError{Msg: "band tables cannot appear in arithmetic"}
	}

	l, r := left.Number(), right.Number()
	switch n.op {
	case tokenPlus:
		return NumberValue(l.Add(r)), nil
	case tokenMinus:
		return NumberValue(l.Sub(r)), nil
	case tokenStar:
		return NumberValue(l.Mul(r)), nil
	case tokenSlash:
		if r.IsZero() {
			return Value{}, &DivisionByZeroError{}
		}
		return NumberValue(l.Div(r)), nil
	}
	return Value{}, &SyntaxError{Msg: "unknown operator"}
}

type callNode struct {
	fn     string
	amount node
	bands  node
}

func (n *callNode) eval(env *Env) (Value, error) {
	amount, err := n.amount.eval(env)
	if err != nil {
		return Value{}, err
	}
	if amount.IsBands() {
		return Value{}, &TypeMismatchError{Msg: n.fn + " first argument must be a number"}
	}
	bands, err := n.bands.eval(env)
	if err != nil {
		return Value{}, err
	}
	if !bands.IsBands() {
		return Value{}, &TypeMismatchError{Msg: n.fn + " second argument must be a band table"}
	}
	return NumberValue(progressiveAmount(amount.Number(), bands.Bands())), nil
}

// progressiveAmount walks brackets ascending by lower bound. For every bracket
// the amount clears it accumulates the full marginal slice; the first bracket
// containing the amount contributes the partial slice and ends the walk. An
// empty table yields zero.
func progressiveAmount(amount decimal.Decimal, brackets []Bracket) decimal.Decimal {
	total := decimal.Zero
	for _, b := range brackets {
		if b.Upper != nil && amount.GreaterThan(*b.Upper) {
			total = total.Add(b.Upper.Sub(b.Lower).Mul(b.Rate).Div(oneHundred))
			continue
		}
		total = total.Add(amount.Sub(b.Lower).Mul(b.Rate).Div(oneHundred))
		break
	}
	return total
}
