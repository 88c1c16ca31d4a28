package formula

import "fmt"

// SyntaxError reports a formula that does not conform to the closed grammar.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("formula syntax error at offset %d: %s", e.Pos, e.Msg)
}

// UndefinedVariableError reports a reference to a name not bound in the environment.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable %q", e.Name)
}

// UnknownFunctionError reports a call to anything other than the two built-ins.
type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown function %q", e.Name)
}

// TypeMismatchError reports band values used in arithmetic or numbers passed
// where a band table is required.
type TypeMismatchError struct {
	Msg string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: %s", e.Msg)
}

// DivisionByZeroError reports a zero divisor during evaluation.
type DivisionByZeroError struct{}

func (e *DivisionByZeroError) Error() string {
	return "division by zero"
}
