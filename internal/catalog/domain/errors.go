package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCompany     = errors.New("invalid_company")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidVariable    = errors.New("invalid_variable")
	ErrInvalidKind        = errors.New("invalid_kind")
	ErrInvalidOrder       = errors.New("invalid_order")
	ErrMissingValue       = errors.New("fixed_component_requires_value")
	ErrUnexpectedValue    = errors.New("formula_component_forbids_value")
	ErrMissingFormula     = errors.New("formula_component_requires_formula")
	ErrUnexpectedFormula  = errors.New("fixed_component_forbids_formula")
	ErrInputHasDefinition = errors.New("input_component_forbids_value_and_formula")
	ErrDuplicateOrder     = errors.New("duplicate_company_order_effective_from")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")
)

// AmbiguousVersionError reports two catalog rows for one variable sharing the
// same greatest effective_from at or before the as-of date.
type AmbiguousVersionError struct {
	Variable string
}

func (e *AmbiguousVersionError) Error() string {
	return fmt.Sprintf("ambiguous catalog version for variable %q", e.Variable)
}

// UnknownReferenceError reports a formula referencing a name that no
// earlier-order component or band seed introduces.
type UnknownReferenceError struct {
	Formula string
	Name    string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("formula %q references %q which no earlier-order component or band seed provides", e.Formula, e.Name)
}
