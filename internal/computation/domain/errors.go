package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCompany  = errors.New("invalid_company")
	ErrInvalidPeriod   = errors.New("invalid_period")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
	ErrRunInProgress   = errors.New("run_in_progress")
	ErrCancelled       = errors.New("computation_cancelled")
	ErrInvalidStatus   = errors.New("invalid_status_transition")
	ErrUnknownStaff    = errors.New("unknown_staff")
	ErrUnknownVariable = errors.New("unknown_variable")
	ErrNotInputKind    = errors.New("component_is_not_input_kind")
)

// MissingInputError reports an input-kind component with no supplied value
// for a staff member at run time.
type MissingInputError struct {
	StaffNumber string
	Variable    string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("no input value for %q supplied for staff %q", e.Variable, e.StaffNumber)
}

// ComponentError wraps an evaluation or persistence failure with the staff
// and component it occurred on.
type ComponentError struct {
	StaffNumber string
	Variable    string
	Err         error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("component %q for staff %q: %v", e.Variable, e.StaffNumber, e.Err)
}

func (e *ComponentError) Unwrap() error { return e.Err }
