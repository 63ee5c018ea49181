package circuit

import (
	"errors"
	"fmt"
)

// Validation failures. Every error returned by Build unwraps to one of these.
var (
	ErrInvalidGateType  = errors.New("invalid gate type")
	ErrQubitOutOfRange  = errors.New("qubit index out of range")
	ErrMissingParameter = errors.New("missing parameter")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Error describes why a circuit description was rejected. Gate is the index
// of the offending gate, or -1 when the problem is at circuit level.
type Error struct {
	Kind  error
	Gate  int
	Field string
	Msg   string
}

func (e *Error) Error() string {
	if e.Gate < 0 {
		return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("gate %d: %v: %s", e.Gate, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

// Code returns a stable snake_case identifier for the error kind, suitable
// for API responses.
func (e *Error) Code() string {
	return Code(e.Kind)
}

// Code maps a validation sentinel to its API identifier.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidGateType):
		return "invalid_gate_type"
	case errors.Is(err, ErrQubitOutOfRange):
		return "qubit_index_out_of_range"
	case errors.Is(err, ErrMissingParameter):
		return "missing_parameter"
	case errors.Is(err, ErrInvalidParameter):
		return "invalid_parameter"
	default:
		return "unknown"
	}
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidGateType) ||
		errors.Is(err, ErrQubitOutOfRange) ||
		errors.Is(err, ErrMissingParameter) ||
		errors.Is(err, ErrInvalidParameter)
}

func gateErr(kind error, gate int, field, format string, args ...any) *Error {
	return &Error{Kind: kind, Gate: gate, Field: field, Msg: fmt.Sprintf(format, args...)}
}
