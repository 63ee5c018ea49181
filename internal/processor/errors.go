package processor

import (
	"errors"
	"fmt"
)

var (
	// ErrInternalComputation marks a result that violated a physical
	// invariant. It is a server fault; the client's circuit was valid.
	ErrInternalComputation = errors.New("internal computation error")

	// ErrTooManyQubits is returned when a circuit exceeds the configured
	// width limit.
	ErrTooManyQubits = errors.New("too many qubits")
)

// ComputationError describes which reduced matrix failed and why.
type ComputationError struct {
	Qubit  int
	Trace  complex128
	Reason string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%v: qubit %d: %s (trace %v)", ErrInternalComputation, e.Qubit, e.Reason, e.Trace)
}

func (e *ComputationError) Unwrap() error { return ErrInternalComputation }
