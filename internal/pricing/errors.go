package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is the single failure kind of the pricer.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoConvergence is returned by ImpliedVol when the solver gives up.
	ErrNoConvergence = errors.New("implied vol did not converge")
)

// InputError names the offending field. It matches ErrInvalidInput under errors.Is.
type InputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InputError) Error() string {
	if e.Value == 0 {
		return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid input: %s=%g %s", e.Field, e.Value, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }
