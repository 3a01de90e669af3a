package fluid

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSubstance indicates no backend is registered under the name.
	ErrUnknownSubstance = errors.New("fluid: unknown substance")

	// ErrUnsupportedInputs indicates the pair of state variables cannot be resolved.
	ErrUnsupportedInputs = errors.New("fluid: unsupported input pair")

	// ErrOutOfRange indicates an input outside the backend envelope.
	ErrOutOfRange = errors.New("fluid: input outside valid range")

	// ErrSupercritical indicates a state at or above the critical point.
	ErrSupercritical = errors.New("fluid: state at or above the critical point")
)

// LookupError wraps a failed property lookup with the query that caused it.
type LookupError struct {
	Substance string
	Inputs    [2]Input
	Wrapped   error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("fluid: lookup %s(%s, %s): %v", e.Substance, e.Inputs[0], e.Inputs[1], e.Wrapped)
}

func (e *LookupError) Unwrap() error {
	return e.Wrapped
}

func outOfRange(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrOutOfRange, fmt.Sprintf(format, args...))
}

func supercritical(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSupercritical, fmt.Sprintf(format, args...))
}
