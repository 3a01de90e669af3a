package flow

import (
	"errors"
	"fmt"
)

// Error kinds for the mass-flow formulas.
var (
	// ErrDomain indicates a physically invalid input, such as a negative radicand.
	ErrDomain = errors.New("flow: input outside physical domain")

	// ErrShape indicates dependent curves sampled on different grids.
	ErrShape = errors.New("flow: curve shape mismatch")

	// ErrEmptyInput indicates a curve with no samples.
	ErrEmptyInput = errors.New("flow: empty input")
)

// DomainError reports which quantity made a formula invalid.
type DomainError struct {
	Model  string
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("flow: %s: %s", e.Model, e.Reason)
}

func (e *DomainError) Unwrap() error {
	return ErrDomain
}

func domainErr(model, format string, args ...interface{}) error {
	return &DomainError{Model: model, Reason: fmt.Sprintf(format, args...)}
}

type ShapeError struct {
	Left, Right int
	Reason      string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("flow: shape mismatch (%d vs %d): %s", e.Left, e.Right, e.Reason)
}

func (e *ShapeError) Unwrap() error {
	return ErrShape
}

type EmptyInputError struct {
	What string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("flow: %s has no samples", e.What)
}

func (e *EmptyInputError) Unwrap() error {
	return ErrEmptyInput
}
