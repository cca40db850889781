package control

import (
	"errors"
	"fmt"
)

// Domain errors for control evaluation.
var (
	// ErrInvalidTimestep indicates dt was zero or negative.
	ErrInvalidTimestep = errors.New("control: invalid timestep (dt must be > 0)")

	// ErrInvalidMeasurement indicates a NaN or Inf target, measurement or error.
	ErrInvalidMeasurement = errors.New("control: invalid measurement (NaN or Inf detected)")

	// ErrFilterComputation indicates a custom filter function failed.
	ErrFilterComputation = errors.New("control: filter computation failed")

	// ErrUnbuilt indicates Evaluate or Reset was called on a system that was never built.
	ErrUnbuilt = errors.New("control: control system not built")

	// ErrInvalidConfig indicates a configuration rejected at build time.
	ErrInvalidConfig = errors.New("control: invalid configuration")
)

// AxisError wraps an error with the axis that produced it.
type AxisError struct {
	Axis    Axis
	Wrapped error
}

func (e *AxisError) Error() string {
	return fmt.Sprintf("%s axis: %v", e.Axis, e.Wrapped)
}

func (e *AxisError) Unwrap() error {
	return e.Wrapped
}

// FilterError records which stage of a chain failed.
type FilterError struct {
	Stage   int
	Input   float64
	Wrapped error
}

func (e *FilterError) Error() string {
	if e.Wrapped == nil {
		return fmt.Sprintf("%v: stage %d (input %g)", ErrFilterComputation, e.Stage, e.Input)
	}
	return fmt.Sprintf("%v: stage %d (input %g): %v", ErrFilterComputation, e.Stage, e.Input, e.Wrapped)
}

// Unwrap exposes both the sentinel and the user function's own error.
func (e *FilterError) Unwrap() []error {
	if e.Wrapped == nil {
		return []error{ErrFilterComputation}
	}
	return []error{ErrFilterComputation, e.Wrapped}
}
