package dynamo

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates a parameter value is outside its valid range.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrInvalidState indicates a state value with NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// ParameterError wraps ErrInvalidParameter with the parameter that failed.
type ParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s %s, got %g", ErrInvalidParameter, e.Name, e.Reason, e.Value)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// Positive returns a ParameterError unless v > 0.
func Positive(name string, v float64) error {
	if err := Finite(name, v); err != nil {
		return err
	}
	if v <= 0 {
		return &ParameterError{Name: name, Value: v, Reason: "must be positive"}
	}
	return nil
}

// NonNegative returns a ParameterError unless v >= 0.
func NonNegative(name string, v float64) error {
	if err := Finite(name, v); err != nil {
		return err
	}
	if v < 0 {
		return &ParameterError{Name: name, Value: v, Reason: "must not be negative"}
	}
	return nil
}

func Finite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ParameterError{Name: name, Value: v, Reason: "must be finite"}
	}
	return nil
}

// InRange checks lo <= v <= hi.
func InRange(name string, v, lo, hi float64) error {
	if err := Finite(name, v); err != nil {
		return err
	}
	if v < lo || v > hi {
		return &ParameterError{Name: name, Value: v, Reason: fmt.Sprintf("must be within [%g, %g]", lo, hi)}
	}
	return nil
}
