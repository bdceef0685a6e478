package dynamo

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidState      = errors.New("dynamo: invalid state (NaN or Inf detected)")
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrParameterBounds and ErrUnknownParameter are returned by
	// Configurable systems.
	ErrParameterBounds  = errors.New("dynamo: parameter out of valid bounds")
	ErrUnknownParameter = errors.New("dynamo: unknown parameter")

	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")
	// ErrStepRejected comes with the step size to retry with.
	ErrStepRejected = errors.New("dynamo: adaptive step rejected")
)

// SimulationError records where in a run a step failed.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// CheckState verifies that x has exactly dim entries and holds only finite values.
func CheckState(x State, dim int) error {
	if len(x) != dim {
		return fmt.Errorf("%w: state has %d entries, want %d", ErrDimensionMismatch, len(x), dim)
	}
	if !x.IsValid() {
		return ErrInvalidState
	}
	return nil
}
