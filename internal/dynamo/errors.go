package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfiguration indicates parameters that make a run impossible
	// (theta <= 0, softening < 0, dt <= 0, G <= 0 or N == 0).
	ErrInvalidConfiguration = errors.New("dynamo: invalid configuration")

	// ErrInvalidGeometry indicates a non-finite particle position at tree-build time.
	ErrInvalidGeometry = errors.New("dynamo: invalid geometry (NaN or Inf position)")

	// ErrNumericalInstability indicates integration produced a non-finite position or velocity.
	ErrNumericalInstability = errors.New("dynamo: numerical instability (state diverged)")

	// ErrHalted is returned by a simulator that already failed a step.
	ErrHalted = errors.New("dynamo: simulation halted after a fatal error")
)

// SimulationError wraps an error with the step at which it surfaced.
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

// ParticleError ties a failure to one particle index.
type ParticleError struct {
	Index   int
	Wrapped error
}

func (e *ParticleError) Error() string {
	return fmt.Sprintf("particle %d: %v", e.Index, e.Wrapped)
}

func (e *ParticleError) Unwrap() error {
	return e.Wrapped
}
