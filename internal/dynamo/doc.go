// Package dynamo provides the shared primitives of the gravity simulator.
//
// The package defines the pieces every stage of a step agrees on:
//
//   - [Params]: the immutable per-run context (dt, softening, theta, G, N)
//   - vector helpers over [mgl64.Vec2] used for positions, velocities and accelerations
//   - the error taxonomy ([ErrInvalidConfiguration], [ErrInvalidGeometry],
//     [ErrNumericalInstability]) and [SimulationError]
//   - [ParallelFor], the chunked worker loop used by force evaluation and integration
//
// # Example
//
//	p := dynamo.DefaultParams(1000)
//	p.Theta = 0.6
//	if err := p.Validate(); err != nil {
//		return err
//	}
//
// # Thread Safety
//
// Params is a value type and is never mutated after validation, so one copy may be
// shared by any number of goroutines.
package dynamo
