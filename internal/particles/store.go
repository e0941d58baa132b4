// Package particles owns the mutable particle arrays of a simulation.
package particles

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bhsim/internal/dynamo"
)

// Store holds positions, velocities and masses for a fixed population.
// Integrators write into the next buffers and publish them with Commit, so a
// failed step never leaves a half-updated state behind.
type Store struct {
	pos  []mgl64.Vec2
	vel  []mgl64.Vec2
	mass []float64

	nextPos []mgl64.Vec2
	nextVel []mgl64.Vec2
}

// New copies the given arrays into a store. All slices must have the same
// length and every mass must be positive and finite.
func New(pos, vel []mgl64.Vec2, mass []float64) (*Store, error) {
	n := len(pos)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty particle set", dynamo.ErrInvalidConfiguration)
	}
	if len(vel) != n || len(mass) != n {
		return nil, fmt.Errorf("%w: mismatched lengths (pos=%d vel=%d mass=%d)",
			dynamo.ErrInvalidConfiguration, n, len(vel), len(mass))
	}
	for i, m := range mass {
		if !(m > 0) || math.IsInf(m, 0) {
			return nil, &dynamo.ParticleError{
				Index:   i,
				Wrapped: fmt.Errorf("%w: mass must be positive and finite, got %v", dynamo.ErrInvalidConfiguration, m),
			}
		}
	}

	s := &Store{
		pos:     dynamo.CloneVecs(pos),
		vel:     dynamo.CloneVecs(vel),
		mass:    make([]float64, n),
		nextPos: make([]mgl64.Vec2, n),
		nextVel: make([]mgl64.Vec2, n),
	}
	copy(s.mass, mass)
	return s, nil
}

func (s *Store) Len() int { return len(s.pos) }

// Positions returns the live position slice. Callers must treat it as read-only.
func (s *Store) Positions() []mgl64.Vec2 { return s.pos }

// Velocities returns the live velocity slice. Callers must treat it as read-only.
func (s *Store) Velocities() []mgl64.Vec2 { return s.vel }

// Masses returns the live mass slice. Callers must treat it as read-only.
func (s *Store) Masses() []float64 { return s.mass }

// Next exposes the staging buffers an integrator fills before Commit.
func (s *Store) Next() (pos, vel []mgl64.Vec2) { return s.nextPos, s.nextVel }

// Commit swaps the staging buffers in as the current state.
func (s *Store) Commit() {
	s.pos, s.nextPos = s.nextPos, s.pos
	s.vel, s.nextVel = s.nextVel, s.vel
}

// TotalMass sums all particle masses.
func (s *Store) TotalMass() float64 {
	total := 0.0
	for _, m := range s.mass {
		total += m
	}
	return total
}

// Snapshot deep-copies the current state.
func (s *Store) Snapshot(step int, t float64) *Snapshot {
	mass := make([]float64, len(s.mass))
	copy(mass, s.mass)
	return &Snapshot{
		Step:       step,
		Time:       t,
		Positions:  dynamo.CloneVecs(s.pos),
		Velocities: dynamo.CloneVecs(s.vel),
		Masses:     mass,
	}
}
