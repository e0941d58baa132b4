package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bhsim/internal/particles"
)

// Momentum is the total linear momentum Σ m v.
func Momentum(s *particles.Snapshot) mgl64.Vec2 {
	var p mgl64.Vec2
	for i, v := range s.Velocities {
		p = p.Add(v.Mul(s.Masses[i]))
	}
	return p
}

func KineticEnergy(s *particles.Snapshot) float64 {
	var ke float64
	for i, v := range s.Velocities {
		ke += 0.5 * s.Masses[i] * v.Dot(v)
	}
	return ke
}

// PotentialEnergy sums the softened pair potential -G m_i m_j / sqrt(r² + ε²)
// over every unordered pair. Coincident bodies with ε = 0 are skipped.
func PotentialEnergy(s *particles.Snapshot, g, softening float64) float64 {
	eps2 := softening * softening
	var pe float64
	for i := range s.Positions {
		xi, mi := s.Positions[i], s.Masses[i]
		for j := i + 1; j < len(s.Positions); j++ {
			r := s.Positions[j].Sub(xi)
			d2 := r.Dot(r) + eps2
			if d2 == 0 {
				continue
			}
			pe -= g * mi * s.Masses[j] / math.Sqrt(d2)
		}
	}
	return pe
}

// AngularMomentum is the z component of Σ m (x × v) about the origin.
func AngularMomentum(s *particles.Snapshot) float64 {
	var l float64
	for i, x := range s.Positions {
		v := s.Velocities[i]
		l += s.Masses[i] * (x[0]*v[1] - x[1]*v[0])
	}
	return l
}

func CenterOfMass(s *particles.Snapshot) mgl64.Vec2 {
	var c mgl64.Vec2
	var m float64
	for i, x := range s.Positions {
		c = c.Add(x.Mul(s.Masses[i]))
		m += s.Masses[i]
	}
	if m == 0 {
		return c
	}
	return c.Mul(1 / m)
}
