package particles

import "github.com/go-gl/mathgl/mgl64"

// Snapshot is a read-only copy of the particle state after a step. It shares
// no memory with the store that produced it.
type Snapshot struct {
	Step       int
	Time       float64
	Positions  []mgl64.Vec2
	Velocities []mgl64.Vec2
	Masses     []float64
}

// Body is the (position, mass) pair consumed by renderers.
type Body struct {
	Position mgl64.Vec2
	Mass     float64
}

func (s *Snapshot) Len() int { return len(s.Positions) }

// Bodies lists particles in index order.
func (s *Snapshot) Bodies() []Body {
	out := make([]Body, len(s.Positions))
	for i := range s.Positions {
		out[i] = Body{Position: s.Positions[i], Mass: s.Masses[i]}
	}
	return out
}

// Speed returns |v| of particle i.
func (s *Snapshot) Speed(i int) float64 {
	return s.Velocities[i].Len()
}

// Bounds returns the axis-aligned box around all positions.
func (s *Snapshot) Bounds() (min, max mgl64.Vec2) {
	if len(s.Positions) == 0 {
		return
	}
	min, max = s.Positions[0], s.Positions[0]
	for _, p := range s.Positions[1:] {
		for k := 0; k < 2; k++ {
			if p[k] < min[k] {
				min[k] = p[k]
			}
			if p[k] > max[k] {
				max[k] = p[k]
			}
		}
	}
	return
}
