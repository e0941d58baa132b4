package metrics

import (
	"github.com/san-kum/bhsim/internal/dynamo"
	"github.com/san-kum/bhsim/internal/particles"
)

// Stability is the fraction of observed snapshots in which every particle
// stayed within radius of the centre of mass.
type Stability struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewStability(radius float64) *Stability {
	return &Stability{
		name:   "stability",
		radius: radius,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(snap *particles.Snapshot) {
	s.samples++
	com := CenterOfMass(snap)
	r2 := s.radius * s.radius
	for _, x := range snap.Positions {
		if dynamo.LenSq(x.Sub(com)) > r2 {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
