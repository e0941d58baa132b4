package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bhsim/internal/particles"
)

// Metric reduces a stream of snapshots to one number.
type Metric interface {
	Name() string
	Observe(s *particles.Snapshot)
	Value() float64
	Reset()
}

// Energy averages the total (kinetic + softened potential) energy.
type Energy struct {
	name        string
	g           float64
	softening   float64
	samples     int
	totalEnergy float64
}

func NewEnergy(g, softening float64) *Energy {
	return &Energy{
		name:      "energy",
		g:         g,
		softening: softening,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s *particles.Snapshot) {
	e.totalEnergy += KineticEnergy(s) + PotentialEnergy(s, e.g, e.softening)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative departure from the first observed
// total energy.
type EnergyDrift struct {
	name          string
	g             float64
	softening     float64
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(g, softening float64) *EnergyDrift {
	return &EnergyDrift{
		name:      "energy_drift",
		g:         g,
		softening: softening,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s *particles.Snapshot) {
	energy := KineticEnergy(s) + PotentialEnergy(s, e.g, e.softening)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift is the largest |P(t) - P(0)| seen. With θ = 0 it stays at
// rounding level.
type MomentumDrift struct {
	initial  mgl64.Vec2
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift { return &MomentumDrift{} }

func (m *MomentumDrift) Name() string { return "momentum_drift" }

func (m *MomentumDrift) Observe(s *particles.Snapshot) {
	p := Momentum(s)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, math.Hypot(p[0]-m.initial[0], p[1]-m.initial[1]))
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() { *m = MomentumDrift{} }
