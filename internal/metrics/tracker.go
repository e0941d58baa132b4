package metrics

import (
	"sync"

	"github.com/san-kum/bhsim/internal/particles"
	"github.com/san-kum/bhsim/internal/sim"
)

// Sample is one row of conserved-quantity diagnostics.
type Sample struct {
	Step            int
	Time            float64
	Kinetic         float64
	Potential       float64
	Total           float64
	MomentumX       float64
	MomentumY       float64
	AngularMomentum float64
}

// Tracker is a sim.Observer that records a Sample every Every steps and
// feeds the same snapshots to its metrics. Potential energy is O(N²), so
// large runs should sample sparsely.
type Tracker struct {
	G         float64
	Softening float64
	Every     int

	mu      sync.Mutex
	samples []Sample
	metrics []Metric
}

func NewTracker(g, softening float64, every int, ms ...Metric) *Tracker {
	if every < 1 {
		every = 1
	}
	return &Tracker{G: g, Softening: softening, Every: every, metrics: ms}
}

var _ sim.Observer = (*Tracker)(nil)

func (t *Tracker) OnStep(snap *particles.Snapshot, _ sim.StepStats) {
	if snap.Step%t.Every != 0 {
		return
	}
	t.Observe(snap)
}

// Observe records snap unconditionally. Use it for the initial state.
func (t *Tracker) Observe(snap *particles.Snapshot) {
	ke := KineticEnergy(snap)
	pe := PotentialEnergy(snap, t.G, t.Softening)
	p := Momentum(snap)
	s := Sample{
		Step:            snap.Step,
		Time:            snap.Time,
		Kinetic:         ke,
		Potential:       pe,
		Total:           ke + pe,
		MomentumX:       p[0],
		MomentumY:       p[1],
		AngularMomentum: AngularMomentum(snap),
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples = append(t.samples, s)
	for _, m := range t.metrics {
		m.Observe(snap)
	}
}

func (t *Tracker) Samples() []Sample {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Sample, len(t.samples))
	copy(out, t.samples)
	return out
}

// Values reports every metric by name.
func (t *Tracker) Values() map[string]float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]float64, len(t.metrics))
	for _, m := range t.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Series extracts one column of the recorded samples for plotting.
func (t *Tracker) Series(f func(Sample) float64) []float64 {
	samples := t.Samples()
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = f(s)
	}
	return out
}
