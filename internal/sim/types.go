package sim

import (
	"time"

	"github.com/san-kum/bhsim/internal/particles"
)

// State is the simulator lifecycle.
type State int

const (
	// Initialized: particles seeded, time zero, no step taken.
	Initialized State = iota
	// Running: at least one step completed.
	Running
	// Halted: a step failed; every further Step returns ErrHalted.
	Halted
)

func (s State) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case Halted:
		return "halted"
	default:
		return "unknown"
	}
}

// StepStats reports the cost of one step.
type StepStats struct {
	Step       int
	Time       float64
	Build      time.Duration
	Forces     time.Duration
	Integrate  time.Duration
	Nodes      int
	Depth      int
	NodeVisits int64
}

// Total is the wall time spent in the three phases.
func (s StepStats) Total() time.Duration {
	return s.Build + s.Forces + s.Integrate
}

// Observer is notified after every successful step. The snapshot is shared
// with the caller of Step and must not be modified.
type Observer interface {
	OnStep(snap *particles.Snapshot, stats StepStats)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(snap *particles.Snapshot, stats StepStats)

func (f ObserverFunc) OnStep(snap *particles.Snapshot, stats StepStats) { f(snap, stats) }
