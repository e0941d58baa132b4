package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-logr/logr"
	"github.com/san-kum/bhsim/internal/dynamo"
	"github.com/san-kum/bhsim/internal/force"
	"github.com/san-kum/bhsim/internal/integrators"
	"github.com/san-kum/bhsim/internal/particles"
	"github.com/san-kum/bhsim/internal/quadtree"
)

type Simulator struct {
	params    dynamo.Params
	store     *particles.Store
	builder   *quadtree.Builder
	eval      *force.Evaluator
	integ     integrators.Integrator
	acc       []mgl64.Vec2
	observers []Observer
	log       logr.Logger

	state State
	step  int
	t     float64
	err   error
}

type Option func(*Simulator)

func WithIntegrator(integ integrators.Integrator) Option {
	return func(s *Simulator) { s.integ = integ }
}

func WithLogger(log logr.Logger) Option {
	return func(s *Simulator) { s.log = log }
}

func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.observers = append(s.observers, o) }
}

// New validates p against the store and prepares a simulator in the
// Initialized state. The store is owned by the simulator from here on.
func New(p dynamo.Params, store *particles.Store, opts ...Option) (*Simulator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if store == nil || store.Len() != p.N {
		n := 0
		if store != nil {
			n = store.Len()
		}
		return nil, fmt.Errorf("%w: particle count %d does not match store size %d",
			dynamo.ErrInvalidConfiguration, p.N, n)
	}

	s := &Simulator{
		params:  p,
		store:   store,
		builder: quadtree.NewBuilder(p),
		eval:    force.New(p),
		integ:   integrators.NewSemiImplicit(),
		acc:     make([]mgl64.Vec2, p.N),
		log:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Params() dynamo.Params { return s.params }
func (s *Simulator) State() State          { return s.state }
func (s *Simulator) Steps() int            { return s.step }
func (s *Simulator) Time() float64         { return s.t }
func (s *Simulator) Integrator() string    { return s.integ.Name() }

// Err is the error that halted the simulator, if any.
func (s *Simulator) Err() error { return s.err }

// Snapshot copies the current state without stepping.
func (s *Simulator) Snapshot() *particles.Snapshot {
	return s.store.Snapshot(s.step, s.t)
}

// Step rebuilds the tree, evaluates every acceleration, integrates and
// advances time by dt. The context is consulted only before the step starts;
// once begun a step runs to completion. Failures halt the simulator.
func (s *Simulator) Step(ctx context.Context) (*particles.Snapshot, error) {
	if s.state == Halted {
		return nil, fmt.Errorf("%w: %w", dynamo.ErrHalted, s.err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := StepStats{Step: s.step + 1}

	start := time.Now()
	tree, err := s.builder.Build(s.store.Positions(), s.store.Masses())
	if err != nil {
		return nil, s.fail(err)
	}
	stats.Build = time.Since(start)
	stats.Nodes = tree.Len()
	stats.Depth = tree.Depth()

	start = time.Now()
	fs, err := s.eval.Accelerations(context.WithoutCancel(ctx), tree, s.acc)
	if err != nil {
		return nil, s.fail(err)
	}
	stats.Forces = time.Since(start)
	stats.NodeVisits = fs.NodeVisits

	start = time.Now()
	if err := s.integ.Step(context.WithoutCancel(ctx), s.store, s.acc, s.params); err != nil {
		return nil, s.fail(err)
	}
	stats.Integrate = time.Since(start)

	s.step++
	s.t += s.params.Dt
	s.state = Running
	stats.Time = s.t

	snap := s.store.Snapshot(s.step, s.t)
	for _, o := range s.observers {
		o.OnStep(snap, stats)
	}

	if v := s.log.V(4); v.Enabled() {
		v.Info("step complete", "step", s.step, "time", s.t, "nodes", stats.Nodes,
			"depth", stats.Depth, "visits", stats.NodeVisits, "elapsed", stats.Total())
	}
	return snap, nil
}

// Run takes up to steps steps, stopping early when fn returns false. It
// returns the last snapshot produced.
func (s *Simulator) Run(ctx context.Context, steps int, fn func(*particles.Snapshot) bool) (*particles.Snapshot, error) {
	last := s.Snapshot()
	for i := 0; i < steps; i++ {
		snap, err := s.Step(ctx)
		if err != nil {
			return last, err
		}
		last = snap
		if fn != nil && !fn(snap) {
			break
		}
	}
	return last, nil
}

func (s *Simulator) fail(err error) error {
	s.err = &dynamo.SimulationError{Step: s.step + 1, Time: s.t, Wrapped: err}
	s.state = Halted
	s.log.Error(err, "simulation halted", "step", s.step+1, "time", s.t)
	return s.err
}
