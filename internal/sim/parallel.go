package sim

import (
	"context"

	"github.com/san-kum/bhsim/internal/particles"
	"golang.org/x/sync/errgroup"
)

// Factory builds the simulator for one member of an ensemble.
type Factory func(run int) (*Simulator, error)

// Ensemble runs independent simulations concurrently. Members share no
// state, so each one is built by the factory on its own goroutine.
type Ensemble struct {
	factory Factory
	numRuns int
}

func NewEnsemble(factory Factory, numRuns int) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns}
}

// Run steps every member and returns their final snapshots in run order.
func (e *Ensemble) Run(ctx context.Context, steps int) ([]*particles.Snapshot, error) {
	results := make([]*particles.Snapshot, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			s, err := e.factory(i)
			if err != nil {
				return err
			}
			results[i], err = s.Run(ctx, steps, nil)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
