// Package integrators advances particle state from per-particle accelerations.
package integrators

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bhsim/internal/dynamo"
	"github.com/san-kum/bhsim/internal/particles"
)

// Integrator updates a store in place from accelerations evaluated on its
// current positions. On error the store is left untouched.
type Integrator interface {
	Name() string
	Step(ctx context.Context, s *particles.Store, acc []mgl64.Vec2, p dynamo.Params) error
}

// DefaultName is the integrator used when none is configured.
const DefaultName = "semi_implicit"

var registry = map[string]func() Integrator{
	"semi_implicit": func() Integrator { return NewSemiImplicit() },
	"euler":         func() Integrator { return NewEuler() },
	"verlet":        func() Integrator { return NewVerlet() },
}

// ByName returns a fresh integrator. Integrators may carry state between
// steps, so each simulation needs its own instance.
func ByName(name string) (Integrator, error) {
	if name == "" {
		name = DefaultName
	}
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator: %s", dynamo.ErrInvalidConfiguration, name)
	}
	return fn(), nil
}

// Names lists the registered integrators.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type updateFunc func(i int, x, v, a mgl64.Vec2) (mgl64.Vec2, mgl64.Vec2)

// advance applies fn to every particle in parallel, writing into the store's
// staging buffers, and commits only if every result is finite. The reported
// particle is the lowest failing index regardless of scheduling.
func advance(ctx context.Context, s *particles.Store, acc []mgl64.Vec2, p dynamo.Params, fn updateFunc) error {
	n := s.Len()
	if len(acc) != n {
		return fmt.Errorf("integrators: %d accelerations for %d particles", len(acc), n)
	}
	pos, vel := s.Positions(), s.Velocities()
	nextPos, nextVel := s.Next()

	var bad atomic.Int64
	bad.Store(int64(n))
	err := dynamo.ParallelFor(ctx, n, p.MinChunk, p.Workers, func(start, end int) error {
		for i := start; i < end; i++ {
			x, v := fn(i, pos[i], vel[i], acc[i])
			nextPos[i], nextVel[i] = x, v
			if !dynamo.IsFinite(x) || !dynamo.IsFinite(v) {
				lowerTo(&bad, int64(i))
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if i := int(bad.Load()); i < n {
		return &dynamo.ParticleError{
			Index: i,
			Wrapped: fmt.Errorf("%w: x=%v v=%v a=%v",
				dynamo.ErrNumericalInstability, nextPos[i], nextVel[i], acc[i]),
		}
	}
	s.Commit()
	return nil
}

func lowerTo(v *atomic.Int64, candidate int64) {
	for {
		cur := v.Load()
		if candidate >= cur || v.CompareAndSwap(cur, candidate) {
			return
		}
	}
}
