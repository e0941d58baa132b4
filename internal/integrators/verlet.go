package integrators

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bhsim/internal/dynamo"
	"github.com/san-kum/bhsim/internal/particles"
)

// Verlet averages the previous and current accelerations for the velocity
// kick, then drifts: v += dt/2*(a_prev + a), x += v*dt. The first step has no
// previous acceleration and falls back to the semi-implicit kick.
type Verlet struct {
	prevAcc []mgl64.Vec2
	primed  bool
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (*Verlet) Name() string { return "verlet" }

func (vl *Verlet) ensureScratch(n int) {
	if len(vl.prevAcc) != n {
		vl.prevAcc = make([]mgl64.Vec2, n)
		vl.primed = false
	}
}

func (vl *Verlet) Step(ctx context.Context, s *particles.Store, acc []mgl64.Vec2, p dynamo.Params) error {
	vl.ensureScratch(s.Len())
	dt := p.Dt
	halfDt := 0.5 * dt
	primed := vl.primed
	prev := vl.prevAcc

	err := advance(ctx, s, acc, p, func(i int, x, v, a mgl64.Vec2) (mgl64.Vec2, mgl64.Vec2) {
		if primed {
			v = v.Add(prev[i].Add(a).Mul(halfDt))
		} else {
			v = v.Add(a.Mul(dt))
		}
		return x.Add(v.Mul(dt)), v
	})
	if err != nil {
		return err
	}

	copy(vl.prevAcc, acc)
	vl.primed = true
	return nil
}
