package integrators

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bhsim/internal/dynamo"
	"github.com/san-kum/bhsim/internal/particles"
)

// Euler is the explicit scheme: position moves with the old velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (*Euler) Name() string { return "euler" }

func (*Euler) Step(ctx context.Context, s *particles.Store, acc []mgl64.Vec2, p dynamo.Params) error {
	dt := p.Dt
	return advance(ctx, s, acc, p, func(_ int, x, v, a mgl64.Vec2) (mgl64.Vec2, mgl64.Vec2) {
		return x.Add(v.Mul(dt)), v.Add(a.Mul(dt))
	})
}
