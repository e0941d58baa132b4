package integrators

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bhsim/internal/dynamo"
	"github.com/san-kum/bhsim/internal/particles"
)

// SemiImplicit kicks velocity first and then drifts position with the new
// velocity: v += a*dt, x += v*dt.
type SemiImplicit struct{}

func NewSemiImplicit() *SemiImplicit {
	return &SemiImplicit{}
}

func (*SemiImplicit) Name() string { return "semi_implicit" }

func (*SemiImplicit) Step(ctx context.Context, s *particles.Store, acc []mgl64.Vec2, p dynamo.Params) error {
	dt := p.Dt
	return advance(ctx, s, acc, p, func(_ int, x, v, a mgl64.Vec2) (mgl64.Vec2, mgl64.Vec2) {
		v = v.Add(a.Mul(dt))
		return x.Add(v.Mul(dt)), v
	})
}
