package integrators

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/gomega"
	"github.com/san-kum/bhsim/internal/dynamo"
	"github.com/san-kum/bhsim/internal/particles"
)

func newStore(t testing.TB, pos, vel []mgl64.Vec2) *particles.Store {
	t.Helper()
	mass := make([]float64, len(pos))
	for i := range mass {
		mass[i] = 1
	}
	s, err := particles.New(pos, vel, mass)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return s
}

func testParams(n int, dt float64) dynamo.Params {
	p := dynamo.DefaultParams(n)
	p.Dt = dt
	return p
}

func TestUpdateOrder(t *testing.T) {
	pos := []mgl64.Vec2{{0, 0}}
	vel := []mgl64.Vec2{{1, 0}}
	acc := []mgl64.Vec2{{2, 0}}
	dt := 0.5

	tests := []struct {
		integ   Integrator
		wantPos mgl64.Vec2
		wantVel mgl64.Vec2
	}{
		// v = 1 + 2*0.5 = 2, x = 0 + 2*0.5 = 1
		{NewSemiImplicit(), mgl64.Vec2{1, 0}, mgl64.Vec2{2, 0}},
		// x = 0 + 1*0.5, v = 2
		{NewEuler(), mgl64.Vec2{0.5, 0}, mgl64.Vec2{2, 0}},
		// first step falls back to semi-implicit
		{NewVerlet(), mgl64.Vec2{1, 0}, mgl64.Vec2{2, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.integ.Name(), func(t *testing.T) {
			s := newStore(t, pos, vel)
			if err := tt.integ.Step(context.Background(), s, acc, testParams(1, dt)); err != nil {
				t.Fatalf("step failed: %v", err)
			}
			if got := s.Positions()[0]; got != tt.wantPos {
				t.Errorf("position = %v, want %v", got, tt.wantPos)
			}
			if got := s.Velocities()[0]; got != tt.wantVel {
				t.Errorf("velocity = %v, want %v", got, tt.wantVel)
			}
		})
	}
}

func TestVerletAveragesAccelerations(t *testing.T) {
	g := NewWithT(t)
	s := newStore(t, []mgl64.Vec2{{0, 0}}, []mgl64.Vec2{{0, 0}})
	vl := NewVerlet()
	p := testParams(1, 0.1)
	ctx := context.Background()

	g.Expect(vl.Step(ctx, s, []mgl64.Vec2{{1, 0}}, p)).To(Succeed())
	g.Expect(s.Velocities()[0][0]).To(BeNumerically("~", 0.1, 1e-15))

	g.Expect(vl.Step(ctx, s, []mgl64.Vec2{{3, 0}}, p)).To(Succeed())
	// v = 0.1 + 0.05*(1+3)
	g.Expect(s.Velocities()[0][0]).To(BeNumerically("~", 0.3, 1e-15))
	// x = 0.01 + 0.3*0.1
	g.Expect(s.Positions()[0][0]).To(BeNumerically("~", 0.04, 1e-15))
}

func TestNonFiniteResultIsNotCommitted(t *testing.T) {
	n := 300
	pos := make([]mgl64.Vec2, n)
	vel := make([]mgl64.Vec2, n)
	acc := make([]mgl64.Vec2, n)
	for i := range pos {
		pos[i] = mgl64.Vec2{float64(i), 0}
	}
	acc[250] = mgl64.Vec2{math.Inf(1), 0}
	acc[120] = mgl64.Vec2{0, math.NaN()}

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t, pos, vel)
			integ, err := ByName(name)
			if err != nil {
				t.Fatal(err)
			}
			p := testParams(n, 0.01)
			p.Workers = 4
			p.MinChunk = 10

			err = integ.Step(context.Background(), s, acc, p)
			if !errors.Is(err, dynamo.ErrNumericalInstability) {
				t.Fatalf("expected ErrNumericalInstability, got %v", err)
			}
			var perr *dynamo.ParticleError
			if !errors.As(err, &perr) || perr.Index != 120 {
				t.Errorf("expected failing index 120, got %v", err)
			}
			for i, x := range s.Positions() {
				if x != pos[i] {
					t.Fatalf("particle %d moved despite failure", i)
				}
			}
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "semi_implicit", "euler", "verlet"} {
		integ, err := ByName(name)
		if err != nil {
			t.Errorf("ByName(%q): %v", name, err)
			continue
		}
		if name == "" && integ.Name() != DefaultName {
			t.Errorf("empty name gave %s", integ.Name())
		}
	}

	if _, err := ByName("rk4"); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestAccelerationLengthMismatch(t *testing.T) {
	s := newStore(t, []mgl64.Vec2{{0, 0}, {1, 1}}, make([]mgl64.Vec2, 2))
	if err := NewSemiImplicit().Step(context.Background(), s, make([]mgl64.Vec2, 1), testParams(2, 0.1)); err == nil {
		t.Error("expected error for short acceleration slice")
	}
}
