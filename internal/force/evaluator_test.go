package force

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/gomega"
	"github.com/san-kum/bhsim/internal/dynamo"
	"github.com/san-kum/bhsim/internal/quadtree"
)

func randomBodies(n int, seed uint64) ([]mgl64.Vec2, []float64) {
	r := rand.New(rand.NewPCG(seed, 17))
	pos := make([]mgl64.Vec2, n)
	mass := make([]float64, n)
	for i := range pos {
		pos[i] = mgl64.Vec2{r.NormFloat64() * 30, r.NormFloat64() * 30}
		mass[i] = 0.1 + r.Float64()
	}
	return pos, mass
}

func params(n int, theta, eps float64) dynamo.Params {
	p := dynamo.DefaultParams(n)
	p.Theta = theta
	p.Softening = eps
	p.Workers = 4
	p.MinChunk = 16
	return p
}

func treeAndDirect(t *testing.T, p dynamo.Params, pos []mgl64.Vec2, mass []float64) (tree, direct []mgl64.Vec2) {
	t.Helper()
	ctx := context.Background()
	tr, err := quadtree.NewBuilder(p).Build(pos, mass)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	ev := New(p)
	tree = make([]mgl64.Vec2, len(pos))
	if _, err := ev.Accelerations(ctx, tr, tree); err != nil {
		t.Fatalf("accelerations failed: %v", err)
	}
	direct = make([]mgl64.Vec2, len(pos))
	if err := ev.Direct(ctx, pos, mass, direct); err != nil {
		t.Fatalf("direct failed: %v", err)
	}
	return tree, direct
}

func TestThetaZeroMatchesDirect(t *testing.T) {
	for _, eps := range []float64{0, 0.5} {
		t.Run(fmt.Sprintf("eps=%v", eps), func(t *testing.T) {
			pos, mass := randomBodies(400, 1)
			got, want := treeAndDirect(t, params(len(pos), 0, eps), pos, mass)
			for i := range got {
				diff := got[i].Sub(want[i]).Len()
				scale := math.Max(want[i].Len(), 1e-12)
				if diff/scale > 1e-9 {
					t.Errorf("particle %d: tree %v direct %v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestBarnesHutApproximation(t *testing.T) {
	pos, mass := randomBodies(3000, 2)
	got, want := treeAndDirect(t, params(len(pos), 0.5, 0.05), pos, mass)

	errSum, refSum := 0.0, 0.0
	for i := range got {
		errSum += got[i].Sub(want[i]).Len()
		refSum += want[i].Len()
	}
	if rel := errSum / refSum; rel > 0.02 {
		t.Errorf("mean relative error %.4f exceeds 2%%", rel)
	}
}

func TestTwoBodyAnalytic(t *testing.T) {
	tests := []struct {
		name   string
		d, eps float64
		m1, m2 float64
		g      float64
	}{
		{"newton unit", 1, 0, 1, 1, 1},
		{"newton scaled", 2.5, 0, 3, 0.5, 2},
		{"softened", 1, 0.5, 1, 1, 1},
		{"softened heavy", 4, 1.5, 10, 2, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			p := params(2, 0.5, tt.eps)
			p.G = tt.g
			pos := []mgl64.Vec2{{0, 0}, {tt.d, 0}}
			mass := []float64{tt.m1, tt.m2}
			acc, _ := treeAndDirect(t, p, pos, mass)

			mag := func(m float64) float64 {
				return tt.g * m * tt.d / math.Pow(tt.d*tt.d+tt.eps*tt.eps, 1.5)
			}
			g.Expect(acc[0][0]).To(BeNumerically("~", mag(tt.m2), 1e-12))
			g.Expect(acc[1][0]).To(BeNumerically("~", -mag(tt.m1), 1e-12))
			g.Expect(acc[0][1]).To(BeZero())
			g.Expect(acc[1][1]).To(BeZero())
			if tt.eps == 0 {
				g.Expect(acc[0][0]).To(BeNumerically("~", tt.g*tt.m2/(tt.d*tt.d), 1e-12))
			}
		})
	}
}

func TestSingleParticleNoSelfForce(t *testing.T) {
	p := params(1, 0.5, 0)
	tr, err := quadtree.NewBuilder(p).Build([]mgl64.Vec2{{7, -2}}, []float64{5})
	if err != nil {
		t.Fatal(err)
	}
	acc, visits := New(p).Acceleration(tr, 0)
	if acc != (mgl64.Vec2{}) {
		t.Errorf("expected zero acceleration, got %v", acc)
	}
	if visits != 1 {
		t.Errorf("expected 1 visit, got %d", visits)
	}
}

func TestWideAngleExcludesSelf(t *testing.T) {
	g := NewWithT(t)
	pos := []mgl64.Vec2{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	mass := []float64{1, 1, 1, 1}
	got, want := treeAndDirect(t, params(len(pos), 100, 0), pos, mass)

	// two unit pulls plus the diagonal at distance sqrt(2)
	pull := 1 + 1/(2*math.Sqrt2)
	g.Expect(got[0][0]).To(BeNumerically("~", pull, 1e-12))
	g.Expect(got[0][1]).To(BeNumerically("~", pull, 1e-12))
	for i := range got {
		g.Expect(got[i].Sub(want[i]).Len()).To(BeNumerically("<", 1e-12), "particle %d", i)
	}
}

func TestCoincidentBodiesStayFinite(t *testing.T) {
	pos := []mgl64.Vec2{{1, 1}, {1, 1}, {3, 1}}
	mass := []float64{1, 1, 1}
	acc, _ := treeAndDirect(t, params(3, 0.5, 0), pos, mass)
	for i, a := range acc {
		if !dynamo.IsFinite(a) {
			t.Errorf("particle %d: non-finite acceleration %v", i, a)
		}
	}
	if acc[0][0] != 0.25 || acc[1][0] != 0.25 {
		t.Errorf("expected only the distant body to pull, got %v %v", acc[0], acc[1])
	}
}

func TestNodeVisitsSublinear(t *testing.T) {
	pos, mass := randomBodies(4000, 3)
	p := params(len(pos), 0.7, 0.05)
	tr, err := quadtree.NewBuilder(p).Build(pos, mass)
	if err != nil {
		t.Fatal(err)
	}
	stats, err := New(p).Accelerations(context.Background(), tr, make([]mgl64.Vec2, len(pos)))
	if err != nil {
		t.Fatal(err)
	}
	perParticle := float64(stats.NodeVisits) / float64(len(pos))
	if perParticle <= 0 || perParticle > float64(len(pos))/4 {
		t.Errorf("unexpected visits per particle: %.1f", perParticle)
	}
}

func BenchmarkAccelerations(b *testing.B) {
	for _, n := range []int{1000, 10000} {
		pos, mass := randomBodies(n, 9)
		p := dynamo.DefaultParams(n)
		tr, err := quadtree.NewBuilder(p).Build(pos, mass)
		if err != nil {
			b.Fatal(err)
		}
		ev := New(p)
		out := make([]mgl64.Vec2, n)
		b.Run(fmt.Sprintf("Particles-%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := ev.Accelerations(context.Background(), tr, out); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
