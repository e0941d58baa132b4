package integrators

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func benchmarkIntegrator(b *testing.B, name string) {
	for _, n := range []int{1000, 50000} {
		pos := make([]mgl64.Vec2, n)
		vel := make([]mgl64.Vec2, n)
		acc := make([]mgl64.Vec2, n)
		for i := range pos {
			pos[i] = mgl64.Vec2{float64(i) * 0.1, 0}
			acc[i] = mgl64.Vec2{-pos[i][0] * 0.01, 0}
		}
		s := newStore(b, pos, vel)
		integ, err := ByName(name)
		if err != nil {
			b.Fatal(err)
		}
		p := testParams(n, 0.001)

		b.Run(fmt.Sprintf("Particles-%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if err := integ.Step(context.Background(), s, acc, p); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSemiImplicit(b *testing.B) { benchmarkIntegrator(b, "semi_implicit") }
func BenchmarkEuler(b *testing.B)        { benchmarkIntegrator(b, "euler") }
func BenchmarkVerlet(b *testing.B)       { benchmarkIntegrator(b, "verlet") }
