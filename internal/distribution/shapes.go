package distribution

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// Speed of the alternating horizontal flow in striation bands.
const StriationShear = 0.5

// disc places the central body at the origin and every other particle on a
// circular orbit around it, radius uniform in [InnerRadius, OuterRadius].
func disc(rng *rand.Rand, o Options, pos, vel []mgl64.Vec2, mass []float64) {
	pos[0] = mgl64.Vec2{}
	vel[0] = mgl64.Vec2{}
	mass[0] = o.CentralMass

	for i := 1; i < len(pos); i++ {
		r := o.InnerRadius + (o.OuterRadius-o.InnerRadius)*rng.Float64()
		t := (2*rng.Float64() - 1) * math.Pi
		sin, cos := math.Sincos(t)
		v := math.Sqrt(o.G * o.CentralMass / r)

		pos[i] = mgl64.Vec2{r * cos, r * sin}
		vel[i] = mgl64.Vec2{-v * sin, v * cos}
		mass[i] = 1
	}
}

// striation spreads particles round-robin over k horizontal bands spanning
// [-Extent, Extent]. Neighbouring bands drift in opposite x directions.
func striation(k int) Generator {
	return func(rng *rand.Rand, o Options, pos, vel []mgl64.Vec2, mass []float64) {
		h := 2 * o.Extent / float64(k)
		for i := range pos {
			b := i % k
			cy := -o.Extent + (float64(b)+0.5)*h
			x := (2*rng.Float64() - 1) * o.Extent
			y := cy + rng.NormFloat64()*h*0.1

			dir := 1.0
			if b%2 == 1 {
				dir = -1
			}
			pos[i] = mgl64.Vec2{x, y}
			vel[i] = mgl64.Vec2{dir * StriationShear, 0}
			mass[i] = 1
		}
	}
}

func uniform(rng *rand.Rand, o Options, pos, vel []mgl64.Vec2, mass []float64) {
	for i := range pos {
		pos[i] = mgl64.Vec2{
			(2*rng.Float64() - 1) * o.Extent,
			(2*rng.Float64() - 1) * o.Extent,
		}
		vel[i] = mgl64.Vec2{}
		mass[i] = 1
	}
}
