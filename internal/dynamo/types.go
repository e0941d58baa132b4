package dynamo

import (
	"fmt"
	"math"
	"runtime"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/multierr"
)

const (
	DefaultDt        = 0.01
	DefaultSoftening = 0.01
	DefaultTheta     = 0.5
	DefaultG         = 1.0
	DefaultMaxDepth  = 48
	DefaultPadding   = 1e-6
	DefaultMinChunk  = 64
)

// Params is the immutable context handed to the builder, evaluator and integrator.
type Params struct {
	Dt        float64
	Softening float64
	Theta     float64
	G         float64
	N         int

	// MaxDepth caps the quadtree; deeper insertions merge into the leaf.
	MaxDepth int
	// Padding grows the bounding square by Padding*side on every edge.
	Padding float64
	// Workers bounds the goroutines used per parallel phase.
	Workers  int
	MinChunk int
}

func DefaultParams(n int) Params {
	return Params{
		Dt:        DefaultDt,
		Softening: DefaultSoftening,
		Theta:     DefaultTheta,
		G:         DefaultG,
		N:         n,
		MaxDepth:  DefaultMaxDepth,
		Padding:   DefaultPadding,
		Workers:   runtime.GOMAXPROCS(0),
		MinChunk:  DefaultMinChunk,
	}
}

// Validate reports every violated constraint at once. Each error wraps
// ErrInvalidConfiguration.
func (p Params) Validate() error {
	var err error
	if !(p.Theta > 0) || math.IsInf(p.Theta, 0) {
		err = multierr.Append(err, invalid("opening angle must be positive, got %v", p.Theta))
	}
	if !(p.Softening >= 0) || math.IsInf(p.Softening, 0) {
		err = multierr.Append(err, invalid("softening length must be non-negative, got %v", p.Softening))
	}
	if !(p.Dt > 0) || math.IsInf(p.Dt, 0) {
		err = multierr.Append(err, invalid("time step must be positive, got %v", p.Dt))
	}
	if !(p.G > 0) || math.IsInf(p.G, 0) {
		err = multierr.Append(err, invalid("gravitational constant must be positive, got %v", p.G))
	}
	if p.N <= 0 {
		err = multierr.Append(err, invalid("particle count must be positive, got %d", p.N))
	}
	if p.MaxDepth < 1 {
		err = multierr.Append(err, invalid("max depth must be at least 1, got %d", p.MaxDepth))
	}
	if !(p.Padding >= 0) || math.IsInf(p.Padding, 0) {
		err = multierr.Append(err, invalid("padding must be non-negative, got %v", p.Padding))
	}
	if p.Workers < 0 || p.MinChunk < 0 {
		err = multierr.Append(err, invalid("workers and min chunk must not be negative"))
	}
	return err
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// IsFinite reports whether both components are neither NaN nor Inf.
func IsFinite(v mgl64.Vec2) bool {
	return isFinite(v[0]) && isFinite(v[1])
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// LenSq is |v|².
func LenSq(v mgl64.Vec2) float64 {
	return v[0]*v[0] + v[1]*v[1]
}

// Distance between a and b.
func Distance(a, b mgl64.Vec2) float64 {
	return b.Sub(a).Len()
}

// CloneVecs returns an independent copy of vs.
func CloneVecs(vs []mgl64.Vec2) []mgl64.Vec2 {
	c := make([]mgl64.Vec2, len(vs))
	copy(c, vs)
	return c
}
