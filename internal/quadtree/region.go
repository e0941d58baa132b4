package quadtree

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bhsim/internal/dynamo"
)

// Quadrant order of the four children.
const (
	SW = iota
	SE
	NW
	NE
)

// Region is an axis-aligned square.
type Region struct {
	Min  mgl64.Vec2
	Size float64
}

func (r Region) Center() mgl64.Vec2 {
	h := r.Size / 2
	return mgl64.Vec2{r.Min[0] + h, r.Min[1] + h}
}

// QuadrantOf returns the child quadrant p falls into. Points on a midline
// belong to the east/north side.
func (r Region) QuadrantOf(p mgl64.Vec2) int {
	c := r.Center()
	q := 0
	if p[0] >= c[0] {
		q |= 1
	}
	if p[1] >= c[1] {
		q |= 2
	}
	return q
}

// Quadrant returns the sub-square for child q.
func (r Region) Quadrant(q int) Region {
	h := r.Size / 2
	min := r.Min
	if q&1 != 0 {
		min[0] += h
	}
	if q&2 != 0 {
		min[1] += h
	}
	return Region{Min: min, Size: h}
}

// Contains uses the same half-open convention as QuadrantOf, except that the
// outer max edges are closed.
func (r Region) Contains(p mgl64.Vec2) bool {
	max := r.Min[0] + r.Size
	maxY := r.Min[1] + r.Size
	return p[0] >= r.Min[0] && p[0] <= max && p[1] >= r.Min[1] && p[1] <= maxY
}

// BoundingSquare returns the smallest square around pos, centred on their
// bounding box and grown by padding*side on each edge. A set with zero extent
// gets a unit square.
func BoundingSquare(pos []mgl64.Vec2, padding float64) (Region, error) {
	if len(pos) == 0 {
		return Region{Size: 1}, nil
	}

	min := mgl64.Vec2{math.Inf(1), math.Inf(1)}
	max := mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	for i, p := range pos {
		if !dynamo.IsFinite(p) {
			return Region{}, &dynamo.ParticleError{
				Index:   i,
				Wrapped: fmt.Errorf("%w: position %v", dynamo.ErrInvalidGeometry, p),
			}
		}
		min[0] = math.Min(min[0], p[0])
		min[1] = math.Min(min[1], p[1])
		max[0] = math.Max(max[0], p[0])
		max[1] = math.Max(max[1], p[1])
	}

	side := math.Max(max[0]-min[0], max[1]-min[1])
	if side <= 0 {
		side = 1
	}
	side += 2 * side * padding

	center := mgl64.Vec2{(min[0] + max[0]) / 2, (min[1] + max[1]) / 2}
	h := side / 2
	return Region{Min: mgl64.Vec2{center[0] - h, center[1] - h}, Size: side}, nil
}
