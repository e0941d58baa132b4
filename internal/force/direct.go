package force

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bhsim/internal/dynamo"
)

// Direct sums every pair exactly. It is the O(N²) reference for the tree
// traversal and shares its force law.
func (e *Evaluator) Direct(ctx context.Context, pos []mgl64.Vec2, mass []float64, out []mgl64.Vec2) error {
	return dynamo.ParallelFor(ctx, len(pos), e.minChunk, e.workers, func(start, end int) error {
		for i := start; i < end; i++ {
			var acc mgl64.Vec2
			xi := pos[i]
			for j := range pos {
				if i == j {
					continue
				}
				acc = acc.Add(e.pull(pos[j].Sub(xi), mass[j]))
			}
			out[i] = acc
		}
		return nil
	})
}
