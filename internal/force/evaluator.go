// Package force computes per-particle gravitational accelerations, either
// through a Barnes-Hut traversal of a quadtree or by direct summation.
package force

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bhsim/internal/dynamo"
	"github.com/san-kum/bhsim/internal/quadtree"
)

// Below this distance an internal node is always opened.
const minOpenDistance = 1e-12

// Stats describes one evaluation pass.
type Stats struct {
	NodeVisits int64
}

// Evaluator applies the opening-angle criterion and the softened force law.
// It holds no per-step state and is safe for concurrent use.
type Evaluator struct {
	g        float64
	eps2     float64
	theta    float64
	workers  int
	minChunk int
}

func New(p dynamo.Params) *Evaluator {
	return &Evaluator{
		g:        p.G,
		eps2:     p.Softening * p.Softening,
		theta:    p.Theta,
		workers:  p.Workers,
		minChunk: p.MinChunk,
	}
}

// Acceleration returns the net acceleration on particle i and the number of
// nodes visited. The tree and its positions are only read.
func (e *Evaluator) Acceleration(t *quadtree.Tree, i int) (mgl64.Vec2, int) {
	nodes := t.Nodes()
	pos := t.Positions()
	mass := t.Masses()
	xi := pos[i]
	self := int32(i)

	var acc mgl64.Vec2
	visits := 0

	var buf [192]int32
	stack := append(buf[:0], int32(t.Root()))
	for len(stack) > 0 {
		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &nodes[k]
		visits++

		switch n.Kind {
		case quadtree.Leaf:
			for j := n.Body; j >= 0; j = t.Next(j) {
				if j == self {
					continue
				}
				acc = acc.Add(e.pull(pos[j].Sub(xi), mass[j]))
			}

		case quadtree.Internal:
			// A node holding the target is always opened, whatever theta.
			r := n.COM.Sub(xi)
			d := r.Len()
			if d > minOpenDistance && n.Size/d < e.theta && !n.Contains(xi) {
				acc = acc.Add(e.pull(r, n.Mass))
				continue
			}
			stack = append(stack, n.Child+3, n.Child+2, n.Child+1, n.Child)
		}
	}
	return acc, visits
}

// Accelerations fills out[i] for every particle of the tree. Each slot is
// written by exactly one worker.
func (e *Evaluator) Accelerations(ctx context.Context, t *quadtree.Tree, out []mgl64.Vec2) (Stats, error) {
	var visits atomic.Int64
	err := dynamo.ParallelFor(ctx, len(out), e.minChunk, e.workers, func(start, end int) error {
		local := 0
		for i := start; i < end; i++ {
			a, v := e.Acceleration(t, i)
			out[i] = a
			local += v
		}
		visits.Add(int64(local))
		return nil
	})
	return Stats{NodeVisits: visits.Load()}, err
}

// pull is G*m*r / (|r|² + ε²)^{3/2}, with r pointing from the target to the
// source. Coincident points without softening contribute nothing.
func (e *Evaluator) pull(r mgl64.Vec2, m float64) mgl64.Vec2 {
	r2 := dynamo.LenSq(r) + e.eps2
	if r2 == 0 {
		return mgl64.Vec2{}
	}
	inv := 1 / math.Sqrt(r2)
	return r.Mul(e.g * m * inv * inv * inv)
}
