package quadtree

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bhsim/internal/dynamo"
)

// Builder constructs trees and keeps the arena between builds.
type Builder struct {
	maxDepth int
	padding  float64
	tree     Tree
}

func NewBuilder(p dynamo.Params) *Builder {
	maxDepth := p.MaxDepth
	if maxDepth < 1 {
		maxDepth = dynamo.DefaultMaxDepth
	}
	return &Builder{maxDepth: maxDepth, padding: p.Padding}
}

// Build indexes pos/mass. The returned tree reuses the builder's arena and is
// invalidated by the next Build call.
func (b *Builder) Build(pos []mgl64.Vec2, mass []float64) (*Tree, error) {
	root, err := BoundingSquare(pos, b.padding)
	if err != nil {
		return nil, err
	}

	t := &b.tree
	t.reset(root, pos, mass)
	for i := range pos {
		t.insert(int32(i), b.maxDepth)
	}
	t.aggregate()
	return t, nil
}

func (t *Tree) reset(root Region, pos []mgl64.Vec2, mass []float64) {
	t.nodes = t.nodes[:0]
	t.nodes = append(t.nodes, emptyNode(root, 0))
	if cap(t.next) < len(pos) {
		t.next = make([]int32, len(pos))
	}
	t.next = t.next[:len(pos)]
	for i := range t.next {
		t.next[i] = none
	}
	t.pos = pos
	t.mass = mass
	t.maxDepth = 0
}

func emptyNode(r Region, depth int32) Node {
	return Node{Region: r, Depth: depth, Kind: Empty, Body: none, Child: none}
}

func (t *Tree) insert(i int32, maxDepth int) {
	p := t.pos[i]
	n := int32(0)
	for {
		node := &t.nodes[n]
		switch node.Kind {
		case Empty:
			node.Kind = Leaf
			node.Body = i
			return

		case Internal:
			n = node.Child + int32(node.QuadrantOf(p))

		case Leaf:
			j := node.Body
			if int(node.Depth) >= maxDepth || t.pos[j] == p {
				t.next[i] = t.next[j]
				t.next[j] = i
				return
			}
			// Split, then move the resident (with any chain of identical
			// positions) into its quadrant and keep descending.
			q := node.QuadrantOf(t.pos[j])
			child := t.split(n)
			resident := &t.nodes[child+int32(q)]
			resident.Kind = Leaf
			resident.Body = j
		}
	}
}

// split turns leaf n into an internal node and returns its first child index.
func (t *Tree) split(n int32) int32 {
	parent := t.nodes[n]
	child := int32(len(t.nodes))
	depth := parent.Depth + 1
	for q := 0; q < 4; q++ {
		t.nodes = append(t.nodes, emptyNode(parent.Quadrant(q), depth))
	}
	if int(depth) > t.maxDepth {
		t.maxDepth = int(depth)
	}

	node := &t.nodes[n]
	node.Kind = Internal
	node.Body = none
	node.Child = child
	return child
}

// aggregate fills Mass, COM and Count. Children always follow their parent in
// the arena, so sweeping backwards is a post-order pass.
func (t *Tree) aggregate() {
	for k := len(t.nodes) - 1; k >= 0; k-- {
		n := &t.nodes[k]
		var mass float64
		var weighted mgl64.Vec2
		var count int32

		switch n.Kind {
		case Leaf:
			for j := n.Body; j != none; j = t.next[j] {
				m := t.mass[j]
				mass += m
				weighted = weighted.Add(t.pos[j].Mul(m))
				count++
			}
		case Internal:
			for q := int32(0); q < 4; q++ {
				c := &t.nodes[n.Child+q]
				mass += c.Mass
				weighted = weighted.Add(c.COM.Mul(c.Mass))
				count += c.Count
			}
		}

		n.Mass = mass
		n.Count = count
		if mass > 0 {
			n.COM = weighted.Mul(1 / mass)
		} else {
			n.COM = n.Center()
		}
	}
}
