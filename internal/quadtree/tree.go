package quadtree

import "github.com/go-gl/mathgl/mgl64"

// Kind tags a node's variant.
type Kind uint8

const (
	Empty Kind = iota
	Leaf
	Internal
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Leaf:
		return "leaf"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

const none int32 = -1

// Node is one arena slot.
type Node struct {
	Region
	Depth int32
	Kind  Kind

	// Body is the first particle of a Leaf, -1 otherwise. Further merged
	// particles follow through Tree.Next.
	Body int32
	// Child is the arena index of the SW child of an Internal node; the other
	// three follow in SE, NW, NE order.
	Child int32
	// Count is the number of particles in the subtree.
	Count int32

	Mass float64
	COM  mgl64.Vec2
}

// Tree is an immutable quadtree over one set of positions.
type Tree struct {
	nodes    []Node
	next     []int32
	pos      []mgl64.Vec2
	mass     []float64
	maxDepth int
}

// Root is always the first arena slot.
func (t *Tree) Root() int { return 0 }

func (t *Tree) Len() int { return len(t.nodes) }

// Node returns a copy of node i.
func (t *Tree) Node(i int) Node { return t.nodes[i] }

// Nodes exposes the arena. Callers must not modify it.
func (t *Tree) Nodes() []Node { return t.nodes }

// Positions are the positions the tree was built from.
func (t *Tree) Positions() []mgl64.Vec2 { return t.pos }

// Masses are the masses the tree was built from.
func (t *Tree) Masses() []float64 { return t.mass }

// Next returns the particle chained after j in the same leaf, or -1.
func (t *Tree) Next(j int32) int32 { return t.next[j] }

// Depth is the deepest level reached by any node.
func (t *Tree) Depth() int { return t.maxDepth }

// Bounds is the root region.
func (t *Tree) Bounds() Region { return t.nodes[0].Region }

// Members calls fn for every particle stored in leaf i.
func (t *Tree) Members(i int, fn func(j int)) {
	n := &t.nodes[i]
	if n.Kind != Leaf {
		return
	}
	for j := n.Body; j != none; j = t.next[j] {
		fn(int(j))
	}
}

// Walk visits nodes depth-first, parents before children. Returning false from
// fn skips the node's children.
func (t *Tree) Walk(fn func(i int, n Node) bool) {
	stack := []int32{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.nodes[i]
		if !fn(int(i), n) || n.Kind != Internal {
			continue
		}
		for q := int32(3); q >= 0; q-- {
			stack = append(stack, n.Child+q)
		}
	}
}

// Children returns the arena indices of an internal node's four children.
func (t *Tree) Children(i int) [4]int {
	c := int(t.nodes[i].Child)
	return [4]int{c, c + 1, c + 2, c + 3}
}
