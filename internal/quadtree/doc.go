// Package quadtree builds the per-step spatial index used for Barnes-Hut force
// evaluation.
//
// A tree is an arena of [Node] values addressed by index. Children of an
// internal node occupy four consecutive slots (SW, SE, NW, NE) and always sit
// after their parent, so a reverse sweep over the arena visits every child
// before its parent. The builder reuses its arena between steps; a [Tree] is
// valid until the next call to [Builder.Build].
//
// Placement is deterministic: a point with x >= midX goes east, y >= midY goes
// north. Particles with bit-identical positions, or reaching the depth cap,
// are chained onto a single leaf rather than split further.
package quadtree
