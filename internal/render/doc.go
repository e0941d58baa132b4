// Package render turns snapshots into images.
//
// A [View] maps world coordinates onto a pixel grid with y pointing up.
// [Frame] rasterizes one snapshot into an RGBA image on a black background,
// colouring each particle by speed from blue (slow) to red (fast), and
// [FrameWriter] is a sim.Observer that writes numbered PNG frames.
package render
