// Package viz provides a terminal view of a running simulation.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: steps a simulator on a timer and draws every particle
//   - [Canvas]: Braille-based pixel canvas, 2x4 dots per character cell
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	.     - Single step while paused
//	R     - Restart from the initial distribution
//	+/-   - Zoom
//	F     - Fit the view to the current particles
//	B     - Show the quadtree root square
//	S     - Save a PNG screenshot to the current directory
//	?     - Show help overlay
package viz
