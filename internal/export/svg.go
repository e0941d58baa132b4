package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bhsim/internal/particles"
	"github.com/san-kum/bhsim/internal/render"
	"github.com/san-kum/bhsim/internal/viz"
)

const background = "#0a0a0a"

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// SnapshotToSVG draws every visible particle as a dot coloured by speed.
// Dot area grows with the log of mass so a central body stands out.
func SnapshotToSVG(snap *particles.Snapshot, v render.View, dotRadius float64) string {
	var sb strings.Builder
	header(&sb, v.Width, v.Height)

	for i, b := range snap.Bodies() {
		px, py, ok := v.Project(b.Position)
		if !ok {
			continue
		}
		r := dotRadius
		if b.Mass > 1 {
			r *= 1 + 0.25*math.Log10(b.Mass)
		}
		fmt.Fprintf(&sb, `<circle cx="%d" cy="%d" r="%.2f" fill="%s"/>
`, px, py, r, render.SpeedColor(snap.Speed(i)).Hex())
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := int(float64(canvas.Width) * scale * 2)   // 2 sub-pixels per char
	height := int(float64(canvas.Height) * scale * 4) // 4 sub-pixels per char

	var sb strings.Builder
	header(&sb, width, height)
	sb.WriteString(`<g fill="#00ff00">` + "\n")

	dotRadius := scale * 0.4
	canvas.Each(func(x, y int) {
		cx := float64(x)*scale + scale/2
		cy := float64(y)*scale + scale/2
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius)
	})

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG draws one polyline through points, scaled to fit.
func TrajectoryToSVG(points []mgl64.Vec2, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	snap := &particles.Snapshot{Positions: points}
	v := render.Fit(snap, width, height)

	var sb strings.Builder
	header(&sb, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	for i, p := range points {
		x := (p[0] - v.Min[0]) * v.Scale
		y := float64(height) - (p[1]-v.Min[1])*v.Scale

		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
