package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bhsim/internal/particles"
)

// View projects world coordinates onto a Width x Height pixel grid. Min is
// the world point at the bottom-left pixel.
type View struct {
	Min    mgl64.Vec2
	Scale  float64
	Width  int
	Height int
}

// Centered frames the square [center-half, center+half]² in w x h pixels.
func Centered(center mgl64.Vec2, half float64, w, h int) View {
	if !(half > 0) {
		half = 1
	}
	scale := float64(min(w, h)) / (2 * half)
	return View{
		Min:    center.Sub(mgl64.Vec2{float64(w) / 2 / scale, float64(h) / 2 / scale}),
		Scale:  scale,
		Width:  w,
		Height: h,
	}
}

// Fit frames every particle of snap with a 5% margin.
func Fit(snap *particles.Snapshot, w, h int) View {
	lo, hi := snap.Bounds()
	half := math.Max(hi[0]-lo[0], hi[1]-lo[1]) / 2 * 1.05
	return Centered(lo.Add(hi).Mul(0.5), half, w, h)
}

// Project returns the pixel for x and whether it falls inside the grid.
func (v View) Project(x mgl64.Vec2) (px, py int, ok bool) {
	fx := (x[0] - v.Min[0]) * v.Scale
	fy := (x[1] - v.Min[1]) * v.Scale
	if !(fx >= 0 && fy >= 0 && fx < float64(v.Width) && fy < float64(v.Height)) {
		return 0, 0, false
	}
	return int(fx), v.Height - 1 - int(fy), true
}

// Zoom scales the view about its centre; factors above 1 zoom in.
func (v View) Zoom(factor float64) View {
	c := v.Min.Add(mgl64.Vec2{float64(v.Width) / 2 / v.Scale, float64(v.Height) / 2 / v.Scale})
	half := float64(min(v.Width, v.Height)) / 2 / v.Scale / factor
	return Centered(c, half, v.Width, v.Height)
}
