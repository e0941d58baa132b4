package render

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

var (
	Slow = colorful.Color{R: 0, G: 40.0 / 255, B: 1}
	Fast = colorful.Color{R: 1, G: 40.0 / 255, B: 0}
)

// Heat maps a speed onto [0, 1): anything below 1 is cold, above that it
// approaches 1 as 1 - 1/speed.
func Heat(speed float64) float64 {
	if !(speed >= 1) {
		return 0
	}
	return 1 - 1/speed
}

// SpeedColor blends Slow into Fast in Lab space.
func SpeedColor(speed float64) colorful.Color {
	return Slow.BlendLab(Fast, Heat(speed)).Clamped()
}
