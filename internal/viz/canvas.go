package viz

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bhsim/internal/particles"
	"github.com/san-kum/bhsim/internal/render"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const blank = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at (x, y) in sub-pixel coordinates. The canvas is
// (Width*2) x (Height*4) dots.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// Each calls fn for every lit dot, row by row.
func (c *Canvas) Each(fn func(x, y int)) {
	for row := range c.Grid {
		for col, r := range c.Grid[row] {
			if r <= blank {
				continue
			}
			pattern := int(r - blank)
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						fn(col*2+dx, row*4+dy)
					}
				}
			}
		}
	}
}

// View returns a render.View over the canvas dot grid framing the square
// of the given half-width.
func (c *Canvas) View(center mgl64.Vec2, half float64) render.View {
	return render.Centered(center, half, c.Width*2, c.Height*4)
}

// Plot lights one dot per visible particle and reports how many landed on
// the canvas.
func (c *Canvas) Plot(snap *particles.Snapshot, v render.View) int {
	n := 0
	for _, b := range snap.Bodies() {
		if x, y, ok := v.Project(b.Position); ok {
			c.Set(x, y)
			n++
		}
	}
	return n
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawRect outlines the world-space square with corner min and side size,
// clipped to the canvas.
func (c *Canvas) DrawRect(v render.View, min mgl64.Vec2, size float64) {
	x0 := int((min[0] - v.Min[0]) * v.Scale)
	y0 := v.Height - 1 - int((min[1]-v.Min[1])*v.Scale)
	x1 := int((min[0] + size - v.Min[0]) * v.Scale)
	y1 := v.Height - 1 - int((min[1]+size-v.Min[1])*v.Scale)
	x0, x1 = clamp(x0, v.Width), clamp(x1, v.Width)
	y0, y1 = clamp(y0, v.Height), clamp(y1, v.Height)

	c.DrawLine(x0, y0, x1, y0)
	c.DrawLine(x1, y0, x1, y1)
	c.DrawLine(x1, y1, x0, y1)
	c.DrawLine(x0, y1, x0, y0)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, n int) int {
	return max(0, min(x, n-1))
}
