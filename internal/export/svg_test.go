package export

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/gomega"
	"github.com/san-kum/bhsim/internal/particles"
	"github.com/san-kum/bhsim/internal/render"
	"github.com/san-kum/bhsim/internal/viz"
)

func TestSnapshotToSVG(t *testing.T) {
	g := NewWithT(t)

	snap := &particles.Snapshot{
		Positions:  []mgl64.Vec2{{0, 0}, {1, 0}, {10, 10}},
		Velocities: []mgl64.Vec2{{0, 0}, {2, 0}, {0, 0}},
		Masses:     []float64{1e4, 1, 1},
	}
	v := render.Centered(mgl64.Vec2{}, 2, 100, 100)

	svg := SnapshotToSVG(snap, v, 2)
	g.Expect(svg).To(HavePrefix("<?xml"))
	g.Expect(svg).To(HaveSuffix("</svg>"))
	g.Expect(strings.Count(svg, "<circle")).To(Equal(2), "off-view particle is skipped")

	heavy := `<circle cx="50" cy="49" r="4.00" fill="` + render.SpeedColor(0).Hex() + `"/>`
	light := `<circle cx="75" cy="49" r="2.00" fill="` + render.SpeedColor(2).Hex() + `"/>`
	g.Expect(svg).To(ContainSubstring(heavy))
	g.Expect(svg).To(ContainSubstring(light))
}

func TestCanvasToSVG(t *testing.T) {
	g := NewWithT(t)

	g.Expect(CanvasToSVG(nil, 1)).To(BeEmpty())

	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(3, 5)

	svg := CanvasToSVG(c, 1)
	g.Expect(svg).To(ContainSubstring(`width="8" height="8"`))
	g.Expect(strings.Count(svg, "<circle")).To(Equal(2))
	g.Expect(svg).To(ContainSubstring(`<circle cx="0.5" cy="0.5" r="0.4"/>`))
	g.Expect(svg).To(ContainSubstring(`<circle cx="3.5" cy="5.5" r="0.4"/>`))
}

func TestTrajectoryToSVG(t *testing.T) {
	g := NewWithT(t)

	g.Expect(TrajectoryToSVG([]mgl64.Vec2{{1, 1}}, 100, 100, "#fff")).To(BeEmpty())

	path := []mgl64.Vec2{{0, 0}, {1, 1}, {2, 0}}
	svg := TrajectoryToSVG(path, 200, 100, "#ff8800")
	g.Expect(svg).To(ContainSubstring(`stroke="#ff8800"`))
	g.Expect(svg).To(ContainSubstring(` d="M`))
	g.Expect(strings.Count(svg, " L")).To(Equal(len(path) - 1))
}
