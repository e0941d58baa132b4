package viz

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/gomega"
	"github.com/san-kum/bhsim/internal/distribution"
	"github.com/san-kum/bhsim/internal/dynamo"
	"github.com/san-kum/bhsim/internal/particles"
	"github.com/san-kum/bhsim/internal/sim"
)

func TestCanvasSetAndEach(t *testing.T) {
	g := NewWithT(t)
	c := NewCanvas(4, 2)

	c.Set(0, 0)
	c.Set(7, 7)
	c.Set(-1, 3)
	c.Set(100, 0)

	var dots [][2]int
	c.Each(func(x, y int) { dots = append(dots, [2]int{x, y}) })
	g.Expect(dots).To(Equal([][2]int{{0, 0}, {7, 7}}))

	g.Expect(c.Grid[0][0]).To(Equal(rune(0x2801)))
	g.Expect(c.Grid[1][3]).To(Equal(rune(0x2880)))

	c.Clear()
	g.Expect(strings.Trim(c.String(), "⠀\n")).To(BeEmpty())
}

func TestCanvasPlot(t *testing.T) {
	c := NewCanvas(10, 5)
	snap := &particles.Snapshot{
		Positions:  []mgl64.Vec2{{0, 0}, {1, 1}, {500, 500}},
		Velocities: make([]mgl64.Vec2, 3),
		Masses:     []float64{1, 1, 1},
	}
	if n := c.Plot(snap, c.View(mgl64.Vec2{}, 2)); n != 2 {
		t.Errorf("expected 2 visible particles, got %d", n)
	}
}

func newFactory(t *testing.T) sim.Factory {
	return func(int) (*sim.Simulator, error) {
		store, err := distribution.Generate(distribution.CustomSeed, distribution.Options{N: 64, Seed: 9, Extent: 10})
		if err != nil {
			return nil, err
		}
		p := dynamo.DefaultParams(64)
		p.Softening = 0.5
		return sim.New(p, store)
	}
}

func TestModelSteps(t *testing.T) {
	g := NewWithT(t)
	m, err := NewModel(newFactory(t), "custom seed")
	g.Expect(err).NotTo(HaveOccurred())

	next, cmd := m.Update(TickMsg(time.Now()))
	g.Expect(cmd).NotTo(BeNil())
	m = next.(Model)
	g.Expect(m.snap.Step).To(Equal(1))
	g.Expect(m.stats.Nodes).To(BeNumerically(">", 1))

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	m = next.(Model)
	g.Expect(m.running).To(BeFalse())

	next, _ = m.Update(TickMsg(time.Now()))
	m = next.(Model)
	g.Expect(m.snap.Step).To(Equal(1))

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'.'}})
	m = next.(Model)
	g.Expect(m.snap.Step).To(Equal(2))

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = next.(Model)
	g.Expect(m.snap.Step).To(Equal(0))

	view := m.View()
	g.Expect(view).To(ContainSubstring("PAUSED"))
	g.Expect(view).To(ContainSubstring("semi_implicit"))
}

func TestModelShowsHalt(t *testing.T) {
	g := NewWithT(t)
	m, err := NewModel(newFactory(t), "halt")
	g.Expect(err).NotTo(HaveOccurred())

	m.err = &dynamo.SimulationError{Step: 3, Wrapped: dynamo.ErrNumericalInstability}
	m.running = false
	g.Expect(errors.Is(m.err, dynamo.ErrNumericalInstability)).To(BeTrue())
	g.Expect(m.View()).To(ContainSubstring("HALTED"))
}

func TestNewModelFactoryError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewModel(func(int) (*sim.Simulator, error) { return nil, boom }, "x")
	if !errors.Is(err, boom) {
		t.Errorf("expected factory error, got %v", err)
	}
}
