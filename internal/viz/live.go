package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/bhsim/internal/metrics"
	"github.com/san-kum/bhsim/internal/particles"
	"github.com/san-kum/bhsim/internal/quadtree"
	"github.com/san-kum/bhsim/internal/render"
	"github.com/san-kum/bhsim/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	maxStepsPerTick = 64
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model drives one simulator from the bubbletea event loop and draws it on
// a Braille canvas.
type Model struct {
	factory sim.Factory
	sim     *sim.Simulator
	title   string

	canvas *Canvas
	view   render.View
	home   render.View

	snap    *particles.Snapshot
	stats   *sim.StepStats
	visible int

	running      bool
	showBounds   bool
	showHelp     bool
	stepsPerTick int
	kinetic      []float64
	status       string
	err          error
}

// NewModel builds the first simulator from factory. Reset builds a fresh
// one from the same factory.
func NewModel(factory sim.Factory, title string) (Model, error) {
	m := Model{
		factory:      factory,
		title:        title,
		canvas:       NewCanvas(width, height),
		stats:        &sim.StepStats{},
		running:      true,
		stepsPerTick: 1,
		kinetic:      make([]float64, 0, historyCapacity),
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	m.home = render.Fit(m.snap, width*2, height*4)
	m.view = m.home
	return m, nil
}

func (m *Model) reset() error {
	s, err := m.factory(0)
	if err != nil {
		return err
	}
	stats := m.stats
	s.AddObserver(sim.ObserverFunc(func(_ *particles.Snapshot, st sim.StepStats) { *stats = st }))
	*m.stats = sim.StepStats{}
	m.sim = s
	m.snap = s.Snapshot()
	m.kinetic = append(m.kinetic[:0], metrics.KineticEnergy(m.snap))
	m.err = nil
	m.status = ""
	return nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case ".":
			if !m.running {
				m.advance(1)
			}
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
			m.view = m.home
		case "+", "=":
			m.view = m.view.Zoom(1.25)
		case "-", "_":
			m.view = m.view.Zoom(0.8)
		case "f":
			m.view = render.Fit(m.snap, width*2, height*4)
		case "b":
			m.showBounds = !m.showBounds
		case "up", "k":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "down", "j":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "s":
			m.screenshot()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.advance(m.stepsPerTick)
		}
		return m, tick()
	}
	return m, nil
}

// advance runs n steps; a failure pauses the view and keeps the last good
// snapshot on screen.
func (m *Model) advance(n int) {
	for i := 0; i < n; i++ {
		snap, err := m.sim.Step(context.Background())
		if err != nil {
			m.err = err
			m.running = false
			return
		}
		m.snap = snap
	}
	m.kinetic = append(m.kinetic, metrics.KineticEnergy(m.snap))
	if len(m.kinetic) > historyCapacity {
		m.kinetic = m.kinetic[1:]
	}
}

func (m *Model) screenshot() {
	path := fmt.Sprintf("bhsim_%06d.png", m.snap.Step)
	v := render.Fit(m.snap, 512, 512)
	if err := render.SavePNG(path, m.snap, v); err != nil {
		m.status = "screenshot failed: " + err.Error()
		return
	}
	m.status = "saved " + path
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.visible = m.canvas.Plot(m.snap, m.view)
	if m.showBounds {
		if r, err := quadtree.BoundingSquare(m.snap.Positions, m.sim.Params().Padding); err == nil {
			m.canvas.DrawRect(m.view, r.Min, r.Size)
		}
	}
}

var (
	titleStart = colorful.Color{R: 0, G: 1, B: 1}
	titleEnd   = colorful.Color{R: 1, G: 0, B: 1}
)

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.title), titleStart, titleEnd) + "\n\n")

	switch {
	case m.err != nil:
		s.WriteString(errorStyle.Render("HALTED") + "\n")
		s.WriteString(errorStyle.Render(wrap(m.err.Error(), 38)) + "\n\n")
	case m.running:
		s.WriteString(StatusRunning.Render(fmt.Sprintf("RUNNING x%d", m.stepsPerTick)) + "\n\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.kinetic) > 1 {
		chart := asciigraph.Plot(m.kinetic, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	p := m.sim.Params()
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d", m.snap.Step))
	row("Time", fmt.Sprintf("%.3f", m.snap.Time))
	row("Particles", fmt.Sprintf("%d (%d shown)", m.snap.Len(), m.visible))
	row("Integrator", m.sim.Integrator())
	row("θ / ε", fmt.Sprintf("%g / %g", p.Theta, p.Softening))
	row("Tree", fmt.Sprintf("%d nodes, depth %d", m.stats.Nodes, m.stats.Depth))
	if n := m.snap.Len(); n > 0 {
		row("Visits/p", fmt.Sprintf("%.1f", float64(m.stats.NodeVisits)/float64(n)))
	}
	row("Step time", m.stats.Total().Round(time.Microsecond).String())

	if m.status != "" {
		s.WriteString("\n" + Subtle.Render(m.status) + "\n")
	}

	s.WriteString(helpStyle.Render(Separator(36) + "\nSP:Pause .:Step R:Reset Q:Quit\n+/-:Zoom F:Fit B:Bounds ↑↓:Speed"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  .        - Single step when paused  ║
║  R        - Restart from step 0      ║
║  + / -    - Zoom in / out            ║
║  F        - Fit view to particles    ║
║  B        - Toggle bounding square   ║
║  Up/Down  - Steps per frame x2 / /2  ║
║  S        - Save PNG screenshot      ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func wrap(s string, n int) string {
	var b strings.Builder
	for len(s) > n {
		b.WriteString(s[:n] + "\n")
		s = s[n:]
	}
	b.WriteString(s)
	return b.String()
}

// Run blocks until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
