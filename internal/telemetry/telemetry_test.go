package telemetry

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/san-kum/bhsim/internal/dynamo"
	"github.com/san-kum/bhsim/internal/particles"
	"github.com/san-kum/bhsim/internal/sim"
)

func TestRecorderOnStep(t *testing.T) {
	g := NewWithT(t)
	r := NewRecorder()

	snap := &particles.Snapshot{
		Step:       1,
		Time:       0.5,
		Positions:  []mgl64.Vec2{{0, 0}, {1, 0}, {0, 1}},
		Velocities: make([]mgl64.Vec2, 3),
		Masses:     []float64{1, 1, 1},
	}
	stats := sim.StepStats{Step: 1, Build: time.Millisecond, Nodes: 9, Depth: 2, NodeVisits: 12}
	r.OnStep(snap, stats)
	r.OnStep(snap, stats)

	g.Expect(testutil.ToFloat64(r.steps)).To(Equal(2.0))
	g.Expect(testutil.ToFloat64(r.visits)).To(Equal(24.0))
	g.Expect(testutil.ToFloat64(r.nodes)).To(Equal(9.0))
	g.Expect(testutil.ToFloat64(r.depth)).To(Equal(2.0))
	g.Expect(testutil.ToFloat64(r.simTime)).To(Equal(0.5))
	g.Expect(testutil.ToFloat64(r.particles)).To(Equal(3.0))
	g.Expect(testutil.CollectAndCount(r.phase)).To(Equal(3))
}

func TestRecorderWithSimulator(t *testing.T) {
	g := NewWithT(t)

	store, err := particles.New(
		[]mgl64.Vec2{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		make([]mgl64.Vec2, 4),
		[]float64{1, 1, 1, 1},
	)
	g.Expect(err).NotTo(HaveOccurred())

	r := NewRecorder()
	s, err := sim.New(dynamo.DefaultParams(4), store, sim.WithObserver(r))
	g.Expect(err).NotTo(HaveOccurred())
	_, err = s.Run(context.Background(), 10, nil)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(testutil.ToFloat64(r.steps)).To(Equal(10.0))
	g.Expect(testutil.ToFloat64(r.visits)).To(BeNumerically(">", 0))

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	g.Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(strings.Contains(string(body), "bhsim_steps_total 10")).To(BeTrue())
}
