// Package telemetry exports per-step simulator statistics as Prometheus
// metrics.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/san-kum/bhsim/internal/particles"
	"github.com/san-kum/bhsim/internal/sim"
)

const namespace = "bhsim"

// Recorder is a sim.Observer that feeds its own registry.
type Recorder struct {
	registry *prometheus.Registry

	steps     prometheus.Counter
	phase     *prometheus.HistogramVec
	nodes     prometheus.Gauge
	depth     prometheus.Gauge
	visits    prometheus.Counter
	simTime   prometheus.Gauge
	particles prometheus.Gauge
}

var _ sim.Observer = (*Recorder)(nil)

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Completed simulation steps.",
		}),
		phase: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Wall time spent per step phase.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"phase"}),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tree_nodes",
			Help:      "Quadtree arena size in the last step.",
		}),
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tree_depth",
			Help:      "Deepest quadtree level in the last step.",
		}),
		visits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_visits_total",
			Help:      "Tree nodes visited by force evaluation.",
		}),
		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "simulation_time",
			Help:      "Simulated time after the last step.",
		}),
		particles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "particles",
			Help:      "Particles in the simulation.",
		}),
	}
	r.registry.MustRegister(r.steps, r.phase, r.nodes, r.depth, r.visits, r.simTime, r.particles)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) OnStep(snap *particles.Snapshot, stats sim.StepStats) {
	r.steps.Inc()
	r.phase.WithLabelValues("build").Observe(stats.Build.Seconds())
	r.phase.WithLabelValues("forces").Observe(stats.Forces.Seconds())
	r.phase.WithLabelValues("integrate").Observe(stats.Integrate.Seconds())
	r.nodes.Set(float64(stats.Nodes))
	r.depth.Set(float64(stats.Depth))
	r.visits.Add(float64(stats.NodeVisits))
	r.simTime.Set(snap.Time)
	r.particles.Set(float64(snap.Len()))
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Listen serves /metrics on addr until ctx is done.
func Listen(ctx context.Context, addr string, h http.Handler, log logr.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Info("serving metrics", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
