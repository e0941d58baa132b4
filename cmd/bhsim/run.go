package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-logr/logr"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/bhsim/internal/config"
	"github.com/san-kum/bhsim/internal/distribution"
	"github.com/san-kum/bhsim/internal/integrators"
	"github.com/san-kum/bhsim/internal/metrics"
	"github.com/san-kum/bhsim/internal/render"
	"github.com/san-kum/bhsim/internal/sim"
	"github.com/san-kum/bhsim/internal/storage"
	"github.com/san-kum/bhsim/internal/telemetry"
	"github.com/san-kum/bhsim/internal/viz"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

// newFactory returns a factory whose run r uses seed cfg.Seed+r.
func newFactory(cfg *config.Config, log logr.Logger, opts ...sim.Option) sim.Factory {
	return func(run int) (*sim.Simulator, error) {
		o := cfg.Distribution()
		o.Seed += uint64(run)
		store, err := distribution.Generate(cfg.InitialDistribution, o)
		if err != nil {
			return nil, err
		}
		integ, err := integrators.ByName(cfg.Integrator)
		if err != nil {
			return nil, err
		}
		all := append([]sim.Option{
			sim.WithIntegrator(integ),
			sim.WithLogger(log.WithValues("run", run)),
		}, opts...)
		return sim.New(cfg.Params(), store, all...)
	}
}

// extentOf is the half-width of the initial distribution.
func extentOf(cfg *config.Config) float64 {
	if cfg.InitialDistribution == distribution.Disc {
		return cfg.DiscOuterRadius
	}
	return cfg.Extent
}

// frameView frames the whole initial distribution with some room to spread.
func frameView(cfg *config.Config, size int) render.View {
	return render.Centered(mgl64.Vec2{}, extentOf(cfg)*1.25, size, size)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log := klog.Background()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if numRuns > 1 {
		return runEnsemble(ctx, cfg, log)
	}

	tracker := metrics.NewTracker(cfg.GravitationalConstant, cfg.SofteningLength, diagEvery,
		metrics.NewEnergyDrift(cfg.GravitationalConstant, cfg.SofteningLength),
		metrics.NewMomentumDrift(),
		metrics.NewStability(4*extentOf(cfg)),
	)

	st := storage.New(dataDir)
	meta := storage.RunMetadata{
		Distribution: cfg.InitialDistribution,
		Seed:         cfg.Seed,
		Particles:    cfg.ParticleCount,
		Steps:        cfg.Steps,
		Dt:           cfg.TimeStep,
		Softening:    cfg.SofteningLength,
		Theta:        cfg.OpeningAngle,
		G:            cfg.GravitationalConstant,
		Integrator:   cfg.Integrator,
	}
	run, err := st.Create(meta, every)
	if err != nil {
		return err
	}
	// Nothing is kept on disk unless the run reaches Close below.
	defer run.Abort()

	opts := []sim.Option{sim.WithObserver(tracker), sim.WithObserver(run)}

	var frames *render.FrameWriter
	if framesDir != "" {
		frames, err = render.NewFrameWriter(framesDir, every, frameView(cfg, frameSize))
		if err != nil {
			return err
		}
		opts = append(opts, sim.WithObserver(frames))
	}

	if metricsAddr != "" {
		rec := telemetry.NewRecorder()
		opts = append(opts, sim.WithObserver(rec))
		go func() {
			if err := telemetry.Listen(ctx, metricsAddr, rec.Handler(), log); err != nil {
				log.Error(err, "metrics server failed", "addr", metricsAddr)
			}
		}()
	}

	s, err := newFactory(cfg, log, opts...)(0)
	if err != nil {
		return err
	}

	initial := s.Snapshot()
	tracker.Observe(initial)
	if err := run.WriteSnapshot(initial); err != nil {
		return err
	}
	if frames != nil {
		frames.Write(initial)
	}

	fmt.Printf("running %s: %d particles, %d steps, %s\n",
		cfg.InitialDistribution, cfg.ParticleCount, cfg.Steps, cfg.Integrator)
	start := time.Now()
	last, runErr := s.Run(ctx, cfg.Steps, nil)
	elapsed := time.Since(start)

	if last.Step%tracker.Every != 0 {
		tracker.Observe(last)
	}

	final := storage.RunMetadata{
		FinalStep: last.Step,
		FinalTime: last.Time,
		Metrics:   tracker.Values(),
	}
	interrupted := errors.Is(runErr, context.Canceled)
	if runErr != nil && !interrupted {
		final.Error = runErr.Error()
	}
	if err := run.Close(final, tracker.Samples()); err != nil {
		return err
	}
	if frames != nil && frames.Err() != nil {
		return frames.Err()
	}

	if interrupted {
		fmt.Printf("interrupted at step %d\n", last.Step)
	}
	fmt.Printf("completed %d steps in %v (%.2f ms/step)\n",
		last.Step, elapsed.Round(time.Millisecond), perStep(elapsed, last.Step))
	fmt.Printf("run id: %s\n", run.ID())
	if frames != nil {
		fmt.Printf("frames: %d in %s\n", frames.Frames(), framesDir)
	}

	fmt.Println("\nmetrics:")
	for name, val := range final.Metrics {
		fmt.Printf("  %s: %.6g\n", name, val)
	}

	if totals := tracker.Series(func(s metrics.Sample) float64 { return s.Total }); len(totals) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(totals, asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("Total energy")))
	}

	if jsonOut != "" {
		f, err := os.Create(jsonOut)
		if err != nil {
			return err
		}
		defer f.Close()
		meta.Metrics = final.Metrics
		if err := storage.ExportJSON(f, meta, last); err != nil {
			return err
		}
	}

	if interrupted {
		return nil
	}
	return runErr
}

func runEnsemble(ctx context.Context, cfg *config.Config, log logr.Logger) error {
	fmt.Printf("running %d × %s: %d particles, %d steps\n",
		numRuns, cfg.InitialDistribution, cfg.ParticleCount, cfg.Steps)

	start := time.Now()
	snaps, err := sim.NewEnsemble(newFactory(cfg, log), numRuns).Run(ctx, cfg.Steps)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start).Round(time.Millisecond))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSEED\tKINETIC\t|P|\tL\tCOM")
	for i, snap := range snaps {
		p := metrics.Momentum(snap)
		com := metrics.CenterOfMass(snap)
		fmt.Fprintf(w, "%d\t%d\t%.6g\t%.3g\t%.6g\t(%.3g, %.3g)\n",
			i, cfg.Seed+uint64(i), metrics.KineticEnergy(snap), p.Len(),
			metrics.AngularMomentum(snap), com[0], com[1])
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	m, err := viz.NewModel(newFactory(cfg, logr.Discard()), cfg.InitialDistribution)
	if err != nil {
		return err
	}
	return viz.Run(m)
}

func perStep(d time.Duration, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(d.Microseconds()) / 1000 / float64(n)
}
