package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/bhsim/internal/export"
	"github.com/san-kum/bhsim/internal/metrics"
	"github.com/san-kum/bhsim/internal/particles"
	"github.com/san-kum/bhsim/internal/render"
	"github.com/san-kum/bhsim/internal/storage"
	"github.com/spf13/cobra"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDISTRIBUTION\tTIME\tN\tSTEPS\tDT\tINTEG\tSTATUS")
	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "halted"
		} else if run.FinalStep < run.Steps {
			status = "interrupted"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d/%d\t%g\t%s\t%s\n",
			run.ID,
			run.Distribution,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.FinalStep, run.Steps,
			run.Dt,
			run.Integrator,
			status,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadDiagnostics(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("distribution: %s (n=%d, seed=%d)\n", meta.Distribution, meta.Particles, meta.Seed)
	fmt.Printf("samples: %d\n", len(samples))
	if meta.Error != "" {
		fmt.Printf("halted: %s\n", meta.Error)
	}
	fmt.Println()

	if len(samples) > 1 {
		series := []struct {
			name string
			f    func(metrics.Sample) float64
		}{
			{"Total energy", func(s metrics.Sample) float64 { return s.Total }},
			{"Kinetic energy", func(s metrics.Sample) float64 { return s.Kinetic }},
			{"Angular momentum", func(s metrics.Sample) float64 { return s.AngularMomentum }},
		}
		for _, sr := range series {
			data := make([]float64, len(samples))
			for i, s := range samples {
				data[i] = sr.f(s)
			}
			fmt.Println(asciigraph.Plot(data, asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption(sr.name)))
			fmt.Println()
		}
	}

	if svgOut == "" && pngOut == "" {
		return nil
	}
	snaps, err := st.LoadSnapshots(runID)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return fmt.Errorf("run %s has no stored snapshots", runID)
	}
	last := snaps[len(snaps)-1]
	v := render.Fit(snaps[0], frameSize, frameSize).Zoom(0.8)

	if svgOut != "" {
		var svg string
		if trajectory >= 0 {
			path, err := particlePath(snaps, trajectory)
			if err != nil {
				return err
			}
			svg = export.TrajectoryToSVG(path, frameSize, frameSize, "#00ccff")
		} else {
			svg = export.SnapshotToSVG(last, v, 1.5)
		}
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
	}
	if pngOut != "" {
		if err := render.SavePNG(pngOut, last, v); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", pngOut)
	}
	return nil
}

func particlePath(snaps []*particles.Snapshot, i int) ([]mgl64.Vec2, error) {
	path := make([]mgl64.Vec2, 0, len(snaps))
	for _, s := range snaps {
		if i >= s.Len() {
			return nil, fmt.Errorf("particle %d out of range (n=%d)", i, s.Len())
		}
		path = append(path, s.Positions[i])
	}
	return path, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	snaps, err := st.LoadSnapshots(runID)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return fmt.Errorf("run %s has no stored snapshots", runID)
	}
	return storage.ExportJSON(os.Stdout, *meta, snaps[len(snaps)-1])
}
