package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bhsim/internal/distribution"
	"github.com/san-kum/bhsim/internal/force"
	"github.com/san-kum/bhsim/internal/quadtree"
	"github.com/spf13/cobra"
)

func benchForces(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()

	fmt.Printf("bench %s: θ=%g ε=%g\n\n", cfg.InitialDistribution, cfg.OpeningAngle, cfg.SofteningLength)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tBUILD\tTREE\tVISITS/P\tDIRECT\tSPEEDUP\tMEAN ERR\tMAX ERR")

	for _, n := range benchSizes {
		c := *cfg
		c.ParticleCount = n
		store, err := distribution.Generate(c.InitialDistribution, c.Distribution())
		if err != nil {
			return err
		}
		p := c.Params()
		pos, mass := store.Positions(), store.Masses()

		start := time.Now()
		tree, err := quadtree.NewBuilder(p).Build(pos, mass)
		if err != nil {
			return err
		}
		build := time.Since(start)

		eval := force.New(p)
		approx := make([]mgl64.Vec2, n)
		start = time.Now()
		stats, err := eval.Accelerations(ctx, tree, approx)
		if err != nil {
			return err
		}
		treeTime := time.Since(start)
		visits := float64(stats.NodeVisits) / float64(n)

		if n > directMax {
			fmt.Fprintf(w, "%d\t%v\t%v\t%.1f\t-\t-\t-\t-\n", n, build, treeTime, visits)
			continue
		}

		exact := make([]mgl64.Vec2, n)
		start = time.Now()
		if err := eval.Direct(ctx, pos, mass, exact); err != nil {
			return err
		}
		direct := time.Since(start)

		mean, worst := relativeErrors(approx, exact)
		fmt.Fprintf(w, "%d\t%v\t%v\t%.1f\t%v\t%.1fx\t%.2e\t%.2e\n",
			n, build, treeTime, visits, direct,
			float64(direct)/float64(build+treeTime), mean, worst)
	}
	return w.Flush()
}

// relativeErrors compares approx against exact per particle, skipping
// particles that feel no force at all.
func relativeErrors(approx, exact []mgl64.Vec2) (mean, worst float64) {
	n := 0
	for i := range exact {
		ref := exact[i].Len()
		if ref == 0 {
			continue
		}
		e := approx[i].Sub(exact[i]).Len() / ref
		mean += e
		worst = max(worst, e)
		n++
	}
	if n > 0 {
		mean /= float64(n)
	}
	return mean, worst
}
