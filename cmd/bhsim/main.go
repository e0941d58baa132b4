package main

import (
	goflag "flag"
	"fmt"
	"os"

	"github.com/san-kum/bhsim/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

var (
	dataDir    string
	configFile string
	preset     string

	distName      string
	particleCount int
	dt            float64
	softening     float64
	theta         float64
	gConst        float64
	steps         int
	seed          uint64
	integrator    string
	workers       int

	every       int
	diagEvery   int
	framesDir   string
	frameSize   int
	metricsAddr string
	numRuns     int
	jsonOut     string

	benchSizes []int
	directMax  int

	svgOut     string
	pngOut     string
	trajectory int
)

// main registers commands and flags and executes the root command. It exits
// with status 1 if the command returns an error.
func main() {
	klog.InitFlags(nil)
	pflag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	defer klog.Flush()

	rootCmd := &cobra.Command{
		Use:          "bhsim",
		Short:        "planar Barnes-Hut gravity simulator",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".bhsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().IntVar(&every, "every", 10, "store a snapshot every N steps")
	runCmd.Flags().IntVar(&diagEvery, "diag-every", 10, "record conserved quantities every N steps")
	runCmd.Flags().StringVar(&framesDir, "frames", "", "write PNG frames into this directory")
	runCmd.Flags().IntVar(&frameSize, "frame-size", 512, "PNG frame width and height")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	runCmd.Flags().IntVar(&numRuns, "runs", 1, "run an ensemble of independent seeds instead of one stored run")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "also export the final snapshot as JSON to this file")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "compare tree forces against direct summation",
		Args:  cobra.NoArgs,
		RunE:  benchForces,
	}
	addSimFlags(benchCmd)
	benchCmd.Flags().IntSliceVar(&benchSizes, "sizes", []int{1000, 4000, 16000}, "particle counts to benchmark")
	benchCmd.Flags().IntVar(&directMax, "direct-max", 16000, "skip direct summation above this particle count")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot diagnostics of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "write the final snapshot as SVG")
	plotCmd.Flags().StringVar(&pngOut, "png", "", "write the final snapshot as PNG")
	plotCmd.Flags().IntVar(&trajectory, "trajectory", -1, "with --svg, draw the path of this particle instead")
	plotCmd.Flags().IntVar(&frameSize, "frame-size", 512, "image width and height")

	exportCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "print the final stored snapshot of a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, presetsCmd, listCmd, plotCmd, exportCmd)
	if err := rootCmd.Execute(); err != nil {
		klog.Flush()
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "start from a preset (see: bhsim presets)")
	cmd.Flags().StringVar(&distName, "distribution", def.InitialDistribution, "initial distribution")
	cmd.Flags().IntVarP(&particleCount, "particles", "n", def.ParticleCount, "particle count")
	cmd.Flags().Float64Var(&dt, "dt", def.TimeStep, "time step")
	cmd.Flags().Float64Var(&softening, "softening", def.SofteningLength, "softening length")
	cmd.Flags().Float64Var(&theta, "theta", def.OpeningAngle, "opening angle")
	cmd.Flags().Float64Var(&gConst, "g", def.GravitationalConstant, "gravitational constant")
	cmd.Flags().IntVar(&steps, "steps", def.Steps, "steps to run")
	cmd.Flags().Uint64Var(&seed, "seed", def.Seed, "random seed")
	cmd.Flags().StringVar(&integrator, "integrator", def.Integrator, "integrator (semi_implicit, euler, verlet)")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines per phase (0 = GOMAXPROCS)")
}

// resolveConfig layers defaults, then a preset, then a config file, then any
// flag the user set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("distribution") {
		cfg.InitialDistribution = distName
	}
	if flags.Changed("particles") {
		cfg.ParticleCount = particleCount
	}
	if flags.Changed("dt") {
		cfg.TimeStep = dt
	}
	if flags.Changed("softening") {
		cfg.SofteningLength = softening
	}
	if flags.Changed("theta") {
		cfg.OpeningAngle = theta
	}
	if flags.Changed("g") {
		cfg.GravitationalConstant = gConst
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	}

	fmt.Println("presets:")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Printf("  %-14s n=%-6d dt=%-8g θ=%-4g ε=%-4g %s\n",
			name, cfg.ParticleCount, cfg.TimeStep, cfg.OpeningAngle, cfg.SofteningLength, cfg.Integrator)
	}
	return nil
}
