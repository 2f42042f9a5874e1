package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/particlesim/internal/config"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type options struct {
	dataDir     string
	dt          float64
	duration    float64
	seed        int64
	stepper     string
	configFile  string
	preset      string
	workers     int
	sampleEvery int
	live        bool
	fps         int

	particle int
	axis     string
	svgPath  string
	portrait bool

	horizon float64
	dt0     float64
	levels  int
	drag    float64

	params       []string
	metric       string
	sweepWorkers int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "particlesim",
		Short:        "particle and spring dynamics lab",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data", ".particlesim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [system]",
		Short: "run simulation and store the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return runSimulation(cmd, args, opts) },
	}
	addRunFlags(runCmd, opts)
	runCmd.Flags().StringVar(&opts.configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().IntVar(&opts.sampleEvery, "sample-every", 1, "record positions every N steps")
	runCmd.Flags().BoolVar(&opts.live, "live", false, "draw the system in the terminal while it runs")
	runCmd.Flags().IntVar(&opts.fps, "fps", 30, "live view frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return listRuns(cmd, opts) },
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a particle coordinate over time",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return plotRun(cmd, args[0], opts) },
	}
	addSeriesFlags(plotCmd, opts)

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata, optionally the final frame as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return exportRun(cmd, args[0], opts) },
	}
	exportCmd.Flags().StringVar(&opts.svgPath, "svg", "", "write the final frame to this SVG file")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newStore(opts).ExportRun(cmd.OutOrStdout(), args[0])
		},
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return analyzeRun(cmd, args[0], opts) },
	}
	addSeriesFlags(analyzeCmd, opts)
	analyzeCmd.Flags().BoolVar(&opts.portrait, "portrait", false, "also draw the particle's x-y path")

	compareCmd := &cobra.Command{
		Use:   "compare [system] [stepper...]",
		Short: "compare steppers on the same system",
		Args:  cobra.MinimumNArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return compareSteppers(cmd, args, opts) },
	}
	addRunFlags(compareCmd, opts)

	convergeCmd := &cobra.Command{
		Use:   "converge [stepper...]",
		Short: "order-of-accuracy study against the exact oscillator",
		RunE:  func(cmd *cobra.Command, args []string) error { return convergeStudy(cmd, args, opts) },
	}
	convergeCmd.Flags().Float64Var(&opts.dt0, "dt0", 0.1, "coarsest timestep")
	convergeCmd.Flags().IntVar(&opts.levels, "levels", 5, "number of halvings")
	convergeCmd.Flags().Float64Var(&opts.horizon, "horizon", 1.0, "simulated time per run")
	convergeCmd.Flags().Float64Var(&opts.drag, "drag", 0, "oscillator drag")

	presetsCmd := &cobra.Command{
		Use:   "presets [system]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			systems := config.PresetSystems()
			if len(args) > 0 {
				systems = args
			}
			return listPresets(cmd.OutOrStdout(), systems)
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench [system]",
		Short: "benchmark a system",
		Args:  cobra.MaximumNArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return benchSystem(cmd, args, opts) },
	}
	addRunFlags(benchCmd, opts)

	sweepCmd := &cobra.Command{
		Use:   "sweep [system]",
		Short: "grid search over tunable parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return sweepParams(cmd, args, opts) },
	}
	addRunFlags(sweepCmd, opts)
	sweepCmd.Flags().StringArrayVar(&opts.params, "param", nil, "parameter values as name=v1,v2 (repeatable)")
	sweepCmd.Flags().StringVar(&opts.metric, "metric", "energy_drift", "metric to minimize")
	sweepCmd.Flags().IntVar(&opts.sweepWorkers, "parallel", 4, "concurrent runs")

	watchCmd := &cobra.Command{
		Use:   "watch [system]",
		Short: "step a system interactively in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return watchSystem(cmd, args, opts) },
	}
	addRunFlags(watchCmd, opts)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, analyzeCmd, compareCmd, convergeCmd, presetsCmd, benchCmd, sweepCmd, watchCmd)
	return rootCmd
}

func addRunFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().Float64Var(&opts.dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&opts.duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Int64Var(&opts.seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().StringVar(&opts.stepper, "stepper", "rk4", "stepper (euler, trapezoidal, rk4)")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "spring accumulation workers (0 = serial)")
}

func addSeriesFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().IntVar(&opts.particle, "particle", -1, "particle index (default: last)")
	cmd.Flags().StringVar(&opts.axis, "axis", "y", "coordinate: x, y or z")
}

// resolveConfig layers defaults, then a preset, then a config file, then
// explicitly set flags.
func resolveConfig(cmd *cobra.Command, system string, opts *options) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if opts.preset != "" {
		name := system
		if name == "" {
			name = cfg.System
		}
		p := config.GetPreset(name, opts.preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", opts.preset, config.ListPresets(name))
		}
		cfg = p
	}

	if opts.configFile != "" {
		loaded, err := config.Load(opts.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if system != "" {
		cfg.System = system
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = opts.dt
	}
	if flags.Changed("time") {
		cfg.Duration = opts.duration
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if flags.Changed("stepper") {
		cfg.Stepper = opts.stepper
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = opts.sampleEvery
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func listPresets(out io.Writer, systems []string) error {
	for _, system := range systems {
		names := config.ListPresets(system)
		if len(names) == 0 {
			fmt.Fprintf(out, "no presets for system: %s\n", system)
			continue
		}
		fmt.Fprintln(out, titleStyle.Render("presets for "+system+":"))
		for _, name := range names {
			p := config.GetPreset(system, name)
			fmt.Fprintf(out, "  %-10s %s\n", name, dimStyle.Render(fmt.Sprintf("dt=%g duration=%gs", p.Dt, p.Duration)))
		}
	}
	return nil
}

func printMetrics(out io.Writer, metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out, "\nmetrics:")
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %.6g\n", name, metrics[name])
	}
}
