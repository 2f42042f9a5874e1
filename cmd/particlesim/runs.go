package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/particlesim/internal/analysis"
	"github.com/san-kum/particlesim/internal/experiment"
	"github.com/san-kum/particlesim/internal/export"
	"github.com/san-kum/particlesim/internal/physics"
	"github.com/san-kum/particlesim/internal/storage"
	"github.com/san-kum/particlesim/internal/tui"
	"github.com/spf13/cobra"
)

func newStore(opts *options) *storage.Store {
	return storage.New(opts.dataDir)
}

func systemArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func runSimulation(cmd *cobra.Command, args []string, opts *options) error {
	cfg, err := resolveConfig(cmd, systemArg(args), opts)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, nil)
	if err := exp.Setup(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("running %s with %s", cfg.System, cfg.Stepper)))
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%d particles, dt=%g, duration=%gs, %d steps",
		exp.System().NumParticles(), cfg.Dt, cfg.Duration, cfg.Steps())))

	if opts.live {
		live := tui.NewLiveRenderer(out, cfg.System, opts.fps)
		if sl, ok := exp.System().(springLinked); ok {
			links, pinned := linksOf(sl)
			live.SetLinks(links, pinned)
		}
		live.Track(exp.System().NumParticles() - 1)
		exp.GetSimulator().AddObserver(live)
		live.Start()
		defer live.Stop()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		fmt.Fprintln(out, errStyle.Render("interrupted, saving partial run"))
	}
	elapsed := time.Since(start)

	st := newStore(opts)
	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "completed in %v\n", elapsed)
	fmt.Fprintf(out, "run id: %s\n", runID)
	fmt.Fprintf(out, "steps: %d\n", result.StepsTaken)
	printMetrics(out, result.Metrics)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			fmt.Fprintln(out, errStyle.Render("error: "+e.Error()))
		}
		return fmt.Errorf("run %s: %w", runID, result.Errors[0])
	}
	return nil
}

func listRuns(cmd *cobra.Command, opts *options) error {
	runs, err := newStore(opts).List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYSTEM\tSTEPPER\tTIME\tDURATION\tDT\tPARTICLES\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if len(run.Errors) > 0 {
			status = "diverged"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%s\n",
			run.ID,
			run.System,
			run.Stepper,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.NumParticles,
			status,
		)
	}

	return w.Flush()
}

func axisIndex(axis string) (int, error) {
	switch axis {
	case "x":
		return 0, nil
	case "y":
		return 1, nil
	case "z":
		return 2, nil
	}
	return 0, fmt.Errorf("unknown axis %q (want x, y or z)", axis)
}

// loadSeries reads one coordinate of one particle from a stored run. A
// negative particle selects the last one.
func loadSeries(runID string, opts *options) (*storage.RunMetadata, *storage.Trajectory, []float64, int, error) {
	st := newStore(opts)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	traj, err := st.LoadPositions(runID)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	if len(traj.Positions) == 0 {
		return nil, nil, nil, 0, fmt.Errorf("no data in run %s", runID)
	}

	axis, err := axisIndex(opts.axis)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	particle := opts.particle
	if particle < 0 {
		particle = len(traj.Positions[0]) - 1
	}
	series, err := analysis.Component(traj.Positions, particle, axis)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	return meta, traj, series, particle, nil
}

func plotRun(cmd *cobra.Command, runID string, opts *options) error {
	meta, traj, series, particle, err := loadSeries(runID, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("run: "+meta.ID))
	fmt.Fprintf(out, "system: %s  stepper: %s\n", meta.System, meta.Stepper)
	fmt.Fprintf(out, "samples: %d\n\n", len(series))

	graph := asciigraph.Plot(series,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("particle %d %s vs time", particle, opts.axis)),
	)
	fmt.Fprintln(out, graph)

	if len(traj.Energies) > 1 {
		fmt.Fprintln(out)
		graph = asciigraph.Plot(traj.Energies,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption("total energy"),
		)
		fmt.Fprintln(out, graph)
	}
	return nil
}

// springLinked is satisfied by every system built on physics.SpringSystem.
type springLinked interface {
	Springs() []physics.Spring
	Particles() []physics.Particle
}

func linksOf(sl springLinked) ([][2]int, []bool) {
	springs := sl.Springs()
	links := make([][2]int, 0, len(springs))
	for _, sp := range springs {
		links = append(links, [2]int{sp.A, sp.B})
	}
	var pinned []bool
	for _, p := range sl.Particles() {
		pinned = append(pinned, p.Pinned())
	}
	return links, pinned
}

func exportRun(cmd *cobra.Command, runID string, opts *options) error {
	st := newStore(opts)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	if opts.svgPath != "" {
		if err := writeFrameSVG(st, meta, opts.svgPath); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), dimStyle.Render("wrote "+opts.svgPath))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeFrameSVG(st *storage.Store, meta *storage.RunMetadata, path string) error {
	traj, err := st.LoadPositions(meta.ID)
	if err != nil {
		return err
	}
	if len(traj.Positions) == 0 {
		return fmt.Errorf("no data in run %s", meta.ID)
	}
	final := traj.Positions[len(traj.Positions)-1]

	var links [][2]int
	var pinned []bool
	if meta.Config != nil {
		sys, err := experiment.NewRegistry().GetSystem(meta.Config)
		if err != nil {
			return err
		}
		if sl, ok := sys.(springLinked); ok {
			links, pinned = linksOf(sl)
		}
	}

	return os.WriteFile(path, []byte(export.FrameSVG(final, links, pinned, 800, 600)), 0644)
}

func analyzeRun(cmd *cobra.Command, runID string, opts *options) error {
	meta, traj, series, particle, err := loadSeries(runID, opts)
	if err != nil {
		return err
	}
	if len(traj.Times) < 2 {
		return fmt.Errorf("run %s has too few samples", runID)
	}
	sampleDt := traj.Times[1] - traj.Times[0]

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("frequency analysis: "+meta.ID))
	fmt.Fprintf(out, "system: %s  particle %d %s, sampled every %gs\n\n", meta.System, particle, opts.axis, sampleDt)

	freq, err := analysis.DominantFrequency(series, sampleDt)
	if err != nil {
		return err
	}

	ps := analysis.PowerSpectrum(series)
	plotData := ps
	if len(ps) >= 8 {
		plotData = ps[:len(ps)/4]
	}
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (particle %d %s)", particle, opts.axis)),
	)
	fmt.Fprintln(out, graph)
	fmt.Fprintln(out)

	fmt.Fprintf(out, "dominant frequency: %.4f hz\n", freq)
	if freq > 0 {
		fmt.Fprintf(out, "period: %.4f s\n", 1.0/freq)
	}

	if meta.Config != nil && meta.System == "oscillator" && particle == 1 && opts.axis == "x" {
		if ref, err := analysis.NewReference(meta.Config.OscillatorConfig()); err == nil {
			exact := ref.Series(sampleDt, len(series))
			worst := 0.0
			for i, v := range series {
				worst = math.Max(worst, math.Abs(v-exact[i]))
			}
			fmt.Fprintf(out, "max deviation from exact solution: %.3e\n", worst)
		}
	}

	if opts.portrait {
		portrait, err := analysis.PhasePortrait(traj.Positions, particle)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("particle %d path (x horizontal, y vertical)", particle)))
		fmt.Fprint(out, analysis.PhasePortraitToASCII(portrait, 60, 20))
	}
	return nil
}
