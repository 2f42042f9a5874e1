package main

import (
	"fmt"
	"math"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/particlesim/internal/analysis"
	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/experiment"
	"github.com/san-kum/particlesim/internal/physics"
	"github.com/san-kum/particlesim/internal/sim"
	"github.com/spf13/cobra"
)

func compareSteppers(cmd *cobra.Command, args []string, opts *options) error {
	cfg, err := resolveConfig(cmd, args[0], opts)
	if err != nil {
		return err
	}
	names := args[1:]
	if len(names) == 0 {
		names = config.Steppers
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("comparing steppers for %s (dt=%.4f, duration=%.1fs)", cfg.System, cfg.Dt, cfg.Duration)))

	start := time.Now()
	results, err := experiment.New(cfg, nil).Compare(cmd.Context(), names)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "stepper\tsteps\tenergy_drift\tmax_stretch\tstability\tstatus\t")
	for _, r := range results {
		status := "ok"
		if len(r.Errors) > 0 {
			status = "diverged"
		}
		stretch := "-"
		if v, ok := r.Metrics["max_stretch"]; ok {
			stretch = fmt.Sprintf("%.4f", v)
		}
		fmt.Fprintf(w, "%s\t%d\t%.3e\t%s\t%.3f\t%s\t\n",
			r.Stepper, r.StepsTaken, r.EnergyDrift, stretch, r.Metrics["stability"], status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%d runs in %v", len(results), elapsed)))
	return nil
}

func convergeStudy(cmd *cobra.Command, args []string, opts *options) error {
	names := args
	if len(names) == 0 {
		names = config.Steppers
	}
	if opts.levels < 2 {
		return fmt.Errorf("need at least 2 levels, got %d", opts.levels)
	}

	ocfg := physics.DefaultOscillatorConfig()
	ocfg.Drag = opts.drag
	dts := analysis.Halving(opts.dt0, opts.levels)
	registry := experiment.NewRegistry()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("convergence on the oscillator (horizon=%gs, drag=%g)", opts.horizon, opts.drag)))

	curves := make([][]float64, 0, len(names))
	for _, name := range names {
		st, err := registry.GetStepper(name)
		if err != nil {
			return err
		}

		pts, err := analysis.Convergence(cmd.Context(), ocfg, st, opts.horizon, dts)
		if err != nil {
			return err
		}
		order, err := analysis.EstimateOrder(pts)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\n%s\n", name)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "dt\tsteps\terror\tratio\t")
		curve := make([]float64, len(pts))
		for i, p := range pts {
			ratio := "-"
			if i > 0 && p.Error > 0 {
				ratio = fmt.Sprintf("%.2f", pts[i-1].Error/p.Error)
			}
			fmt.Fprintf(w, "%.5f\t%d\t%.3e\t%s\t\n", p.Dt, p.Steps, p.Error, ratio)
			curve[i] = math.Log10(math.Max(p.Error, 1e-300))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "estimated order: %.2f\n", order)
		curves = append(curves, curve)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, asciigraph.PlotMany(curves,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("log10 error per halving of dt (%v)", names)),
	))
	return nil
}

func benchSystem(cmd *cobra.Command, args []string, opts *options) error {
	cfg, err := resolveConfig(cmd, systemArg(args), opts)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()

	durations := []float64{1.0, 5.0}
	dts := []float64{0.001, 0.01, 0.1}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("benchmarking %s with %s (workers=%d)", cfg.System, cfg.Stepper, cfg.Workers)))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, dt := range dts {
			sys, err := registry.GetSystem(cfg)
			if err != nil {
				return err
			}
			stepper, err := registry.GetStepper(cfg.Stepper)
			if err != nil {
				return err
			}

			s := sim.New(sys, stepper)
			simCfg := sim.Config{Dt: dt, Duration: dur, SampleEvery: int(math.Round(dur / dt))}

			start := time.Now()
			result, err := s.Run(cmd.Context(), simCfg)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			stepsPerSec := float64(result.StepsTaken) / elapsed.Seconds()
			fmt.Fprintf(w, "%.1fs\t%.4fs\t%d\t%v\t%.0f\n",
				dur, dt, result.StepsTaken, elapsed.Round(time.Microsecond), stepsPerSec)
		}
	}

	return w.Flush()
}
