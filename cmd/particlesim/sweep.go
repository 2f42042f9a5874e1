package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/optim"
	"github.com/spf13/cobra"
)

// parseParam splits "name=v1,v2,..." into a name and its values.
func parseParam(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("bad --param %q, want name=v1,v2", s)
	}
	var values []float64
	for _, field := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad value in --param %q: %w", s, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

func sweepParams(cmd *cobra.Command, args []string, opts *options) error {
	if len(opts.params) == 0 {
		return fmt.Errorf("sweep needs at least one --param (tunable: %s)", strings.Join(config.Tunables(), ", "))
	}
	system := ""
	if len(args) > 0 {
		system = args[0]
	}
	base, err := resolveConfig(cmd, system, opts)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(opts.params))
	ranges := make([][]float64, 0, len(opts.params))
	for _, p := range opts.params {
		name, values, err := parseParam(p)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	search, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	search.SetWorkers(opts.sweepWorkers)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("sweeping %s on %s, minimizing %s", strings.Join(names, ", "), base.System, opts.metric)))

	best, points, err := search.Search(cmd.Context(), base, opts.metric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%s\t%s\t\n", strings.Join(names, "\t"), opts.metric)
	for _, p := range points {
		for _, name := range names {
			fmt.Fprintf(w, "%g\t", p.Params[name])
		}
		if p.Diverged || math.IsInf(p.Value, 1) {
			fmt.Fprintln(w, "diverged\t")
			continue
		}
		fmt.Fprintf(w, "%.4e\t\n", p.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	parts := make([]string, 0, len(best.Params))
	for _, name := range optim.ParamNames(best) {
		parts = append(parts, fmt.Sprintf("%s=%g", name, best.Params[name]))
	}
	fmt.Fprintf(out, "best: %s (%s=%.4e)\n", strings.Join(parts, " "), opts.metric, best.Value)
	return nil
}
