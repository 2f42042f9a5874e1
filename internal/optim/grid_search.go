package optim

import (
	"context"
	"fmt"
	"maps"
	"math"
	"sort"

	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/experiment"
	"golang.org/x/sync/errgroup"
)

// Point is one evaluated grid cell.
type Point struct {
	Params   map[string]float64
	Value    float64
	Diverged bool
}

// GridSearch evaluates every combination of parameter values on a base config
// and picks the one minimizing a metric. Diverged runs never win.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("grid search: %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("grid search: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges, workers: 1}, nil
}

// SetWorkers bounds how many runs execute at once.
func (g *GridSearch) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	g.workers = n
}

// Combinations returns the cartesian product of the ranges, first parameter
// varying slowest.
func (g *GridSearch) Combinations() []map[string]float64 {
	combos := []map[string]float64{{}}
	for depth, name := range g.paramNames {
		next := make([]map[string]float64, 0, len(combos)*len(g.ranges[depth]))
		for _, c := range combos {
			for _, v := range g.ranges[depth] {
				m := maps.Clone(c)
				m[name] = v
				next = append(next, m)
			}
		}
		combos = next
	}
	return combos
}

// Search runs base with every combination applied and returns the best point
// together with all points in combination order.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (Point, []Point, error) {
	combos := g.Combinations()
	points := make([]Point, len(combos))
	registry := experiment.NewRegistry()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, params := range combos {
		eg.Go(func() error {
			cfg := base.Clone()
			for name, v := range params {
				if err := cfg.Set(name, v); err != nil {
					return err
				}
			}

			exp := experiment.New(cfg, registry)
			if err := exp.Setup(); err != nil {
				return fmt.Errorf("%v: %w", params, err)
			}
			result, err := exp.Run(ctx)
			if err != nil {
				return err
			}

			p := Point{Params: params, Value: math.Inf(1), Diverged: len(result.Errors) > 0}
			if !p.Diverged {
				val, ok := result.Metrics[metricName]
				if !ok {
					return fmt.Errorf("grid search: run produced no metric %q", metricName)
				}
				p.Value = val
			}
			points[i] = p
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Point{}, nil, err
	}

	best := Point{Value: math.Inf(1)}
	for _, p := range points {
		if !p.Diverged && p.Value < best.Value {
			best = p
		}
	}
	if best.Params == nil {
		return best, points, fmt.Errorf("grid search: every run diverged")
	}
	return best, points, nil
}

// ParamNames returns the swept names in sorted order, for display.
func ParamNames(p Point) []string {
	names := make([]string, 0, len(p.Params))
	for name := range p.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
