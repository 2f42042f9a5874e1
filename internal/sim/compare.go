package sim

import (
	"context"

	"github.com/san-kum/particlesim/internal/dynamo"
	"golang.org/x/sync/errgroup"
)

// SystemFactory builds a fresh, identically seeded system for each run.
type SystemFactory func() (dynamo.ParticleSystem, error)

// MetricFactory builds the metrics for one run; metrics are not shared across runs.
type MetricFactory func(sys dynamo.ParticleSystem) []Metric

// Compare runs the same system under several steppers concurrently, each on
// its own instance. Results are returned in stepper order.
func Compare(ctx context.Context, newSystem SystemFactory, steppers []dynamo.Stepper, newMetrics MetricFactory, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(steppers))

	g, ctx := errgroup.WithContext(ctx)
	for i, st := range steppers {
		g.Go(func() error {
			sys, err := newSystem()
			if err != nil {
				return err
			}

			s := New(sys, st)
			if newMetrics != nil {
				for _, m := range newMetrics(sys) {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(ctx, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
