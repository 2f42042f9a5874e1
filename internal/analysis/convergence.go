package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/physics"
	"github.com/san-kum/particlesim/internal/sim"
	"gonum.org/v1/gonum/stat"
)

type ConvergencePoint struct {
	Dt    float64
	Steps int
	Error float64
}

// Convergence runs a fresh oscillator to horizon once per dt and measures the
// final error against the exact solution.
func Convergence(ctx context.Context, cfg physics.OscillatorConfig, st dynamo.Stepper, horizon float64, dts []float64) ([]ConvergencePoint, error) {
	ref, err := NewReference(cfg)
	if err != nil {
		return nil, err
	}

	points := make([]ConvergencePoint, 0, len(dts))
	for _, dt := range dts {
		osc, err := physics.NewOscillator(cfg)
		if err != nil {
			return nil, err
		}

		steps := int(math.Round(horizon / dt))
		if steps < 1 {
			return nil, fmt.Errorf("%w: dt %g exceeds horizon %g", dynamo.ErrParameterBounds, dt, horizon)
		}

		s := sim.New(osc, st)
		run := sim.Config{Dt: dt, Duration: float64(steps) * dt, ValidateState: true}
		if err := s.RunWithCallback(ctx, run, func(dynamo.State, float64) bool { return true }); err != nil {
			return nil, err
		}

		points = append(points, ConvergencePoint{
			Dt:    dt,
			Steps: steps,
			Error: ref.Error(osc, osc.State(), float64(steps)*dt),
		})
	}
	return points, nil
}

// EstimateOrder fits log(error) = a + p*log(dt) and returns p.
func EstimateOrder(points []ConvergencePoint) (float64, error) {
	xs := make([]float64, 0, len(points))
	ys := make([]float64, 0, len(points))
	for _, p := range points {
		if !(p.Error > 0) || !(p.Dt > 0) {
			continue
		}
		xs = append(xs, math.Log(p.Dt))
		ys = append(ys, math.Log(p.Error))
	}
	if len(xs) < 2 {
		return 0, fmt.Errorf("%w: need two points with positive error, got %d", dynamo.ErrParameterBounds, len(xs))
	}

	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta, nil
}

// Halving returns n step sizes starting at dt0, each half the previous.
func Halving(dt0 float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = dt0 / math.Pow(2, float64(i))
	}
	return out
}
