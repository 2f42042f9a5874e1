package sim

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

// Metric accumulates a scalar over the states of a run.
type Metric interface {
	Name() string
	Observe(x dynamo.State, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every tick.
type Observer interface {
	OnStep(x dynamo.State, t float64)
}

type Config struct {
	Dt            float64
	Duration      float64
	SampleEvery   int  // record positions every N ticks; <= 1 records all
	ValidateState bool // stop with ErrUnstable when a state turns NaN/Inf
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      10.0,
		SampleEvery:   1,
		ValidateState: true,
	}
}

type Result struct {
	Stepper     string
	Times       []float64
	Positions   [][]mgl64.Vec3
	Energies    []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}

// Final returns the last recorded positions, or nil for an empty result.
func (r *Result) Final() []mgl64.Vec3 {
	if len(r.Positions) == 0 {
		return nil
	}
	return r.Positions[len(r.Positions)-1]
}
