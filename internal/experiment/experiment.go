package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/sim"
)

// Experiment is one configured run: a system, a stepper and its metrics.
type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	system    dynamo.ParticleSystem
	simulator *sim.Simulator
}

func New(cfg *config.Config, registry *Registry) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Experiment{cfg: cfg, registry: registry}
}

// Setup validates the config and builds the system, stepper and default metrics.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	sys, err := e.registry.GetSystem(e.cfg)
	if err != nil {
		return err
	}
	stepper, err := e.registry.GetStepper(e.cfg.Stepper)
	if err != nil {
		return err
	}

	e.system = sys
	e.simulator = sim.New(sys, stepper)
	for _, m := range e.registry.DefaultMetrics(sys) {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) simConfig() sim.Config {
	return sim.Config{
		Dt:            e.cfg.Dt,
		Duration:      e.cfg.Duration,
		SampleEvery:   e.cfg.SampleEvery,
		ValidateState: true,
	}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.simConfig())
}

// Compare runs the configured system once per named stepper, concurrently.
func (e *Experiment) Compare(ctx context.Context, stepperNames []string) ([]*sim.Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	steppers := make([]dynamo.Stepper, 0, len(stepperNames))
	for _, name := range stepperNames {
		st, err := e.registry.GetStepper(name)
		if err != nil {
			return nil, err
		}
		steppers = append(steppers, st)
	}

	return sim.Compare(ctx, e.registry.Factory(e.cfg), steppers, e.registry.DefaultMetrics, e.simConfig())
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// System returns the built system; nil before Setup.
func (e *Experiment) System() dynamo.ParticleSystem { return e.system }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
