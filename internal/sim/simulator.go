package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

// Simulator is the driver loop: it ticks a stepper against a system.
type Simulator struct {
	sys       dynamo.ParticleSystem
	stepper   dynamo.Stepper
	metrics   []Metric
	observers []Observer
}

func New(sys dynamo.ParticleSystem, stepper dynamo.Stepper) *Simulator {
	return &Simulator{
		sys:       sys,
		stepper:   stepper,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) System() dynamo.ParticleSystem { return s.sys }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	every := cfg.SampleEvery
	if every < 1 {
		every = 1
	}

	result := &Result{
		Stepper:   s.stepper.Name(),
		Times:     make([]float64, 0, steps/every+1),
		Positions: make([][]mgl64.Vec3, 0, steps/every+1),
		Metrics:   make(map[string]float64),
		Errors:    make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	energetic, hasEnergy := s.sys.(dynamo.Energetic)
	x := s.sys.State()
	t := 0.0

	s.record(result, x, t, energetic, hasEnergy)
	initialEnergy := 0.0
	if hasEnergy {
		initialEnergy = energetic.Energy(x)
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		for _, m := range s.metrics {
			m.Observe(x, t)
		}

		s.stepper.TakeStep(s.sys, cfg.Dt)
		x = s.sys.State()
		t = float64(i+1) * cfg.Dt

		if cfg.ValidateState {
			if err := x.Validate(); err != nil {
				result.Errors = append(result.Errors, &dynamo.SimulationError{
					Step:    i,
					Time:    t,
					State:   x,
					Wrapped: fmt.Errorf("%w: %w", dynamo.ErrUnstable, err),
				})
				break
			}
		}

		result.StepsTaken++
		for _, obs := range s.observers {
			obs.OnStep(x, t)
		}
		if (i+1)%every == 0 || i == steps-1 {
			s.record(result, x, t, energetic, hasEnergy)
		}
	}

	if hasEnergy && initialEnergy != 0 && x.IsValid() {
		result.EnergyDrift = math.Abs(energetic.Energy(x)-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) record(r *Result, x dynamo.State, t float64, e dynamo.Energetic, hasEnergy bool) {
	r.Times = append(r.Times, t)
	r.Positions = append(r.Positions, x.Positions())
	if hasEnergy {
		r.Energies = append(r.Energies, e.Energy(x))
	}
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrParameterBounds, cfg.Dt)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrParameterBounds, cfg.Duration)
	}
	return nil
}

// RunWithCallback ticks until the duration elapses or callback returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(x dynamo.State, t float64) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	x := s.sys.State()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(x, float64(i)*cfg.Dt) {
			return nil
		}

		s.stepper.TakeStep(s.sys, cfg.Dt)
		x = s.sys.State()

		if cfg.ValidateState {
			if err := x.Validate(); err != nil {
				return &dynamo.SimulationError{Step: i, Time: float64(i+1) * cfg.Dt, State: x, Wrapped: fmt.Errorf("%w: %w", dynamo.ErrUnstable, err)}
			}
		}
	}

	return nil
}
