package experiment

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/integrators"
	"github.com/san-kum/particlesim/internal/metrics"
	"github.com/san-kum/particlesim/internal/physics"
	"github.com/san-kum/particlesim/internal/sim"
)

// SystemBuilder builds a system from a run config. rng drives any random
// masses or initial velocities.
type SystemBuilder func(cfg *config.Config, rng *rand.Rand) (dynamo.ParticleSystem, error)

type Registry struct {
	systems  map[string]SystemBuilder
	steppers map[string]func() dynamo.Stepper
}

func NewRegistry() *Registry {
	r := &Registry{
		systems:  make(map[string]SystemBuilder),
		steppers: make(map[string]func() dynamo.Stepper),
	}

	r.systems["pendulum"] = func(cfg *config.Config, rng *rand.Rand) (dynamo.ParticleSystem, error) {
		return physics.NewPendulumChain(cfg.PendulumConfig(), rng)
	}
	r.systems["cloth"] = func(cfg *config.Config, rng *rand.Rand) (dynamo.ParticleSystem, error) {
		return physics.NewClothGrid(cfg.ClothConfig(), rng)
	}
	r.systems["oscillator"] = func(cfg *config.Config, rng *rand.Rand) (dynamo.ParticleSystem, error) {
		return physics.NewOscillator(cfg.OscillatorConfig())
	}
	r.systems["rotation"] = func(cfg *config.Config, rng *rand.Rand) (dynamo.ParticleSystem, error) {
		return physics.NewRotationField(cfg.RotationStart()), nil
	}

	r.steppers["euler"] = func() dynamo.Stepper { return integrators.NewEuler() }
	r.steppers["trapezoidal"] = func() dynamo.Stepper { return integrators.NewTrapezoidal() }
	r.steppers["rk4"] = func() dynamo.Stepper { return integrators.NewRK4() }

	return r
}

// GetSystem builds the configured system with a generator seeded from cfg.Seed,
// so equal configs give equal systems.
func (r *Registry) GetSystem(cfg *config.Config) (dynamo.ParticleSystem, error) {
	fn, ok := r.systems[cfg.System]
	if !ok {
		return nil, fmt.Errorf("unknown system: %s", cfg.System)
	}
	return fn(cfg, rand.New(rand.NewSource(cfg.Seed)))
}

// Factory returns a builder of identical fresh instances of cfg's system.
func (r *Registry) Factory(cfg *config.Config) sim.SystemFactory {
	return func() (dynamo.ParticleSystem, error) { return r.GetSystem(cfg) }
}

func (r *Registry) GetStepper(name string) (dynamo.Stepper, error) {
	fn, ok := r.steppers[name]
	if !ok {
		return nil, fmt.Errorf("unknown stepper: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListSystems() []string {
	return sortedKeys(r.systems)
}

func (r *Registry) ListSteppers() []string {
	return sortedKeys(r.steppers)
}

func (r *Registry) DefaultMetrics(sys dynamo.ParticleSystem) []sim.Metric {
	return metrics.ForSystem(sys)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
