package physics

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

const (
	DefaultGravity       = 0.5
	DefaultPendulumDrag  = 0.4
	DefaultChainRest     = 0.2
	DefaultChainStiff    = 1.0
	DefaultMinMass       = 0.5
	DefaultMaxMass       = 1.0
	DefaultChainInterior = 10
)

type PendulumConfig struct {
	Interior       int // free particles between the two pinned ends
	LeftAnchor     mgl64.Vec3
	RightAnchor    mgl64.Vec3
	RestLength     float64
	Stiffness      float64
	MinMass        float64
	MaxMass        float64
	VelocityJitter float64 // initial vertical velocity drawn from ±VelocityJitter
	Gravity        float64
	Drag           float64
	Workers        int
}

func DefaultPendulumConfig() PendulumConfig {
	return PendulumConfig{
		Interior:       DefaultChainInterior,
		LeftAnchor:     mgl64.Vec3{-3, 2, 0},
		RightAnchor:    mgl64.Vec3{3, 2, 0},
		RestLength:     DefaultChainRest,
		Stiffness:      DefaultChainStiff,
		MinMass:        DefaultMinMass,
		MaxMass:        DefaultMaxMass,
		VelocityJitter: 1.0,
		Gravity:        DefaultGravity,
		Drag:           DefaultPendulumDrag,
	}
}

// PendulumChain is a path of point masses joined by springs, with both ends pinned.
type PendulumChain struct {
	*SpringSystem
	cfg PendulumConfig
}

func NewPendulumChain(cfg PendulumConfig, rng *rand.Rand) (*PendulumChain, error) {
	if cfg.Interior < 1 {
		return nil, fmt.Errorf("%w: pendulum chain needs at least one free particle, got %d", dynamo.ErrParameterBounds, cfg.Interior)
	}
	if !(cfg.MinMass > 0) || cfg.MaxMass < cfg.MinMass {
		return nil, fmt.Errorf("%w: mass range [%g, %g]", dynamo.ErrParameterBounds, cfg.MinMass, cfg.MaxMass)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	n := cfg.Interior + 2
	particles := make([]Particle, n)
	particles[0] = Particle{Position: cfg.LeftAnchor}
	particles[n-1] = Particle{Position: cfg.RightAnchor}

	span := cfg.RightAnchor.Sub(cfg.LeftAnchor)
	for i := 1; i < n-1; i++ {
		t := float64(i) / float64(n-1)
		particles[i] = Particle{
			Position: cfg.LeftAnchor.Add(span.Mul(t)),
			Velocity: mgl64.Vec3{0, uniform(rng, -cfg.VelocityJitter, cfg.VelocityJitter), 0},
			Mass:     uniform(rng, cfg.MinMass, cfg.MaxMass),
		}
	}

	springs := make([]Spring, 0, n-1)
	for i := 0; i < n-1; i++ {
		springs = append(springs, Spring{
			A:          i,
			B:          i + 1,
			RestLength: cfg.RestLength,
			Stiffness:  cfg.Stiffness,
			Kind:       Chain,
		})
	}

	sys, err := NewSpringSystem(particles, springs, Params{
		Gravity: cfg.Gravity,
		Drag:    cfg.Drag,
		Workers: cfg.Workers,
	})
	if err != nil {
		return nil, err
	}
	return &PendulumChain{SpringSystem: sys, cfg: cfg}, nil
}

func (p *PendulumChain) Config() PendulumConfig { return p.cfg }

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}
