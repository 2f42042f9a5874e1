package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

type OscillatorConfig struct {
	Mass       float64
	Stiffness  float64
	RestLength float64
	Stretch    float64 // initial elongation beyond RestLength along +x
	Gravity    float64
	Drag       float64
}

func DefaultOscillatorConfig() OscillatorConfig {
	return OscillatorConfig{
		Mass:       1.0,
		Stiffness:  4.0,
		RestLength: 1.0,
		Stretch:    0.5,
	}
}

// Oscillator is a free particle (index 1) tied by one spring to a pinned
// anchor (index 0) at the origin. With zero gravity it is a 1D damped harmonic
// oscillator along x with a closed-form solution.
type Oscillator struct {
	*SpringSystem
	cfg OscillatorConfig
}

func NewOscillator(cfg OscillatorConfig) (*Oscillator, error) {
	if !(cfg.Mass > 0) {
		return nil, fmt.Errorf("%w: oscillator mass %g", dynamo.ErrParameterBounds, cfg.Mass)
	}

	particles := []Particle{
		{},
		{Position: mgl64.Vec3{cfg.RestLength + cfg.Stretch, 0, 0}, Mass: cfg.Mass},
	}
	springs := []Spring{{A: 1, B: 0, RestLength: cfg.RestLength, Stiffness: cfg.Stiffness, Kind: Chain}}

	sys, err := NewSpringSystem(particles, springs, Params{Gravity: cfg.Gravity, Drag: cfg.Drag})
	if err != nil {
		return nil, err
	}
	return &Oscillator{SpringSystem: sys, cfg: cfg}, nil
}

func (o *Oscillator) Config() OscillatorConfig { return o.cfg }

// AngularFrequency is the undamped natural frequency sqrt(k/m).
func (o *Oscillator) AngularFrequency() float64 {
	return math.Sqrt(o.cfg.Stiffness / o.cfg.Mass)
}

// DampingRatio is c / (2 sqrt(k m)).
func (o *Oscillator) DampingRatio() float64 {
	return o.cfg.Drag / (2 * math.Sqrt(o.cfg.Stiffness*o.cfg.Mass))
}

// Displacement returns the free particle's x position and x velocity in x.
func (o *Oscillator) Displacement(x dynamo.State) (pos, vel float64) {
	dynamo.MustMatch(x, 4)
	return x[2].X(), x[3].X()
}
