package analysis

import (
	"fmt"
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/physics"
)

// Reference is the exact motion of an Oscillator's free particle along x.
type Reference struct {
	cfg   physics.OscillatorConfig
	omega float64
	zeta  float64
}

// NewReference requires zero gravity; otherwise the motion leaves the x axis
// and no closed form applies.
func NewReference(cfg physics.OscillatorConfig) (*Reference, error) {
	if !(cfg.Mass > 0) || !(cfg.Stiffness > 0) {
		return nil, fmt.Errorf("%w: reference needs positive mass and stiffness", dynamo.ErrParameterBounds)
	}
	if cfg.Gravity != 0 {
		return nil, fmt.Errorf("%w: reference needs zero gravity, got %g", dynamo.ErrParameterBounds, cfg.Gravity)
	}
	if cfg.Drag < 0 {
		return nil, fmt.Errorf("%w: negative drag %g", dynamo.ErrParameterBounds, cfg.Drag)
	}
	return &Reference{
		cfg:   cfg,
		omega: math.Sqrt(cfg.Stiffness / cfg.Mass),
		zeta:  cfg.Drag / (2 * math.Sqrt(cfg.Stiffness*cfg.Mass)),
	}, nil
}

func (r *Reference) AngularFrequency() float64 { return r.omega }
func (r *Reference) DampingRatio() float64 { return r.zeta }

// At returns the x position and x velocity at time t.
func (r *Reference) At(t float64) (pos, vel float64) {
	start := r.cfg.RestLength + r.cfg.Stretch
	if t == 0 {
		return start, 0
	}
	s := harmonica.NewSpring(t, r.omega, r.zeta)
	return s.Update(start, 0, r.cfg.RestLength)
}

// Error is the phase-space distance between x and the exact state at t, with
// the velocity term scaled by 1/omega so both axes share units.
func (r *Reference) Error(osc *physics.Oscillator, x dynamo.State, t float64) float64 {
	pos, vel := osc.Displacement(x)
	wantPos, wantVel := r.At(t)
	return math.Hypot(pos-wantPos, (vel-wantVel)/r.omega)
}

// Series samples the exact position every dt for n samples, starting at t=0.
func (r *Reference) Series(dt float64, n int) []float64 {
	out := make([]float64, n)
	s := harmonica.NewSpring(dt, r.omega, r.zeta)
	pos, vel := r.cfg.RestLength+r.cfg.Stretch, 0.0
	for i := range out {
		out[i] = pos
		pos, vel = s.Update(pos, vel, r.cfg.RestLength)
	}
	return out
}
