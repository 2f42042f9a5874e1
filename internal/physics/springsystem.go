package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

// Params holds the environment shared by every particle of a SpringSystem.
type Params struct {
	Gravity float64 // downward acceleration along -y
	Drag    float64 // linear drag coefficient
	Workers int     // spring accumulation workers; <= 1 means serial
}

// SpringSystem is a set of point masses under gravity, linear drag and Hookean
// springs. Its topology is fixed once constructed.
type SpringSystem struct {
	particles []Particle
	springs   []Spring
	params    Params
}

func NewSpringSystem(particles []Particle, springs []Spring, params Params) (*SpringSystem, error) {
	if len(particles) == 0 {
		return nil, fmt.Errorf("%w: system needs at least one particle", dynamo.ErrParameterBounds)
	}
	if params.Drag < 0 || math.IsNaN(params.Gravity) || math.IsNaN(params.Drag) {
		return nil, fmt.Errorf("%w: gravity %g, drag %g", dynamo.ErrParameterBounds, params.Gravity, params.Drag)
	}
	if err := ValidateTopology(particles, springs); err != nil {
		return nil, err
	}

	s := &SpringSystem{
		particles: make([]Particle, len(particles)),
		springs:   make([]Spring, len(springs)),
		params:    params,
	}
	copy(s.particles, particles)
	copy(s.springs, springs)
	return s, nil
}

func (s *SpringSystem) NumParticles() int { return len(s.particles) }

func (s *SpringSystem) Params() Params { return s.params }

// Particles returns a copy of the particles with their current position and velocity.
func (s *SpringSystem) Particles() []Particle {
	out := make([]Particle, len(s.particles))
	copy(out, s.particles)
	return out
}

// Springs returns a copy of the spring list.
func (s *SpringSystem) Springs() []Spring {
	out := make([]Spring, len(s.springs))
	copy(out, s.springs)
	return out
}

func (s *SpringSystem) State() dynamo.State {
	pos := make([]mgl64.Vec3, len(s.particles))
	vel := make([]mgl64.Vec3, len(s.particles))
	for i, p := range s.particles {
		pos[i], vel[i] = p.Position, p.Velocity
	}
	return dynamo.Interleave(pos, vel)
}

func (s *SpringSystem) SetState(x dynamo.State) {
	dynamo.MustMatch(x, 2*len(s.particles))
	for i := range s.particles {
		s.particles[i].Position = x.Position(i)
		s.particles[i].Velocity = x.Velocity(i)
	}
}

func (s *SpringSystem) Positions() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(s.particles))
	for i, p := range s.particles {
		out[i] = p.Position
	}
	return out
}

// EvalF returns [vel0, acc0, vel1, acc1, ...] for the given state. Only the
// fixed topology (masses, springs, params) is read from the receiver.
func (s *SpringSystem) EvalF(x dynamo.State) dynamo.State {
	n := len(s.particles)
	dynamo.MustMatch(x, 2*n)

	forces := make([]mgl64.Vec3, n)
	accumulateSprings(x, s.springs, forces, s.params.Workers)

	deriv := dynamo.NewState(n)
	for i, p := range s.particles {
		if p.Pinned() {
			continue
		}
		vel := x[2*i+dynamo.VelOffset]
		f := forces[i].
			Add(mgl64.Vec3{0, -p.Mass * s.params.Gravity, 0}).
			Sub(vel.Mul(s.params.Drag))

		deriv[2*i] = vel
		deriv[2*i+dynamo.VelOffset] = f.Mul(p.InvMass())
	}
	return deriv
}

// Energy is kinetic plus gravitational plus elastic energy of x.
func (s *SpringSystem) Energy(x dynamo.State) float64 {
	dynamo.MustMatch(x, 2*len(s.particles))

	energy := 0.0
	vel := x.Velocities()
	for i, p := range s.particles {
		if p.Pinned() {
			continue
		}
		energy += 0.5*p.Mass*vel[i].Dot(vel[i]) + p.Mass*s.params.Gravity*x.Position(i).Y()
	}
	for _, sp := range s.springs {
		stretch := x[2*sp.A].Sub(x[2*sp.B]).Len() - sp.RestLength
		energy += 0.5 * sp.Stiffness * stretch * stretch
	}
	return energy
}

// MaxStrain is the largest |strain| over all springs in x.
func (s *SpringSystem) MaxStrain(x dynamo.State) float64 {
	dynamo.MustMatch(x, 2*len(s.particles))

	worst := 0.0
	for _, sp := range s.springs {
		worst = math.Max(worst, math.Abs(Strain(x[2*sp.A], x[2*sp.B], sp.RestLength)))
	}
	return worst
}
