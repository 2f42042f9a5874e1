package dynamo

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// VelOffset is the distance between a particle's position slot and its velocity slot.
const VelOffset = 1

// State holds one position and one velocity per particle, interleaved.
type State []mgl64.Vec3

func NewState(numParticles int) State {
	return make(State, 2*numParticles)
}

// Interleave builds a State from matching position and velocity slices.
func Interleave(pos, vel []mgl64.Vec3) State {
	if len(pos) != len(vel) {
		panic(fmt.Errorf("%w: %d positions, %d velocities", ErrDimensionMismatch, len(pos), len(vel)))
	}
	s := make(State, 2*len(pos))
	for i := range pos {
		s[2*i] = pos[i]
		s[2*i+VelOffset] = vel[i]
	}
	return s
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) NumParticles() int { return len(s) / 2 }

func (s State) Position(k int) mgl64.Vec3 { return s[2*k] }

func (s State) Velocity(k int) mgl64.Vec3 { return s[2*k+VelOffset] }

func (s State) Positions() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(s)/2)
	for k := range out {
		out[k] = s[2*k]
	}
	return out
}

func (s State) Velocities() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(s)/2)
	for k := range out {
		out[k] = s[2*k+VelOffset]
	}
	return out
}

func (s State) IsValid() bool {
	for _, v := range s {
		for _, c := range v {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return false
			}
		}
	}
	return true
}

// Validate reports the first particle holding a NaN or Inf component.
func (s State) Validate() error {
	for i, v := range s {
		for _, c := range v {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return fmt.Errorf("%w: particle %d", ErrInvalidState, i/2)
			}
		}
	}
	return nil
}

// Norm is the Euclidean norm of the state viewed as one flat vector.
func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v.Dot(v)
	}
	return math.Sqrt(sum)
}

// AddScaled returns s + h*d. Both operands must have the same length.
func (s State) AddScaled(h float64, d State) State {
	MustMatch(d, len(s))
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i].Add(d[i].Mul(h))
	}
	return result
}

func (s State) Sub(other State) State {
	MustMatch(other, len(s))
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i].Sub(other[i])
	}
	return result
}

// MustMatch panics when s does not hold exactly n vectors.
func MustMatch(s State, n int) {
	if len(s) != n {
		panic(fmt.Errorf("%w: state has %d vectors, want %d", ErrDimensionMismatch, len(s), n))
	}
}

// ParticleSystem is a physical system with an interleaved position/velocity state.
//
// EvalF must not read or write the system's stored state: steppers call it with
// trial states built between evaluations.
type ParticleSystem interface {
	NumParticles() int
	State() State
	SetState(x State)
	EvalF(x State) State
}

// Stepper advances a ParticleSystem in place by one fixed step.
type Stepper interface {
	Name() string
	TakeStep(sys ParticleSystem, h float64)
}

// Positioned is implemented by systems that can report particle positions
// without building a full state copy.
type Positioned interface {
	Positions() []mgl64.Vec3
}

// Energetic is implemented by systems with a conserved or monitored energy.
type Energetic interface {
	Energy(x State) float64
}
