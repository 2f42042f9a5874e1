package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Particle is a point mass. A zero mass pins the particle in place.
type Particle struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Mass     float64
}

func (p Particle) Pinned() bool { return p.Mass == 0 }

// InvMass returns 1/Mass, or 0 for pinned particles.
func (p Particle) InvMass() float64 {
	if p.Pinned() {
		return 0
	}
	return 1 / p.Mass
}

type SpringKind int

const (
	Chain SpringKind = iota
	Structural
	Shear
	Flexion
)

func (k SpringKind) String() string {
	switch k {
	case Chain:
		return "chain"
	case Structural:
		return "structural"
	case Shear:
		return "shear"
	case Flexion:
		return "flexion"
	default:
		return "unknown"
	}
}

// Spring connects particles A and B by index. Kind is descriptive only.
type Spring struct {
	A, B       int
	RestLength float64
	Stiffness  float64
	Kind       SpringKind
}

// HookeForce returns the force a spring applies to the endpoint at posA; the
// endpoint at posB receives the negation. Coincident endpoints yield zero.
func HookeForce(posA, posB mgl64.Vec3, restLength, stiffness float64) mgl64.Vec3 {
	d := posA.Sub(posB)
	length := d.Len()
	if length == 0 || math.IsNaN(length) {
		return mgl64.Vec3{}
	}
	return d.Mul(-stiffness * (length - restLength) / length)
}

// Strain is the relative elongation (|D| - L) / L of a spring.
func Strain(posA, posB mgl64.Vec3, restLength float64) float64 {
	return (posA.Sub(posB).Len() - restLength) / restLength
}
