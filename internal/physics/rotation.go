package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

// RotationField is a single particle driven only by the vector field
// f(p) = (p.y, -p.x, 0). Exact trajectories are circles about the z axis, so
// any change of |p| is integration error.
//
// Both state slots evolve under the field: the velocity slot starts at f(p0)
// and, the field being linear, stays equal to f(p).
type RotationField struct {
	pos mgl64.Vec3
	vel mgl64.Vec3
}

func NewRotationField(p0 mgl64.Vec3) *RotationField {
	return &RotationField{pos: p0, vel: rotate(p0)}
}

func rotate(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{p.Y(), -p.X(), 0}
}

func (r *RotationField) NumParticles() int { return 1 }

func (r *RotationField) State() dynamo.State {
	return dynamo.State{r.pos, r.vel}
}

func (r *RotationField) SetState(x dynamo.State) {
	dynamo.MustMatch(x, 2)
	r.pos, r.vel = x[0], x[1]
}

func (r *RotationField) EvalF(x dynamo.State) dynamo.State {
	dynamo.MustMatch(x, 2)
	return dynamo.State{rotate(x[0]), rotate(x[1])}
}

func (r *RotationField) Positions() []mgl64.Vec3 {
	return []mgl64.Vec3{r.pos}
}

// Energy is ½|p|², the quantity the exact flow conserves.
func (r *RotationField) Energy(x dynamo.State) float64 {
	dynamo.MustMatch(x, 2)
	return 0.5 * x[0].Dot(x[0])
}
