package integrators

import "github.com/san-kum/particlesim/internal/dynamo"

// Euler is the explicit forward Euler method: x' = x + h f(x).
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) TakeStep(sys dynamo.ParticleSystem, h float64) {
	x := sys.State()
	dx := sys.EvalF(x)
	dynamo.MustMatch(dx, len(x))

	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i].Add(dx[i].Mul(h))
	}
	sys.SetState(result)
}
