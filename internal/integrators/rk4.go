package integrators

import "github.com/san-kum/particlesim/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta method.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) TakeStep(sys dynamo.ParticleSystem, h float64) {
	x := sys.State()
	n := len(x)
	scratch := make(dynamo.State, n)

	k1 := sys.EvalF(x)
	dynamo.MustMatch(k1, n)

	for i := 0; i < n; i++ {
		scratch[i] = x[i].Add(k1[i].Mul(h * 0.5))
	}
	k2 := sys.EvalF(scratch)
	dynamo.MustMatch(k2, n)

	// fresh buffer per stage: a system may hold on to the trial state it was given
	scratch = make(dynamo.State, n)
	for i := 0; i < n; i++ {
		scratch[i] = x[i].Add(k2[i].Mul(h * 0.5))
	}
	k3 := sys.EvalF(scratch)
	dynamo.MustMatch(k3, n)

	scratch = make(dynamo.State, n)
	for i := 0; i < n; i++ {
		scratch[i] = x[i].Add(k3[i].Mul(h))
	}
	k4 := sys.EvalF(scratch)
	dynamo.MustMatch(k4, n)

	result := make(dynamo.State, n)
	h6 := h / 6.0
	for i := 0; i < n; i++ {
		sum := k1[i].Add(k2[i].Mul(2)).Add(k3[i].Mul(2)).Add(k4[i])
		result[i] = x[i].Add(sum.Mul(h6))
	}
	sys.SetState(result)
}
