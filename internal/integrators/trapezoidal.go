package integrators

import "github.com/san-kum/particlesim/internal/dynamo"

// Trapezoidal is the explicit trapezoidal rule (Heun's method): an Euler
// predictor followed by a corrector averaging the slopes at both ends.
type Trapezoidal struct{}

func NewTrapezoidal() *Trapezoidal {
	return &Trapezoidal{}
}

func (tr *Trapezoidal) Name() string { return "trapezoidal" }

func (tr *Trapezoidal) TakeStep(sys dynamo.ParticleSystem, h float64) {
	x := sys.State()
	n := len(x)

	f0 := sys.EvalF(x)
	dynamo.MustMatch(f0, n)

	predicted := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		predicted[i] = x[i].Add(f0[i].Mul(h))
	}
	f1 := sys.EvalF(predicted)
	dynamo.MustMatch(f1, n)

	result := make(dynamo.State, n)
	half := h * 0.5
	for i := 0; i < n; i++ {
		result[i] = x[i].Add(f0[i].Add(f1[i]).Mul(half))
	}
	sys.SetState(result)
}
