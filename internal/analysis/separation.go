package analysis

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/sim"
)

// SeparationRate estimates the growth rate of a small perturbation by the
// trajectory separation method. Two instances are built; the second has
// particle's position nudged by perturbation along x. After every step the
// separation is measured and the perturbed run is pulled back to distance d0.
//
//	λ ≈ (1/T) * Σ ln(|δx_i| / d0)
//
// A positive value means nearby trajectories diverge.
func SeparationRate(
	newSystem sim.SystemFactory,
	st dynamo.Stepper,
	particle int,
	perturbation float64,
	dt, duration float64,
) (float64, error) {
	if !(perturbation > 0) || !(dt > 0) || !(duration > 0) {
		return 0, fmt.Errorf("%w: perturbation, dt and duration must be positive", dynamo.ErrParameterBounds)
	}

	sys, err := newSystem()
	if err != nil {
		return 0, err
	}
	sysp, err := newSystem()
	if err != nil {
		return 0, err
	}
	if particle < 0 || particle >= sys.NumParticles() {
		return 0, fmt.Errorf("%w: particle %d of %d", dynamo.ErrParameterBounds, particle, sys.NumParticles())
	}

	xp := sysp.State()
	xp[2*particle] = xp[2*particle].Add(mgl64.Vec3{perturbation, 0, 0})
	sysp.SetState(xp)

	d0 := perturbation
	steps := int(math.Round(duration / dt))
	if steps < 1 {
		return 0, fmt.Errorf("%w: duration %g shorter than dt %g", dynamo.ErrParameterBounds, duration, dt)
	}
	sumLog := 0.0

	for i := 0; i < steps; i++ {
		st.TakeStep(sys, dt)
		st.TakeStep(sysp, dt)

		x, xp := sys.State(), sysp.State()
		if !x.IsValid() || !xp.IsValid() {
			return 0, &dynamo.SimulationError{Step: i, Time: float64(i+1) * dt, State: x, Wrapped: dynamo.ErrUnstable}
		}

		diff := xp.Sub(x)
		sep := diff.Norm()
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / d0)

		// renormalize
		sysp.SetState(x.AddScaled(d0/sep, diff))
	}

	return sumLog / (float64(steps) * dt), nil
}
