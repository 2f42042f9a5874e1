package metrics

import (
	"math"

	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/sim"
)

// NormDrift records the largest relative change of particle 0's distance from
// the origin. On the rotation field this is the integrator's radial error.
type NormDrift struct {
	name     string
	radius   float64
	maxDrift float64
	samples  int
}

func NewNormDrift() *NormDrift {
	return &NormDrift{name: "norm_drift"}
}

func (n *NormDrift) Name() string { return n.name }

func (n *NormDrift) Observe(x dynamo.State, t float64) {
	r := x.Position(0).Len()
	if n.samples == 0 {
		n.radius = r
	}
	n.samples++
	if n.radius > 0 {
		n.maxDrift = math.Max(n.maxDrift, math.Abs(r-n.radius)/n.radius)
	}
}

func (n *NormDrift) Value() float64 { return n.maxDrift }

func (n *NormDrift) Reset() {
	n.radius = 0
	n.maxDrift = 0
	n.samples = 0
}

// Strained is implemented by systems that can report spring strain.
type Strained interface {
	MaxStrain(x dynamo.State) float64
}

// MaxStretch is the peak |len-rest|/rest over all springs and observed states.
type MaxStretch struct {
	name string
	sys  Strained
	max  float64
}

func NewMaxStretch(sys Strained) *MaxStretch {
	return &MaxStretch{name: "max_stretch", sys: sys}
}

func (m *MaxStretch) Name() string { return m.name }

func (m *MaxStretch) Observe(x dynamo.State, t float64) {
	m.max = math.Max(m.max, m.sys.MaxStrain(x))
}

func (m *MaxStretch) Value() float64 { return m.max }

func (m *MaxStretch) Reset() { m.max = 0 }

// ForSystem returns the default metric set a system supports.
func ForSystem(sys dynamo.ParticleSystem) []sim.Metric {
	ms := []sim.Metric{NewStability(1e3)}
	if e, ok := sys.(dynamo.Energetic); ok {
		ms = append(ms, NewEnergy(e), NewEnergyDrift(sys))
	}
	if s, ok := sys.(Strained); ok {
		ms = append(ms, NewMaxStretch(s))
	}
	if sys.NumParticles() == 1 {
		ms = append(ms, NewNormDrift())
	}
	return ms
}
