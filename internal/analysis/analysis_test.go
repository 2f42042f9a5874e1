package analysis

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/integrators"
	"github.com/san-kum/particlesim/internal/physics"
	"github.com/san-kum/particlesim/internal/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceUndamped(t *testing.T) {
	ref, err := NewReference(physics.DefaultOscillatorConfig())
	require.NoError(t, err)
	assert.InDelta(t, 2.0, ref.AngularFrequency(), 1e-12)
	assert.Zero(t, ref.DampingRatio())

	pos, vel := ref.At(0)
	assert.Equal(t, 1.5, pos)
	assert.Equal(t, 0.0, vel)

	for _, tm := range []float64{0.1, 0.7, 1.3, 5} {
		pos, vel := ref.At(tm)
		assert.InDelta(t, 1+0.5*math.Cos(2*tm), pos, 1e-9, "t=%g", tm)
		assert.InDelta(t, -math.Sin(2*tm), vel, 1e-9, "t=%g", tm)
	}
}

func TestReferenceMatchesFineRK4WithDrag(t *testing.T) {
	cfg := physics.DefaultOscillatorConfig()
	cfg.Drag = 0.8

	ref, err := NewReference(cfg)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, ref.DampingRatio(), 1e-12)

	osc, err := physics.NewOscillator(cfg)
	require.NoError(t, err)

	const h = 0.001
	rk4 := integrators.NewRK4()
	for i := 1; i <= 3000; i++ {
		rk4.TakeStep(osc, h)
		if i%500 == 0 {
			assert.Less(t, ref.Error(osc, osc.State(), float64(i)*h), 1e-7, "step %d", i)
		}
	}
}

func TestReferenceRejects(t *testing.T) {
	tests := map[string]func(*physics.OscillatorConfig){
		"gravity":   func(c *physics.OscillatorConfig) { c.Gravity = 0.5 },
		"mass":      func(c *physics.OscillatorConfig) { c.Mass = 0 },
		"stiffness": func(c *physics.OscillatorConfig) { c.Stiffness = -1 },
		"drag":      func(c *physics.OscillatorConfig) { c.Drag = -0.1 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := physics.DefaultOscillatorConfig()
			mutate(&cfg)
			_, err := NewReference(cfg)
			assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
		})
	}
}

func TestReferenceSeries(t *testing.T) {
	cfg := physics.DefaultOscillatorConfig()
	cfg.Drag = 0.4
	ref, err := NewReference(cfg)
	require.NoError(t, err)

	series := ref.Series(0.05, 100)
	require.Len(t, series, 100)
	for i, got := range series {
		want, _ := ref.At(float64(i) * 0.05)
		assert.InDelta(t, want, got, 1e-9, "sample %d", i)
	}
}

func TestEstimateOrder(t *testing.T) {
	tests := []struct {
		stepper  dynamo.Stepper
		dts      []float64
		min, max float64
	}{
		{integrators.NewEuler(), Halving(0.01, 4), 0.9, 1.15},
		{integrators.NewTrapezoidal(), Halving(0.02, 4), 1.85, 2.15},
		{integrators.NewRK4(), Halving(0.1, 4), 3.8, 4.2},
	}

	for _, tt := range tests {
		t.Run(tt.stepper.Name(), func(t *testing.T) {
			pts, err := Convergence(context.Background(), physics.DefaultOscillatorConfig(), tt.stepper, 1.0, tt.dts)
			require.NoError(t, err)
			require.Len(t, pts, len(tt.dts))

			for i := 1; i < len(pts); i++ {
				assert.Less(t, pts[i].Error, pts[i-1].Error, "error should shrink with dt")
			}

			p, err := EstimateOrder(pts)
			require.NoError(t, err)
			t.Logf("%s: order %.3f", tt.stepper.Name(), p)
			assert.GreaterOrEqual(t, p, tt.min)
			assert.LessOrEqual(t, p, tt.max)
		})
	}
}

func TestEstimateOrderSynthetic(t *testing.T) {
	pts := make([]ConvergencePoint, 0, 5)
	for _, dt := range Halving(0.1, 5) {
		pts = append(pts, ConvergencePoint{Dt: dt, Error: 3 * dt * dt})
	}
	p, err := EstimateOrder(pts)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, p, 1e-9)

	_, err = EstimateOrder(pts[:1])
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)

	_, err = EstimateOrder([]ConvergencePoint{{Dt: 0.1}, {Dt: 0.05}})
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
}

func TestConvergenceRejectsLargeDt(t *testing.T) {
	_, err := Convergence(context.Background(), physics.DefaultOscillatorConfig(), integrators.NewRK4(), 0.1, []float64{1})
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
}

func TestDominantFrequencyPureTone(t *testing.T) {
	const dt = 0.05
	data := make([]float64, 400)
	for i := range data {
		data[i] = 3 + math.Cos(2*math.Pi*0.5*float64(i)*dt)
	}

	f, err := DominantFrequency(data, dt)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, f, 1e-9)

	_, err = DominantFrequency(data[:3], dt)
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
	_, err = DominantFrequency(data, 0)
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
}

func TestDominantFrequencyOfOscillatorRun(t *testing.T) {
	osc, err := physics.NewOscillator(physics.DefaultOscillatorConfig())
	require.NoError(t, err)

	res, err := sim.New(osc, integrators.NewRK4()).Run(context.Background(), sim.Config{Dt: 0.05, Duration: 50})
	require.NoError(t, err)

	xs, err := Component(res.Positions, 1, 0)
	require.NoError(t, err)

	f, err := DominantFrequency(xs, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, 1/math.Pi, f, 0.02)
}

func TestComponentBounds(t *testing.T) {
	positions := [][]mgl64.Vec3{{{1, 2, 3}}, {{4, 5, 6}}}

	ys, err := Component(positions, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, ys)

	_, err = Component(positions, 1, 0)
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
	_, err = Component(positions, 0, 3)
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
}

func TestSeparationRate(t *testing.T) {
	factory := func(drag float64) sim.SystemFactory {
		return func() (dynamo.ParticleSystem, error) {
			cfg := physics.DefaultOscillatorConfig()
			cfg.Drag = drag
			return physics.NewOscillator(cfg)
		}
	}

	undamped, err := SeparationRate(factory(0), integrators.NewRK4(), 1, 1e-6, 0.01, 20)
	require.NoError(t, err)
	assert.InDelta(t, 0, undamped, 0.1)

	// envelope decays as exp(-c/(2m) t)
	damped, err := SeparationRate(factory(1), integrators.NewRK4(), 1, 1e-6, 0.01, 20)
	require.NoError(t, err)
	assert.Less(t, damped, -0.3)

	_, err = SeparationRate(factory(0), integrators.NewRK4(), 5, 1e-6, 0.01, 1)
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
	_, err = SeparationRate(factory(0), integrators.NewRK4(), 1, 0, 0.01, 1)
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
	// duration rounds to zero steps
	_, err = SeparationRate(factory(0), integrators.NewRK4(), 1, 1e-6, 0.1, 0.01)
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
}

func TestPhasePortrait(t *testing.T) {
	res, err := sim.New(physics.NewRotationField(mgl64.Vec3{1, 0, 0}), integrators.NewRK4()).
		Run(context.Background(), sim.Config{Dt: 0.05, Duration: 2 * math.Pi})
	require.NoError(t, err)

	portrait, err := PhasePortrait(res.Positions, 0)
	require.NoError(t, err)
	require.Len(t, portrait.Points, len(res.Positions))
	for _, p := range portrait.Points {
		assert.InDelta(t, 1.0, math.Hypot(p.X, p.Y), 1e-3)
	}

	art := PhasePortraitToASCII(portrait, 40, 20)
	lines := strings.Split(strings.TrimSuffix(art, "\n"), "\n")
	assert.Len(t, lines, 20)
	assert.Contains(t, art, "•")
	assert.Contains(t, art, "│")
	assert.Contains(t, art, "─")

	assert.Empty(t, PhasePortraitToASCII(nil, 40, 20))

	_, err = PhasePortrait(nil, 0)
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
}
