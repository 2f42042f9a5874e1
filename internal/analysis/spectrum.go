package analysis

import (
	"fmt"
	"math/cmplx"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/particlesim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns |X_k| for k = 0..n/2 of the mean-removed series.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	centered := make([]float64, len(data))
	copy(centered, data)
	floats.AddConst(-stat.Mean(data, nil), centered)

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, len(data)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantFrequency returns the strongest non-DC frequency, in cycles per
// unit time, of a series sampled every dt.
func DominantFrequency(data []float64, dt float64) (float64, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("%w: need at least 4 samples, got %d", dynamo.ErrParameterBounds, len(data))
	}
	if !(dt > 0) {
		return 0, fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrParameterBounds, dt)
	}

	ps := PowerSpectrum(data)
	k := 1 + floats.MaxIdx(ps[1:])
	return float64(k) / (float64(len(data)) * dt), nil
}

// Component extracts one coordinate (0=x, 1=y, 2=z) of one particle from a
// run's position snapshots.
func Component(positions [][]mgl64.Vec3, particle, axis int) ([]float64, error) {
	if axis < 0 || axis > 2 {
		return nil, fmt.Errorf("%w: axis %d", dynamo.ErrParameterBounds, axis)
	}
	out := make([]float64, len(positions))
	for i, snap := range positions {
		if particle < 0 || particle >= len(snap) {
			return nil, fmt.Errorf("%w: particle %d of %d", dynamo.ErrParameterBounds, particle, len(snap))
		}
		out[i] = snap[particle][axis]
	}
	return out, nil
}
