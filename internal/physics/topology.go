package physics

import (
	"fmt"
	"math"

	"github.com/kamstrup/intmap"
	"github.com/san-kum/particlesim/internal/dynamo"
)

// ValidateTopology checks particle masses and spring endpoints. It rejects
// out-of-range indices, self-loops, duplicate springs and non-positive spring
// parameters.
func ValidateTopology(particles []Particle, springs []Spring) error {
	n := len(particles)
	for i, p := range particles {
		if p.Mass < 0 || math.IsNaN(p.Mass) || math.IsInf(p.Mass, 0) {
			return fmt.Errorf("%w: particle %d has mass %g", dynamo.ErrParameterBounds, i, p.Mass)
		}
	}

	seen := intmap.New[uint64, int](len(springs))
	for i, sp := range springs {
		if sp.A < 0 || sp.A >= n || sp.B < 0 || sp.B >= n {
			return fmt.Errorf("%w: spring %d endpoints (%d, %d) outside [0, %d)", dynamo.ErrInvalidTopology, i, sp.A, sp.B, n)
		}
		if sp.A == sp.B {
			return fmt.Errorf("%w: spring %d connects particle %d to itself", dynamo.ErrInvalidTopology, i, sp.A)
		}
		if !(sp.RestLength > 0) || !(sp.Stiffness > 0) {
			return fmt.Errorf("%w: spring %d has rest length %g, stiffness %g", dynamo.ErrParameterBounds, i, sp.RestLength, sp.Stiffness)
		}

		key := pairKey(sp.A, sp.B, n)
		if prev, ok := seen.Get(key); ok {
			return fmt.Errorf("%w: spring %d duplicates spring %d (%d-%d)", dynamo.ErrInvalidTopology, i, prev, sp.A, sp.B)
		}
		seen.Put(key, i)
	}
	return nil
}

// pairKey is order independent since springs are undirected.
func pairKey(a, b, n int) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(a)*uint64(n) + uint64(b)
}
