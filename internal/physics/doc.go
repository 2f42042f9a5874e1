// Package physics provides the particle systems driven by the integrators.
//
// Every system implements [dynamo.ParticleSystem] over an interleaved
// position/velocity state:
//
//   - [RotationField]: one particle under the field f(p) = (p.y, -p.x, 0)
//   - [PendulumChain]: a path of springs between two pinned particles
//   - [ClothGrid]: a lattice with structural, shear and flexion springs
//   - [Oscillator]: one spring-mass pair with a closed-form solution
//
// The spring systems share [SpringSystem]: gravity along -y, linear drag and
// Hookean springs. A particle with zero mass is pinned and never moves.
//
// # Degenerate Springs
//
// A spring whose endpoints coincide has no direction; it contributes no force
// for that evaluation instead of producing NaN:
//
//	f := physics.HookeForce(p, p, 1, 10) // zero vector
package physics
