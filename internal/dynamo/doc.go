// Package dynamo provides the core contracts for particle-dynamics simulation.
//
// The package defines the state representation and the two abstractions every
// other package is built around:
//
//   - [State]: interleaved position/velocity vectors, [pos0, vel0, pos1, vel1, ...]
//   - [ParticleSystem]: a physical system exposing its state and its time derivative
//   - [Stepper]: a fixed-step numerical integrator that advances a ParticleSystem
//
// # Example
//
//	sys, _ := physics.NewClothGrid(physics.DefaultClothConfig(), rng)
//	stepper := integrators.NewRK4()
//	for i := 0; i < 100; i++ {
//		stepper.TakeStep(sys, 0.01)
//	}
//	positions := sys.Positions()
//
// # Thread Safety
//
// ParticleSystem implementations are NOT safe for concurrent mutation. EvalF is
// pure with respect to the stored state and may be called with any trial state.
package dynamo
