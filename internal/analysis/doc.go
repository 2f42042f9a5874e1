// Package analysis measures how well a stepper tracks a particle system.
//
//   - [Reference]: closed-form damped oscillator motion, the ground truth for
//     the [physics.Oscillator] system
//   - [Convergence] and [EstimateOrder]: global error against dt and the
//     empirical order of accuracy from a log-log fit
//   - [DominantFrequency]: strongest oscillation in a sampled series
//   - [SeparationRate]: growth rate of a small perturbation between two runs
//   - [PhasePortrait]: a particle's path projected on the x-y plane
//
// # Order of accuracy
//
// A stepper of order p has global error proportional to dt^p, so
//
//	pts, _ := analysis.Convergence(ctx, cfg, integrators.NewRK4(), 1.0, []float64{0.1, 0.05, 0.025})
//	p, _ := analysis.EstimateOrder(pts) // ~4
package analysis
