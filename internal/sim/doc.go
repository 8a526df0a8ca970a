// Package sim advances a single muscle-driven joint through time.
//
// A [Simulator] owns the joint state (angle, angular velocity) and the muscle
// state (musculotendon length, its rate, activation). Each step it asks the
// muscle model for force, converts it to torque, adds gravity, integrates with
// a fixed-step [Integrator], clamps the angle to the joint limits, moves the
// musculotendon length with the new angular velocity and records a [Sample].
//
// # Example
//
//	cfg := sim.DefaultConfig()
//	history, err := sim.RunSimulation(ctx, cfg, muscle.DefaultParams(),
//	    sim.MuscleState{Length: 1.2, Activation: 0.5},
//	    sim.JointState{Theta: math.Pi / 10})
//
// # Thread Safety
//
// A Simulator is NOT safe for concurrent runs. Use [Sweep] to run independent
// configurations in parallel.
package sim
