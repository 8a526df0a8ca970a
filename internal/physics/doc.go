// Package physics holds the mechanics of a single hinged link.
//
// [Joint] turns muscle force into torque through a fixed lever arm of half
// the link length and adds gravity and viscous joint damping:
//
//	alpha := j.Acceleration(j.MuscleTorque(force)+j.GravityTorque(theta), omega)
//
// [Limits] bounds the joint angle. Hitting either bound stops the joint:
//
//	theta, omega, hit := lim.Enforce(theta, omega)
package physics
