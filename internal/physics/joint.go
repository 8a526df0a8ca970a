package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/musclesim/internal/dynamo"
)

// LengthCoupling is the empirical rate at which musculotendon length follows
// joint angular velocity, in m per rad.
const LengthCoupling = -0.005

// Joint is a single hinged link driven by a muscle inserted at mid-link.
type Joint struct {
	LinkLength float64
	Inertia    float64
	Damping    float64
	Gravity    float64
}

func NewJoint() *Joint {
	return &Joint{
		LinkLength: 0.5,
		Inertia:    20.0,
		Damping:    0.1,
		Gravity:    9.83,
	}
}

func (j *Joint) Validate() error {
	if err := dynamo.Positive("inertia", j.Inertia); err != nil {
		return err
	}
	if err := dynamo.NonNegative("link_length", j.LinkLength); err != nil {
		return err
	}
	if err := dynamo.Finite("joint_damping", j.Damping); err != nil {
		return err
	}
	return dynamo.Finite("gravity", j.Gravity)
}

// MuscleTorque uses a constant lever arm of half the link length; the arm is
// not recomputed from the joint angle.
func (j *Joint) MuscleTorque(force float64) float64 {
	return force * j.LinkLength / 2
}

func (j *Joint) GravityTorque(theta float64) float64 {
	return -j.Gravity * j.Inertia * j.LinkLength * j.LinkLength * math.Cos(theta)
}

// Acceleration returns angular acceleration for total applied torque at
// angular velocity omega.
func (j *Joint) Acceleration(torque, omega float64) float64 {
	return (torque - j.Damping*omega) / j.Inertia
}

// LengthChange is the musculotendon length increment for angular velocity omega.
func LengthChange(omega float64) float64 {
	return LengthCoupling * omega
}

// Energy is rotational kinetic energy plus the potential whose negative
// gradient is GravityTorque.
func (j *Joint) Energy(theta, omega float64) float64 {
	ke := 0.5 * j.Inertia * omega * omega
	pe := j.Gravity * j.Inertia * j.LinkLength * j.LinkLength * math.Sin(theta)
	return ke + pe
}

// Positions returns the fixed link end (x1, y1), the moving link tip (x2, y2)
// and the muscle insertion point (xm, ym). The fixed link lies along +x from
// the origin and the muscle originates at the origin.
func (j *Joint) Positions(theta float64) (x1, y1, x2, y2, xm, ym float64) {
	x1, y1 = j.LinkLength, 0
	x2 = x1 + j.LinkLength*math.Cos(theta)
	y2 = y1 + j.LinkLength*math.Sin(theta)
	xm = x1 + (j.LinkLength/2)*math.Cos(theta)
	ym = y1 + (j.LinkLength/2)*math.Sin(theta)
	return
}

func (j *Joint) GetParams() map[string]float64 {
	return map[string]float64{
		"link_length":   j.LinkLength,
		"inertia":       j.Inertia,
		"joint_damping": j.Damping,
		"gravity":       j.Gravity,
	}
}

func (j *Joint) SetParam(name string, value float64) error {
	switch name {
	case "link_length":
		j.LinkLength = value
	case "inertia":
		j.Inertia = value
	case "joint_damping":
		j.Damping = value
	case "gravity":
		j.Gravity = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
