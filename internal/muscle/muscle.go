// Package muscle implements a Hill-type rigid-tendon musculotendon force model
// after Millard et al. (2013), "Flexing computational muscle".
//
// The tendon is inextensible, so all length change is taken up by the fiber.
// Every function here is pure: the same inputs always give the same force.
package muscle

import (
	"fmt"
	"math"

	"github.com/san-kum/musclesim/internal/dynamo"
)

// Params are the fixed properties of one musculotendon unit.
type Params struct {
	OptimalFiberLength     float64 // L0, m
	MaxIsometricForce      float64 // Fmax, N
	PennationAngle         float64 // alpha at optimal fiber length, rad
	TendonSlackLength      float64 // Lt, m
	MaxContractionVelocity float64 // Vmax, m/s
	Damping                float64 // b, dimensionless per m/s
}

func DefaultParams() Params {
	return Params{
		OptimalFiberLength:     1.0,
		MaxIsometricForce:      1500,
		PennationAngle:         10 * math.Pi / 180,
		TendonSlackLength:      0.2,
		MaxContractionVelocity: 10.0,
		Damping:                0.1,
	}
}

// Validate reports the first parameter outside its physical range.
func (p Params) Validate() error {
	if err := dynamo.Positive("optimal_fiber_length", p.OptimalFiberLength); err != nil {
		return err
	}
	if err := dynamo.Positive("max_isometric_force", p.MaxIsometricForce); err != nil {
		return err
	}
	if err := dynamo.Positive("max_contraction_velocity", p.MaxContractionVelocity); err != nil {
		return err
	}
	if err := dynamo.NonNegative("tendon_slack_length", p.TendonSlackLength); err != nil {
		return err
	}
	if err := dynamo.NonNegative("damping", p.Damping); err != nil {
		return err
	}
	if err := dynamo.NonNegative("pennation_angle", p.PennationAngle); err != nil {
		return err
	}
	if p.PennationAngle >= math.Pi/2 {
		return &dynamo.ParameterError{Name: "pennation_angle", Value: p.PennationAngle, Reason: "must be below pi/2"}
	}
	return nil
}

// ForceVelocity is the piecewise Hill force-velocity multiplier.
// Negative v is shortening (concentric). The two branches meet at 1 for v = 0.
func ForceVelocity(v, vmax float64) float64 {
	if v < 0 {
		return 1.4 - 0.4*(v/vmax)
	}
	return (1 - v/vmax) / (1 + v/(0.4*vmax))
}

// FiberLength is the fiber length implied by musculotendon length lmt,
// floored at the pennated optimal fiber length.
func (p Params) FiberLength(lmt float64) float64 {
	return math.Max(p.OptimalFiberLength*math.Cos(p.PennationAngle), lmt-p.TendonSlackLength)
}

// ActiveForceLength is the parabolic active force-length curve, clipped at zero.
func (p Params) ActiveForceLength(lm float64) float64 {
	strain := (lm - p.OptimalFiberLength) / p.OptimalFiberLength
	return math.Max(0, 1-strain*strain)
}

// Force returns the musculotendon force in N for length lmt, velocity vmt and
// activation a. With zero activation and negative velocity the damping term
// makes the result negative.
func (p Params) Force(lmt, vmt, a float64) float64 {
	fl := p.ActiveForceLength(p.FiberLength(lmt))
	fv := ForceVelocity(vmt, p.MaxContractionVelocity)
	return p.MaxIsometricForce * (a*fl*fv + p.Damping*vmt) * math.Cos(p.PennationAngle)
}

// Force is the free-function form of Params.Force.
func Force(lmt, vmt, a float64, p Params) float64 {
	return p.Force(lmt, vmt, a)
}

func (p Params) String() string {
	return fmt.Sprintf("L0=%.3fm Fmax=%.0fN alpha=%.1fdeg Lt=%.3fm Vmax=%.2fm/s b=%.3f",
		p.OptimalFiberLength, p.MaxIsometricForce, p.PennationAngle*180/math.Pi,
		p.TendonSlackLength, p.MaxContractionVelocity, p.Damping)
}

func (p Params) GetParams() map[string]float64 {
	return map[string]float64{
		"optimal_fiber_length":     p.OptimalFiberLength,
		"max_isometric_force":      p.MaxIsometricForce,
		"pennation_angle":          p.PennationAngle,
		"tendon_slack_length":      p.TendonSlackLength,
		"max_contraction_velocity": p.MaxContractionVelocity,
		"damping":                  p.Damping,
	}
}
