package physics

import (
	"math"

	"github.com/san-kum/musclesim/internal/dynamo"
)

// Limits bound the joint angle. Hitting either bound is an inelastic stop.
type Limits struct {
	Min float64
	Max float64
}

// DefaultLimits spans 0 to 80 degrees.
func DefaultLimits() Limits {
	return Limits{Min: 0, Max: 4 * math.Pi / 9}
}

func (l Limits) Validate() error {
	if err := dynamo.Finite("theta_min", l.Min); err != nil {
		return err
	}
	if err := dynamo.Finite("theta_max", l.Max); err != nil {
		return err
	}
	if l.Min > l.Max {
		return &dynamo.ParameterError{Name: "theta_min", Value: l.Min, Reason: "must not exceed theta_max"}
	}
	return nil
}

// Enforce clamps theta into [Min, Max], zeroing omega on contact.
// The upper bound is checked first.
func (l Limits) Enforce(theta, omega float64) (float64, float64, bool) {
	if theta > l.Max {
		return l.Max, 0, true
	} else if theta < l.Min {
		return l.Min, 0, true
	}
	return theta, omega, false
}

func (l Limits) Contains(theta float64) bool {
	return theta >= l.Min && theta <= l.Max
}

// Degrees converts radians to degrees for display.
func Degrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}
