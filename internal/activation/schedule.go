// Package activation provides muscle excitation schedules.
//
// A Schedule is consulted once at the end of every simulation step and returns
// the activation in effect for the following step. The step's own activation
// is therefore the value left by the previous update, or the initial muscle
// activation at step 0.
package activation

import "math"

// Schedule maps a completed step index to the next activation.
// steps is the total step count of the run; current is the activation used
// during the completed step.
type Schedule interface {
	Next(step, steps int, current float64) float64
}

// Func adapts an ordinary function to Schedule.
type Func func(step, steps int, current float64) float64

func (f Func) Next(step, steps int, current float64) float64 {
	return f(step, steps, current)
}

// Pulse holds the current activation until the step index exceeds
// Fraction*steps, then drops to zero. It is the default stimulus.
// Next sets the activation of the following step, so the first step whose
// index exceeds Fraction*steps still runs at the old activation.
type Pulse struct {
	Fraction float64
}

// DefaultPulse relaxes after the first tenth of the run.
func DefaultPulse() Pulse {
	return Pulse{Fraction: 0.1}
}

func (p Pulse) Next(step, steps int, current float64) float64 {
	if float64(step) > float64(steps)*p.Fraction {
		return 0
	}
	return current
}

// Step holds the current activation through step Cutoff, then switches to Level.
type Step struct {
	Cutoff int
	Level  float64
}

func (s Step) Next(step, steps int, current float64) float64 {
	if step >= s.Cutoff {
		return s.Level
	}
	return current
}

// Constant never changes the activation.
type Constant struct{}

func (Constant) Next(step, steps int, current float64) float64 {
	return current
}

// Clamp limits a to [0, 1]. NaN maps to 0.
func Clamp(a float64) float64 {
	if math.IsNaN(a) || a < 0 {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}
