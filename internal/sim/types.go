package sim

import (
	"github.com/san-kum/musclesim/internal/activation"
	"github.com/san-kum/musclesim/internal/dynamo"
	"github.com/san-kum/musclesim/internal/physics"
)

type JointState struct {
	Theta float64
	Omega float64
}

type MuscleState struct {
	Length     float64
	Velocity   float64
	Activation float64
}

func (m MuscleState) Validate() error {
	if err := dynamo.Finite("muscle_length", m.Length); err != nil {
		return err
	}
	if err := dynamo.Finite("muscle_velocity", m.Velocity); err != nil {
		return err
	}
	return dynamo.InRange("activation", m.Activation, 0, 1)
}

func (j JointState) Validate() error {
	if err := dynamo.Finite("theta", j.Theta); err != nil {
		return err
	}
	return dynamo.Finite("omega", j.Omega)
}

type Integrator interface {
	Step(x JointState, alpha, dt float64) JointState
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Sample)
}

type Config struct {
	Dt            float64
	Duration      float64
	Joint         physics.Joint
	Limits        physics.Limits
	Schedule      activation.Schedule
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      5.0,
		Joint:         *physics.NewJoint(),
		Limits:        physics.DefaultLimits(),
		Schedule:      activation.DefaultPulse(),
		ValidateState: true,
	}
}

// Steps is floor(Duration/Dt).
func (c Config) Steps() int {
	if c.Dt <= 0 || c.Duration <= 0 {
		return 0
	}
	return int(c.Duration / c.Dt)
}

func (c Config) Validate() error {
	if err := dynamo.Positive("dt", c.Dt); err != nil {
		return err
	}
	if err := dynamo.Positive("duration", c.Duration); err != nil {
		return err
	}
	if err := c.Joint.Validate(); err != nil {
		return err
	}
	return c.Limits.Validate()
}

// Sample is one recorded step. Force and Activation are the values used
// during the step; Theta, Omega and Length are the post-step state.
type Sample struct {
	Time          float64 `json:"t"`
	Theta         float64 `json:"theta"`
	Omega         float64 `json:"omega"`
	Force         float64 `json:"force"`
	Length        float64 `json:"length"`
	Activation    float64 `json:"activation"`
	MuscleTorque  float64 `json:"muscle_torque"`
	GravityTorque float64 `json:"gravity_torque"`
	AtLimit       bool    `json:"at_limit"`
}

// TimeHistory is the ordered record of a run.
type TimeHistory []Sample

func (h TimeHistory) column(f func(Sample) float64) []float64 {
	out := make([]float64, len(h))
	for i, s := range h {
		out[i] = f(s)
	}
	return out
}

func (h TimeHistory) Times() []float64  { return h.column(func(s Sample) float64 { return s.Time }) }
func (h TimeHistory) Thetas() []float64 { return h.column(func(s Sample) float64 { return s.Theta }) }
func (h TimeHistory) Omegas() []float64 { return h.column(func(s Sample) float64 { return s.Omega }) }
func (h TimeHistory) Forces() []float64 { return h.column(func(s Sample) float64 { return s.Force }) }

func (h TimeHistory) Lengths() []float64 {
	return h.column(func(s Sample) float64 { return s.Length })
}

func (h TimeHistory) Activations() []float64 {
	return h.column(func(s Sample) float64 { return s.Activation })
}

// Clone returns an independent copy.
func (h TimeHistory) Clone() TimeHistory {
	c := make(TimeHistory, len(h))
	copy(c, h)
	return c
}
