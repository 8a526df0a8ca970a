package config

import (
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/musclesim/internal/dynamo"
	"github.com/san-kum/musclesim/internal/muscle"
	"github.com/san-kum/musclesim/internal/physics"
	"github.com/san-kum/musclesim/internal/sim"
)

const (
	DefaultDt           = 0.01
	DefaultDuration     = 5.0
	DefaultTheta        = math.Pi / 10
	DefaultMuscleLength = 1.2
	DefaultActivation   = 0.5
	DefaultSchedule     = "pulse"
	DefaultPulseFrac    = 0.1
)

type Config struct {
	Dt            float64          `yaml:"dt"`
	Duration      float64          `yaml:"duration"`
	ValidateState bool             `yaml:"validate_state"`
	Muscle        MuscleConfig     `yaml:"muscle"`
	Joint         JointConfig      `yaml:"joint"`
	Activation    ActivationConfig `yaml:"activation"`
	InitState     InitStateConfig  `yaml:"init_state"`
}

type MuscleConfig struct {
	OptimalFiberLength     float64 `yaml:"optimal_fiber_length"`
	MaxIsometricForce      float64 `yaml:"max_isometric_force"`
	PennationAngle         float64 `yaml:"pennation_angle"`
	TendonSlackLength      float64 `yaml:"tendon_slack_length"`
	MaxContractionVelocity float64 `yaml:"max_contraction_velocity"`
	Damping                float64 `yaml:"damping"`
}

type JointConfig struct {
	LinkLength float64 `yaml:"link_length"`
	Inertia    float64 `yaml:"inertia"`
	Damping    float64 `yaml:"damping"`
	Gravity    float64 `yaml:"gravity"`
	ThetaMin   float64 `yaml:"theta_min"`
	ThetaMax   float64 `yaml:"theta_max"`
}

// ActivationConfig selects a schedule by name. Fraction applies to "pulse";
// Cutoff and Level apply to "step".
type ActivationConfig struct {
	Schedule string  `yaml:"schedule"`
	Fraction float64 `yaml:"fraction"`
	Cutoff   int     `yaml:"cutoff"`
	Level    float64 `yaml:"level"`
}

// Validate rejects schedule settings no schedule can honour. A zero Fraction
// is valid: the pulse relaxes after the first step.
func (a ActivationConfig) Validate() error {
	if err := dynamo.NonNegative("activation.fraction", a.Fraction); err != nil {
		return err
	}
	if a.Cutoff < 0 {
		return &dynamo.ParameterError{Name: "activation.cutoff", Value: float64(a.Cutoff), Reason: "must not be negative"}
	}
	return dynamo.InRange("activation.level", a.Level, 0, 1)
}

type InitStateConfig struct {
	Theta          float64 `yaml:"theta"`
	Omega          float64 `yaml:"omega"`
	MuscleLength   float64 `yaml:"muscle_length"`
	MuscleVelocity float64 `yaml:"muscle_velocity"`
	Activation     float64 `yaml:"activation"`
}

func DefaultConfig() *Config {
	p := muscle.DefaultParams()
	j := physics.NewJoint()
	l := physics.DefaultLimits()
	return &Config{
		Dt:            DefaultDt,
		Duration:      DefaultDuration,
		ValidateState: true,
		Muscle: MuscleConfig{
			OptimalFiberLength:     p.OptimalFiberLength,
			MaxIsometricForce:      p.MaxIsometricForce,
			PennationAngle:         p.PennationAngle,
			TendonSlackLength:      p.TendonSlackLength,
			MaxContractionVelocity: p.MaxContractionVelocity,
			Damping:                p.Damping,
		},
		Joint: JointConfig{
			LinkLength: j.LinkLength,
			Inertia:    j.Inertia,
			Damping:    j.Damping,
			Gravity:    j.Gravity,
			ThetaMin:   l.Min,
			ThetaMax:   l.Max,
		},
		Activation: ActivationConfig{
			Schedule: DefaultSchedule,
			Fraction: DefaultPulseFrac,
		},
		InitState: InitStateConfig{
			Theta:        DefaultTheta,
			MuscleLength: DefaultMuscleLength,
			Activation:   DefaultActivation,
		},
	}
}

// Load reads a YAML file over the defaults; keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) MuscleParams() muscle.Params {
	return muscle.Params{
		OptimalFiberLength:     c.Muscle.OptimalFiberLength,
		MaxIsometricForce:      c.Muscle.MaxIsometricForce,
		PennationAngle:         c.Muscle.PennationAngle,
		TendonSlackLength:      c.Muscle.TendonSlackLength,
		MaxContractionVelocity: c.Muscle.MaxContractionVelocity,
		Damping:                c.Muscle.Damping,
	}
}

// SimConfig converts the file values; the activation schedule is left unset
// for the caller to resolve by name.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:       c.Dt,
		Duration: c.Duration,
		Joint: physics.Joint{
			LinkLength: c.Joint.LinkLength,
			Inertia:    c.Joint.Inertia,
			Damping:    c.Joint.Damping,
			Gravity:    c.Joint.Gravity,
		},
		Limits:        physics.Limits{Min: c.Joint.ThetaMin, Max: c.Joint.ThetaMax},
		ValidateState: c.ValidateState,
	}
}

func (c *Config) InitialStates() (sim.MuscleState, sim.JointState) {
	return sim.MuscleState{
			Length:     c.InitState.MuscleLength,
			Velocity:   c.InitState.MuscleVelocity,
			Activation: c.InitState.Activation,
		}, sim.JointState{
			Theta: c.InitState.Theta,
			Omega: c.InitState.Omega,
		}
}

// Clone returns a deep copy; Config holds no reference types.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
