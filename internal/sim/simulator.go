package sim

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/musclesim/internal/activation"
	"github.com/san-kum/musclesim/internal/dynamo"
	"github.com/san-kum/musclesim/internal/muscle"
	"github.com/san-kum/musclesim/internal/physics"
)

type Simulator struct {
	cfg        Config
	params     muscle.Params
	integrator Integrator
	schedule   activation.Schedule
	metrics    []Metric
	observers  []Observer
	log        *zap.Logger
}

// New validates cfg and params and returns a simulator ready to run.
// A nil integrator selects Euler; a nil schedule selects the default pulse.
func New(cfg Config, params muscle.Params, integrator Integrator) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if integrator == nil {
		integrator = NewEuler()
	}
	schedule := cfg.Schedule
	if schedule == nil {
		schedule = activation.DefaultPulse()
	}
	return &Simulator{
		cfg:        cfg,
		params:     params,
		integrator: integrator,
		schedule:   schedule,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		log:        zap.NewNop(),
	}, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) SetLogger(log *zap.Logger) {
	if log != nil {
		s.log = log
	}
}

func (s *Simulator) Config() Config        { return s.cfg }
func (s *Simulator) Params() muscle.Params { return s.params }

// Metrics returns the current value of every registered metric.
func (s *Simulator) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Run integrates from the given initial states for cfg.Steps() steps.
// On cancellation it returns the samples recorded so far with ctx.Err().
func (s *Simulator) Run(ctx context.Context, m0 MuscleState, j0 JointState) (TimeHistory, error) {
	if err := m0.Validate(); err != nil {
		return nil, err
	}
	if err := j0.Validate(); err != nil {
		return nil, err
	}

	steps := s.cfg.Steps()
	history := make(TimeHistory, 0, steps)

	for _, m := range s.metrics {
		m.Reset()
	}

	s.log.Debug("simulation start",
		zap.Int("steps", steps),
		zap.Float64("dt", s.cfg.Dt),
		zap.Float64("theta0", j0.Theta),
		zap.Float64("length0", m0.Length),
		zap.Float64("activation0", m0.Activation),
	)

	ms, js := m0, j0
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return history, ctx.Err()
		default:
		}

		var sample Sample
		ms, js, sample = s.step(i, steps, ms, js)

		if s.cfg.ValidateState && !sample.valid() {
			return history, &dynamo.SimulationError{Step: i, Time: sample.Time, Wrapped: dynamo.ErrInvalidState}
		}

		history = append(history, sample)
		for _, m := range s.metrics {
			m.Observe(sample)
		}
		for _, obs := range s.observers {
			obs.OnStep(sample)
		}
	}

	s.log.Debug("simulation done", zap.Int("samples", len(history)))
	return history, nil
}

// step advances one timestep. The muscle velocity carried into the next step
// is the length increment of this step divided by dt.
func (s *Simulator) step(i, steps int, ms MuscleState, js JointState) (MuscleState, JointState, Sample) {
	joint := &s.cfg.Joint
	dt := s.cfg.Dt

	force := s.params.Force(ms.Length, ms.Velocity, ms.Activation)
	muscleTorque := joint.MuscleTorque(force)
	gravityTorque := joint.GravityTorque(js.Theta)
	torque := muscleTorque + gravityTorque
	alpha := joint.Acceleration(torque, js.Omega)

	next := s.integrator.Step(js, alpha, dt)
	var hit bool
	next.Theta, next.Omega, hit = s.cfg.Limits.Enforce(next.Theta, next.Omega)

	dl := physics.LengthChange(next.Omega)
	nm := MuscleState{
		Length:     ms.Length + dl,
		Velocity:   dl / dt,
		Activation: activation.Clamp(s.schedule.Next(i, steps, ms.Activation)),
	}

	sample := Sample{
		Time:          float64(i) * dt,
		Theta:         next.Theta,
		Omega:         next.Omega,
		Force:         force,
		Length:        nm.Length,
		Activation:    ms.Activation,
		MuscleTorque:  muscleTorque,
		GravityTorque: gravityTorque,
		AtLimit:       hit,
	}
	return nm, next, sample
}

func (s Sample) valid() bool {
	for _, v := range []float64{s.Theta, s.Omega, s.Force, s.Length, s.MuscleTorque, s.GravityTorque} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// RunSimulation builds an Euler simulator and runs it once.
func RunSimulation(ctx context.Context, cfg Config, params muscle.Params, m0 MuscleState, j0 JointState) (TimeHistory, error) {
	s, err := New(cfg, params, nil)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, m0, j0)
}
