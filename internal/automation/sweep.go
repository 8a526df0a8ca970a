package automation

import (
	"context"
	"fmt"
	"sort"

	"github.com/san-kum/musclesim/internal/config"
	"github.com/san-kum/musclesim/internal/experiment"
	"github.com/san-kum/musclesim/internal/sim"
)

// ParameterSweep varies one config field linearly over Steps values.
type ParameterSweep struct {
	Base  *config.Config
	Param string
	Min   float64
	Max   float64
	Steps int
}

type SweepResult struct {
	ParamValue float64
	Samples    int
	Metrics    map[string]float64
}

func fields(c *config.Config) map[string]*float64 {
	return map[string]*float64{
		"dt":                              &c.Dt,
		"duration":                        &c.Duration,
		"muscle.optimal_fiber_length":     &c.Muscle.OptimalFiberLength,
		"muscle.max_isometric_force":      &c.Muscle.MaxIsometricForce,
		"muscle.pennation_angle":          &c.Muscle.PennationAngle,
		"muscle.tendon_slack_length":      &c.Muscle.TendonSlackLength,
		"muscle.max_contraction_velocity": &c.Muscle.MaxContractionVelocity,
		"muscle.damping":                  &c.Muscle.Damping,
		"joint.link_length":               &c.Joint.LinkLength,
		"joint.inertia":                   &c.Joint.Inertia,
		"joint.damping":                   &c.Joint.Damping,
		"joint.gravity":                   &c.Joint.Gravity,
		"joint.theta_min":                 &c.Joint.ThetaMin,
		"joint.theta_max":                 &c.Joint.ThetaMax,
		"activation.fraction":             &c.Activation.Fraction,
		"activation.level":                &c.Activation.Level,
		"init_state.theta":                &c.InitState.Theta,
		"init_state.omega":                &c.InitState.Omega,
		"init_state.muscle_length":        &c.InitState.MuscleLength,
		"init_state.muscle_velocity":      &c.InitState.MuscleVelocity,
		"init_state.activation":           &c.InitState.Activation,
	}
}

// SweepParams lists the field names a sweep can vary.
func SweepParams() []string {
	names := make([]string, 0)
	for name := range fields(&config.Config{}) {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Values returns the swept parameter values. A single step yields Min.
func (s *ParameterSweep) Values() []float64 {
	if s.Steps <= 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.Steps-1)
	out := make([]float64, s.Steps)
	for i := range out {
		out[i] = s.Min + float64(i)*step
	}
	return out
}

// RunSweep simulates every value concurrently through sim.Sweep and computes
// the default metrics for each history.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	if sweep.Steps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.Steps)
	}
	base := sweep.Base
	if base == nil {
		base = config.DefaultConfig()
	}
	if registry == nil {
		registry = experiment.NewRegistry()
	}

	values := sweep.Values()
	cases := make([]sim.Case, len(values))
	simConfigs := make([]sim.Config, len(values))

	for i, v := range values {
		cfg := base.Clone()
		p, ok := fields(cfg)[sweep.Param]
		if !ok {
			return nil, fmt.Errorf("unknown sweep parameter: %s (available: %v)", sweep.Param, SweepParams())
		}
		*p = v

		schedule, err := registry.GetSchedule(cfg.Activation)
		if err != nil {
			return nil, err
		}
		simCfg := cfg.SimConfig()
		simCfg.Schedule = schedule
		m0, j0 := cfg.InitialStates()

		simConfigs[i] = simCfg
		cases[i] = sim.Case{Config: simCfg, Params: cfg.MuscleParams(), Muscle: m0, Joint: j0}
	}

	histories, err := sim.Sweep(ctx, cases)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(values))
	for i, h := range histories {
		results[i] = SweepResult{
			ParamValue: values[i],
			Samples:    len(h),
			Metrics:    evaluate(registry.DefaultMetrics(simConfigs[i]), h),
		}
	}
	return results, nil
}

func evaluate(ms []sim.Metric, h sim.TimeHistory) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for _, s := range h {
			m.Observe(s)
		}
		out[m.Name()] = m.Value()
	}
	return out
}
