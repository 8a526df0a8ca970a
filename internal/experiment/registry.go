package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/musclesim/internal/activation"
	"github.com/san-kum/musclesim/internal/config"
	"github.com/san-kum/musclesim/internal/metrics"
	"github.com/san-kum/musclesim/internal/sim"
)

type Registry struct {
	schedules map[string]func(config.ActivationConfig) activation.Schedule
}

func NewRegistry() *Registry {
	r := &Registry{
		schedules: make(map[string]func(config.ActivationConfig) activation.Schedule),
	}

	r.schedules["pulse"] = func(c config.ActivationConfig) activation.Schedule {
		return activation.Pulse{Fraction: c.Fraction}
	}
	r.schedules["step"] = func(c config.ActivationConfig) activation.Schedule {
		return activation.Step{Cutoff: c.Cutoff, Level: c.Level}
	}
	r.schedules["constant"] = func(config.ActivationConfig) activation.Schedule {
		return activation.Constant{}
	}

	return r
}

// Register adds or replaces a named schedule builder.
func (r *Registry) Register(name string, fn func(config.ActivationConfig) activation.Schedule) {
	r.schedules[name] = fn
}

// GetSchedule builds the named schedule. A zero ActivationConfig means no
// activation section was given and resolves to the default pulse.
func (r *Registry) GetSchedule(c config.ActivationConfig) (activation.Schedule, error) {
	if c == (config.ActivationConfig{}) {
		c = config.DefaultConfig().Activation
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	name := c.Schedule
	if name == "" {
		name = config.DefaultSchedule
	}
	fn, ok := r.schedules[name]
	if !ok {
		return nil, fmt.Errorf("unknown activation schedule: %s", name)
	}
	return fn(c), nil
}

func (r *Registry) ListSchedules() []string {
	names := make([]string, 0, len(r.schedules))
	for name := range r.schedules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(cfg sim.Config) []sim.Metric {
	return metrics.Default(cfg)
}
