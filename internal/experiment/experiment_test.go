package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/musclesim/internal/activation"
	"github.com/san-kum/musclesim/internal/config"
	"github.com/san-kum/musclesim/internal/dynamo"
	"github.com/san-kum/musclesim/internal/sim"
)

func TestRegistrySchedules(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		cfg  config.ActivationConfig
		want activation.Schedule
	}{
		{config.ActivationConfig{Schedule: "pulse", Fraction: 0.2}, activation.Pulse{Fraction: 0.2}},
		{config.ActivationConfig{Schedule: "pulse"}, activation.Pulse{Fraction: 0}},
		{config.ActivationConfig{}, activation.DefaultPulse()},
		{config.DefaultConfig().Activation, activation.DefaultPulse()},
		{config.ActivationConfig{Schedule: "step", Cutoff: 5, Level: 0.3}, activation.Step{Cutoff: 5, Level: 0.3}},
		{config.ActivationConfig{Schedule: "constant"}, activation.Constant{}},
	}

	for _, tt := range tests {
		got, err := r.GetSchedule(tt.cfg)
		if err != nil {
			t.Fatalf("GetSchedule(%+v): %v", tt.cfg, err)
		}
		if got != tt.want {
			t.Errorf("GetSchedule(%+v) = %#v, want %#v", tt.cfg, got, tt.want)
		}
	}

	if _, err := r.GetSchedule(config.ActivationConfig{Schedule: "sine"}); err == nil {
		t.Error("expected error for unknown schedule")
	}
}

func TestRegistryRejectsBadActivation(t *testing.T) {
	r := NewRegistry()
	bad := []config.ActivationConfig{
		{Schedule: "pulse", Fraction: -0.1},
		{Schedule: "step", Cutoff: -1},
		{Schedule: "step", Cutoff: 5, Level: 1.5},
	}
	for _, c := range bad {
		if _, err := r.GetSchedule(c); !errors.Is(err, dynamo.ErrInvalidParameter) {
			t.Errorf("GetSchedule(%+v) err = %v, want ErrInvalidParameter", c, err)
		}
	}
}

func TestRegistryZeroFractionRelaxesImmediately(t *testing.T) {
	s, err := NewRegistry().GetSchedule(config.ActivationConfig{Schedule: "pulse", Fraction: 0})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Next(0, 500, 0.5); got != 0.5 {
		t.Errorf("Next(0) = %v, want 0.5", got)
	}
	if got := s.Next(1, 500, 0.5); got != 0 {
		t.Errorf("Next(1) = %v, want 0", got)
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	r.Register("off", func(config.ActivationConfig) activation.Schedule {
		return activation.Step{Cutoff: 0, Level: 0}
	})

	names := r.ListSchedules()
	want := []string{"constant", "off", "pulse", "step"}
	if len(names) != len(want) {
		t.Fatalf("ListSchedules() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ListSchedules()[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestExperimentRun(t *testing.T) {
	exp := New(config.DefaultConfig(), nil, nil)
	if err := exp.Setup(); err != nil {
		t.Fatalf("setup: %v", err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(result.History) != 500 {
		t.Errorf("expected 500 samples, got %d", len(result.History))
	}
	for _, name := range []string{"peak_force", "limit_contacts", "range_of_motion", "activation_effort", "energy", "muscle_work"} {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("metric %s missing", name)
		}
	}
}

func TestExperimentMatchesDirectRun(t *testing.T) {
	cfg := config.DefaultConfig()
	exp := New(cfg, nil, nil)
	if err := exp.Setup(); err != nil {
		t.Fatalf("setup: %v", err)
	}
	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	m0, j0 := cfg.InitialStates()
	direct, err := sim.RunSimulation(context.Background(), sim.DefaultConfig(), cfg.MuscleParams(), m0, j0)
	if err != nil {
		t.Fatalf("direct run: %v", err)
	}

	for i := range direct {
		if direct[i] != result.History[i] {
			t.Fatalf("sample %d differs: %+v vs %+v", i, direct[i], result.History[i])
		}
	}
}

func TestExperimentNotSetup(t *testing.T) {
	exp := New(config.DefaultConfig(), nil, nil)
	if _, err := exp.Run(context.Background()); err == nil {
		t.Error("expected error when running before setup")
	}
}

func TestExperimentInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Joint.Inertia = -1

	err := New(cfg, nil, nil).Setup()
	if !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestExperimentObservers(t *testing.T) {
	count := 0
	exp := New(config.DefaultConfig(), nil, nil)
	if err := exp.Setup(sim.ObserverFunc(func(sim.Sample) { count++ })); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := exp.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if count != 500 {
		t.Errorf("observer saw %d samples, want 500", count)
	}
}
