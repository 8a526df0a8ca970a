package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/musclesim/internal/config"
	"github.com/san-kum/musclesim/internal/sim"
)

type Result struct {
	History sim.TimeHistory
	Metrics map[string]float64
}

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	simulator *sim.Simulator
	log       *zap.Logger
}

func New(cfg *config.Config, registry *Registry, log *zap.Logger) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Experiment{cfg: cfg, registry: registry, log: log}
}

// Setup resolves the schedule, validates everything and attaches the default
// metrics plus any extra observers.
func (e *Experiment) Setup(observers ...sim.Observer) error {
	schedule, err := e.registry.GetSchedule(e.cfg.Activation)
	if err != nil {
		return err
	}

	simCfg := e.cfg.SimConfig()
	simCfg.Schedule = schedule

	s, err := sim.New(simCfg, e.cfg.MuscleParams(), sim.NewEuler())
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	s.SetLogger(e.log)
	for _, m := range e.registry.DefaultMetrics(simCfg) {
		s.AddMetric(m)
	}
	for _, o := range observers {
		s.AddObserver(o)
	}

	e.simulator = s
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	m0, j0 := e.cfg.InitialStates()
	history, err := e.simulator.Run(ctx, m0, j0)
	if err != nil {
		return nil, err
	}

	e.log.Info("run complete",
		zap.Int("samples", len(history)),
		zap.String("schedule", e.cfg.Activation.Schedule),
	)
	return &Result{History: history, Metrics: e.simulator.Metrics()}, nil
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
