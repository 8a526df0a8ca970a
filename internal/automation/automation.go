// Package automation runs scripted batches of simulations: scenarios loaded
// from YAML and one-parameter sweeps.
package automation

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/musclesim/internal/config"
	"github.com/san-kum/musclesim/internal/experiment"
)

// Scenario defines a set of independent runs.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun starts from a preset (or the defaults) and decodes Config over
// it, so only the keys that differ need to be listed.
type ScenarioRun struct {
	Name   string    `yaml:"name"`
	Preset string    `yaml:"preset"`
	Config yaml.Node `yaml:"config"`
}

// NamedResult pairs a run's name and resolved config with its outcome.
type NamedResult struct {
	Name   string
	Config *config.Config
	*experiment.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %q has no runs", scenario.Name)
	}
	return &scenario, nil
}

// Configs resolves every run's configuration.
func (s *Scenario) Configs() ([]*config.Config, error) {
	out := make([]*config.Config, len(s.Runs))
	for i, run := range s.Runs {
		cfg := config.DefaultConfig()
		if run.Preset != "" {
			if cfg = config.GetPreset(run.Preset); cfg == nil {
				return nil, fmt.Errorf("run %d (%s): unknown preset %q", i+1, run.Name, run.Preset)
			}
		}
		if !run.Config.IsZero() {
			if err := run.Config.Decode(cfg); err != nil {
				return nil, fmt.Errorf("run %d (%s): %w", i+1, run.Name, err)
			}
		}
		out[i] = cfg
	}
	return out, nil
}

// RunScenario executes all runs concurrently, one experiment each. Results
// are in scenario order; the first failure cancels the rest.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, log *zap.Logger) ([]NamedResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	configs, err := scenario.Configs()
	if err != nil {
		return nil, err
	}

	results := make([]NamedResult, len(configs))
	g, ctx := errgroup.WithContext(ctx)

	for i, cfg := range configs {
		name := scenario.Runs[i].Name
		if name == "" {
			name = fmt.Sprintf("run%d", i+1)
		}

		g.Go(func() error {
			exp := experiment.New(cfg, registry, log.With(zap.String("run", name)))
			if err := exp.Setup(); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			res, err := exp.Run(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			results[i] = NamedResult{Name: name, Config: cfg, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Info("scenario complete", zap.String("scenario", scenario.Name), zap.Int("runs", len(results)))
	return results, nil
}
