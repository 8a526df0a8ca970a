package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/musclesim/internal/config"
	"github.com/san-kum/musclesim/internal/physics"
	"github.com/san-kum/musclesim/internal/sim"
)

// NewRunMetadata records the parameters a run was produced with.
func NewRunMetadata(name string, cfg *config.Config, metrics map[string]float64) RunMetadata {
	simCfg := cfg.SimConfig()
	schedule := cfg.Activation.Schedule
	if schedule == "" {
		schedule = config.DefaultSchedule
	}
	joint := simCfg.Joint.GetParams()
	joint["theta_min"] = simCfg.Limits.Min
	joint["theta_max"] = simCfg.Limits.Max

	return RunMetadata{
		Name:     name,
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		Schedule: schedule,
		Muscle:   cfg.MuscleParams().GetParams(),
		Joint:    joint,
		Metrics:  metrics,
	}
}

// JointSetup rebuilds the joint and its limits from the stored parameters.
func (m RunMetadata) JointSetup() (physics.Joint, physics.Limits, error) {
	var joint physics.Joint
	limits := physics.Limits{Min: m.Joint["theta_min"], Max: m.Joint["theta_max"]}
	for k, v := range m.Joint {
		if k == "theta_min" || k == "theta_max" {
			continue
		}
		if err := joint.SetParam(k, v); err != nil {
			return physics.Joint{}, physics.Limits{}, err
		}
	}
	if err := joint.Validate(); err != nil {
		return physics.Joint{}, physics.Limits{}, err
	}
	return joint, limits, nil
}

type ExportData struct {
	RunMetadata
	Times       []float64 `json:"times"`
	Theta       []float64 `json:"theta"`
	Omega       []float64 `json:"omega"`
	Force       []float64 `json:"force"`
	Length      []float64 `json:"length"`
	Activation  []float64 `json:"activation"`
	AtLimitStep []int     `json:"at_limit_steps"`
}

func newExportData(meta RunMetadata, history sim.TimeHistory) ExportData {
	data := ExportData{
		RunMetadata: meta,
		Times:       history.Times(),
		Theta:       history.Thetas(),
		Omega:       history.Omegas(),
		Force:       history.Forces(),
		Length:      history.Lengths(),
		Activation:  history.Activations(),
		AtLimitStep: make([]int, 0),
	}
	data.Steps = len(history)
	for i, s := range history {
		if s.AtLimit {
			data.AtLimitStep = append(data.AtLimitStep, i)
		}
	}
	return data
}

// ExportJSON writes metadata and column-oriented history as indented JSON.
func ExportJSON(w io.Writer, meta RunMetadata, history sim.TimeHistory) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(meta, history))
}

func ExportJSONFile(path string, meta RunMetadata, history sim.TimeHistory) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return ExportJSON(file, meta, history)
}

func ExportCSVFile(path string, history sim.TimeHistory) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteCSV(file, history)
}
