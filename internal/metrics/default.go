package metrics

import "github.com/san-kum/musclesim/internal/sim"

// Default returns the metrics recorded for every stored run.
func Default(cfg sim.Config) []sim.Metric {
	return []sim.Metric{
		NewPeakForce(),
		NewLimitContacts(),
		NewRangeOfMotion(),
		NewActivationEffort(),
		NewEnergy(cfg.Joint),
		NewMuscleWork(cfg.Dt),
	}
}
