package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/musclesim/internal/sim"
)

type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	RMS    float64 `json:"rms"`
}

func Describe(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}
	s := Summary{
		Mean: stat.Mean(data, nil),
		Min:  floats.Min(data),
		Max:  floats.Max(data),
		RMS:  floats.Norm(data, 2) / math.Sqrt(float64(len(data))),
	}
	if len(data) > 1 {
		s.StdDev = stat.StdDev(data, nil)
	}
	return s
}

// Report is the analysis of one run.
type Report struct {
	Channels          map[string]Summary `json:"channels"`
	ThetaFrequency    float64            `json:"theta_frequency_hz"`
	LimitFraction     float64            `json:"limit_fraction"`
	ForceThetaCorrel  float64            `json:"force_theta_correlation"`
	FirstLimitContact float64            `json:"first_limit_contact"`
}

// Summarize builds a Report. FirstLimitContact is -1 when the joint never
// reached a limit.
func Summarize(history sim.TimeHistory, dt float64) Report {
	r := Report{
		Channels: map[string]Summary{
			"theta":      Describe(history.Thetas()),
			"omega":      Describe(history.Omegas()),
			"force":      Describe(history.Forces()),
			"length":     Describe(history.Lengths()),
			"activation": Describe(history.Activations()),
		},
		FirstLimitContact: -1,
	}
	if len(history) == 0 {
		return r
	}

	contacts := 0
	for _, s := range history {
		if s.AtLimit {
			if contacts == 0 {
				r.FirstLimitContact = s.Time
			}
			contacts++
		}
	}
	r.LimitFraction = float64(contacts) / float64(len(history))

	if f, err := DominantFrequency(history.Thetas(), dt); err == nil {
		r.ThetaFrequency = f
	}
	if c := stat.Correlation(history.Forces(), history.Thetas(), nil); !math.IsNaN(c) {
		r.ForceThetaCorrel = c
	}
	return r
}
