package metrics

import (
	"math"

	"github.com/san-kum/musclesim/internal/sim"
)

type PeakForce struct {
	name string
	peak float64
	seen bool
}

func NewPeakForce() *PeakForce {
	return &PeakForce{name: "peak_force"}
}

func (p *PeakForce) Name() string { return p.name }

func (p *PeakForce) Observe(s sim.Sample) {
	if !p.seen || s.Force > p.peak {
		p.peak = s.Force
		p.seen = true
	}
}

func (p *PeakForce) Value() float64 { return p.peak }

func (p *PeakForce) Reset() {
	p.peak = 0
	p.seen = false
}

// ActivationEffort is the mean absolute activation per step.
type ActivationEffort struct {
	name    string
	sum     float64
	samples int
}

func NewActivationEffort() *ActivationEffort {
	return &ActivationEffort{
		name: "activation_effort",
	}
}

func (a *ActivationEffort) Name() string {
	return a.name
}

func (a *ActivationEffort) Observe(s sim.Sample) {
	a.sum += math.Abs(s.Activation)
	a.samples++
}

func (a *ActivationEffort) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.sum / float64(a.samples)
}

func (a *ActivationEffort) Reset() {
	a.sum = 0
	a.samples = 0
}
