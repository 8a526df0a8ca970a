package metrics

import (
	"math"

	"github.com/san-kum/musclesim/internal/sim"
)

// LimitContacts counts steps that ended clamped at a joint limit.
type LimitContacts struct {
	name     string
	contacts int
}

func NewLimitContacts() *LimitContacts {
	return &LimitContacts{name: "limit_contacts"}
}

func (l *LimitContacts) Name() string { return l.name }

func (l *LimitContacts) Observe(s sim.Sample) {
	if s.AtLimit {
		l.contacts++
	}
}

func (l *LimitContacts) Value() float64 { return float64(l.contacts) }
func (l *LimitContacts) Reset()         { l.contacts = 0 }

// RangeOfMotion is the span of joint angles visited.
type RangeOfMotion struct {
	name     string
	min, max float64
	samples  int
}

func NewRangeOfMotion() *RangeOfMotion {
	return &RangeOfMotion{name: "range_of_motion"}
}

func (r *RangeOfMotion) Name() string {
	return r.name
}

func (r *RangeOfMotion) Observe(s sim.Sample) {
	if r.samples == 0 {
		r.min, r.max = s.Theta, s.Theta
	}
	r.min = math.Min(r.min, s.Theta)
	r.max = math.Max(r.max, s.Theta)
	r.samples++
}

func (r *RangeOfMotion) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return r.max - r.min
}

func (r *RangeOfMotion) Reset() {
	r.min, r.max = 0, 0
	r.samples = 0
}
