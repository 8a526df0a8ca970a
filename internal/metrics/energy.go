package metrics

import (
	"github.com/san-kum/musclesim/internal/physics"
	"github.com/san-kum/musclesim/internal/sim"
)

// Energy is the mean mechanical energy of the link over the run.
type Energy struct {
	name        string
	joint       physics.Joint
	samples     int
	totalEnergy float64
}

func NewEnergy(joint physics.Joint) *Energy {
	return &Energy{
		name:  "energy",
		joint: joint,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s sim.Sample) {
	e.totalEnergy += e.joint.Energy(s.Theta, s.Omega)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// MuscleWork integrates muscle power (torque times angular velocity) over time.
type MuscleWork struct {
	name string
	dt   float64
	work float64
}

func NewMuscleWork(dt float64) *MuscleWork {
	return &MuscleWork{name: "muscle_work", dt: dt}
}

func (w *MuscleWork) Name() string { return w.name }

func (w *MuscleWork) Observe(s sim.Sample) {
	w.work += s.MuscleTorque * s.Omega * w.dt
}

func (w *MuscleWork) Value() float64 { return w.work }
func (w *MuscleWork) Reset()         { w.work = 0 }
