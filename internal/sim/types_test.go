package sim

import (
	"testing"
)

func TestEulerStep(t *testing.T) {
	e := NewEuler()
	x := e.Step(JointState{Theta: 1.0, Omega: 2.0}, 10, 0.1)

	// velocity is updated first and drives the angle update
	if x.Omega != 3.0 {
		t.Errorf("Omega = %v, want 3", x.Omega)
	}
	if x.Theta != 1.3 {
		t.Errorf("Theta = %v, want 1.3", x.Theta)
	}
}

func TestConfigSteps(t *testing.T) {
	tests := []struct {
		name     string
		dt       float64
		duration float64
		want     int
	}{
		{"reference", 0.01, 5.0, 500},
		{"floor", 0.3, 1.0, 3},
		{"shorter than dt", 0.1, 0.05, 0},
		{"zero dt", 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Dt = tt.dt
			cfg.Duration = tt.duration
			if got := cfg.Steps(); got != tt.want {
				t.Errorf("Steps() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTimeHistoryColumns(t *testing.T) {
	h := TimeHistory{
		{Time: 0, Theta: 0.1, Omega: 1, Force: 10, Length: 1.2, Activation: 0.5},
		{Time: 0.01, Theta: 0.2, Omega: 2, Force: 20, Length: 1.1, Activation: 0},
	}

	check := func(name string, got, want []float64) {
		t.Helper()
		if len(got) != len(want) {
			t.Fatalf("%s: len %d, want %d", name, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s[%d] = %v, want %v", name, i, got[i], want[i])
			}
		}
	}

	check("Times", h.Times(), []float64{0, 0.01})
	check("Thetas", h.Thetas(), []float64{0.1, 0.2})
	check("Omegas", h.Omegas(), []float64{1, 2})
	check("Forces", h.Forces(), []float64{10, 20})
	check("Lengths", h.Lengths(), []float64{1.2, 1.1})
	check("Activations", h.Activations(), []float64{0.5, 0})
}

func TestTimeHistoryCloneIndependent(t *testing.T) {
	h := TimeHistory{{Theta: 1}}
	c := h.Clone()
	c[0].Theta = 99
	if h[0].Theta == 99 {
		t.Error("Clone shares storage with original")
	}

	thetas := h.Thetas()
	thetas[0] = 42
	if h[0].Theta == 42 {
		t.Error("column accessor shares storage with history")
	}
}

func TestMuscleStateValidate(t *testing.T) {
	if err := (MuscleState{Length: 1.2, Activation: 0.5}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (MuscleState{Length: 1.2, Activation: -0.1}).Validate(); err == nil {
		t.Error("expected error for negative activation")
	}
}
