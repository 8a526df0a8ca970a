package activation

import (
	"math"
	"testing"
)

func TestPulse(t *testing.T) {
	p := DefaultPulse()
	steps := 500

	tests := []struct {
		step int
		want float64
	}{
		{0, 0.5},
		{49, 0.5},
		{50, 0.5},
		{51, 0},
		{499, 0},
	}

	for _, tt := range tests {
		if got := p.Next(tt.step, steps, 0.5); got != tt.want {
			t.Errorf("Next(%d) = %v, want %v", tt.step, got, tt.want)
		}
	}
}

func TestPulseFractionalCutoff(t *testing.T) {
	p := DefaultPulse()
	// 505/10 = 50.5: step 50 holds, step 51 relaxes
	if got := p.Next(50, 505, 0.7); got != 0.7 {
		t.Errorf("Next(50) = %v, want 0.7", got)
	}
	if got := p.Next(51, 505, 0.7); got != 0 {
		t.Errorf("Next(51) = %v, want 0", got)
	}
}

func TestStep(t *testing.T) {
	s := Step{Cutoff: 10, Level: 0.2}
	if got := s.Next(9, 100, 1); got != 1 {
		t.Errorf("Next(9) = %v, want 1", got)
	}
	if got := s.Next(10, 100, 1); got != 0.2 {
		t.Errorf("Next(10) = %v, want 0.2", got)
	}
}

func TestConstantAndFunc(t *testing.T) {
	if got := (Constant{}).Next(1000, 10, 0.3); got != 0.3 {
		t.Errorf("Constant.Next = %v, want 0.3", got)
	}

	ramp := Func(func(step, steps int, current float64) float64 {
		return float64(step+1) / float64(steps)
	})
	if got := ramp.Next(4, 10, 0); got != 0.5 {
		t.Errorf("ramp.Next(4) = %v, want 0.5", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.4, 0.4},
		{1, 1},
		{2, 1},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
