package analysis

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

var ErrShortSignal = errors.New("analysis: signal too short")

// PowerSpectrum returns magnitudes of the non-negative frequency bins of the
// mean-removed signal. Bin k corresponds to k/(n*dt) Hz.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := stat.Mean(data, nil)
	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest bin above DC.
// A constant signal reports 0.
func DominantFrequency(data []float64, dt float64) (float64, error) {
	if len(data) < 4 {
		return 0, ErrShortSignal
	}
	if dt <= 0 {
		return 0, errors.New("analysis: dt must be positive")
	}

	ps := PowerSpectrum(data)
	best, bestMag := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > bestMag {
			best, bestMag = k, ps[k]
		}
	}
	if bestMag < 1e-12 {
		return 0, nil
	}
	return float64(best) / (float64(len(data)) * dt), nil
}
