// Package analysis inspects a finished [sim.TimeHistory].
//
//   - [Summarize]: per-channel mean, spread and extrema
//   - [DominantFrequency]: strongest non-DC component of a signal
//   - [NewPhasePortrait]: joint angle against angular velocity
//   - [Crossings]: upward threshold crossings, interpolated in time
//
// A history that oscillates before settling against a limit shows up as a
// non-zero dominant frequency in theta:
//
//	f, _ := analysis.DominantFrequency(history.Thetas(), cfg.Dt)
package analysis
