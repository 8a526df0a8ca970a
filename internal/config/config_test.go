package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/musclesim/internal/dynamo"
	"github.com/san-kum/musclesim/internal/muscle"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0.01, cfg.Dt)
	assert.Equal(t, 5.0, cfg.Duration)
	assert.Equal(t, "pulse", cfg.Activation.Schedule)
	assert.Equal(t, muscle.DefaultParams(), cfg.MuscleParams())
	assert.InDelta(t, 4*math.Pi/9, cfg.Joint.ThetaMax, 1e-15)
	assert.Equal(t, 9.83, cfg.Joint.Gravity)
	assert.Equal(t, 500, cfg.SimConfig().Steps())
}

func TestInitialStates(t *testing.T) {
	m0, j0 := DefaultConfig().InitialStates()

	assert.Equal(t, 1.2, m0.Length)
	assert.Equal(t, 0.0, m0.Velocity)
	assert.Equal(t, 0.5, m0.Activation)
	assert.Equal(t, math.Pi/10, j0.Theta)
	assert.Equal(t, 0.0, j0.Omega)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Joint.Inertia = 12.5
	cfg.Activation = ActivationConfig{Schedule: "step", Cutoff: 40, Level: 0.1}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("duration: 2.5\njoint:\n  inertia: 8\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.Duration)
	assert.Equal(t, 8.0, cfg.Joint.Inertia)
	assert.Equal(t, 0.5, cfg.Joint.LinkLength)
	assert.Equal(t, 0.01, cfg.Dt)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dt: [1, 2"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("light_limb")
	require.NotNil(t, cfg)
	assert.Equal(t, 5.0, cfg.Joint.Inertia)

	// presets must not leak into each other or the defaults
	assert.Equal(t, 20.0, GetPreset("reference").Joint.Inertia)
	assert.Equal(t, 20.0, DefaultConfig().Joint.Inertia)
}

func TestGetPreset_NotFound(t *testing.T) {
	assert.Nil(t, GetPreset("nonexistent"))
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	assert.Contains(t, presets, "reference")
	assert.Len(t, presets, len(Presets))
	assert.IsIncreasing(t, presets)
}

func TestActivationConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Activation.Validate())
	assert.NoError(t, ActivationConfig{Schedule: "pulse", Fraction: 0}.Validate())

	for _, a := range []ActivationConfig{
		{Schedule: "pulse", Fraction: -0.5},
		{Schedule: "pulse", Fraction: math.NaN()},
		{Schedule: "step", Cutoff: -3},
		{Schedule: "step", Level: -0.1},
	} {
		assert.ErrorIs(t, a.Validate(), dynamo.ErrInvalidParameter, "%+v", a)
	}
}

func TestPresetsKeepPulseFraction(t *testing.T) {
	for _, name := range ListPresets() {
		assert.Equal(t, DefaultPulseFrac, GetPreset(name).Activation.Fraction, name)
	}
}

func TestLoadExplicitZeroFraction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zero.yaml")
	require.NoError(t, os.WriteFile(path, []byte("activation:\n  fraction: 0\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Activation.Fraction)
	assert.Equal(t, DefaultSchedule, cfg.Activation.Schedule)
}
