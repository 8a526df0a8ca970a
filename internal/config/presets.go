package config

import "sort"

// Presets are named variations on DefaultConfig.
var Presets = map[string]func(*Config){
	"reference": func(c *Config) {},
	"sustained": func(c *Config) {
		c.Activation.Schedule = "constant"
	},
	"light_limb": func(c *Config) {
		c.Joint.Inertia = 5.0
	},
	"weak": func(c *Config) {
		c.InitState.Activation = 0.2
		c.Duration = 3.0
	},
	"tetanic": func(c *Config) {
		c.InitState.Activation = 1.0
		c.Activation.Schedule = "step"
		c.Activation.Cutoff = 200
		c.Activation.Level = 0
	},
	"hanging": func(c *Config) {
		c.InitState.Theta = 0
		c.InitState.Activation = 0
		c.Activation.Schedule = "constant"
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
