package config

import "sort"

// Presets holds named starting points per model. "unit" and "small" are the
// two states the harness probes.
var Presets = map[string]map[string]*Config{
	"pendulum": {
		"unit": preset(func(c *Config) {
			c.InitState = InitStateConfig{Theta: 1.0}
		}),
		"small": preset(func(c *Config) {
			c.Duration = 20.0
			c.InitState = InitStateConfig{Theta: 0.1}
		}),
		"large": preset(func(c *Config) {
			c.Duration = 20.0
			c.InitState = InitStateConfig{Theta: 2.5}
		}),
		"damped": preset(func(c *Config) {
			c.Duration = 30.0
			c.InitState = InitStateConfig{Theta: 1.0}
			c.Params.Damping = 0.2
		}),
	},
}

func preset(apply func(*Config)) *Config {
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, name string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
