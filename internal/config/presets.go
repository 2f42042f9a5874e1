package config

import (
	"slices"
	"sort"
)

// Presets maps system -> preset name -> overrides applied on DefaultConfig.
var Presets = map[string]map[string]func(*Config){
	"cloth": {
		"default": func(c *Config) {},
		"curtain": func(c *Config) { c.Cloth.Pins = "top"; c.Duration = 20 },
		"loose":   func(c *Config) { c.Cloth.Flexion.Disabled = true; c.Cloth.Structural.Stiffness = 1.5 },
		"large": func(c *Config) {
			c.Cloth.Rows, c.Cloth.Cols = 32, 32
			c.Cloth.Origin = [3]float64{-15.5, 16, 0}
			c.Workers = 4
			c.Duration = 5
			c.SampleEvery = 10
		},
	},
	"pendulum": {
		"default": func(c *Config) {},
		"long":    func(c *Config) { c.Pendulum.Interior = 30; c.Duration = 20 },
		"stiff":   func(c *Config) { c.Pendulum.Stiffness = 20; c.Dt = 0.005 },
		"still":   func(c *Config) { c.Pendulum.VelocityJitter = 0 },
	},
	"oscillator": {
		"undamped": func(c *Config) {},
		"damped":   func(c *Config) { c.Oscillator.Drag = 0.8 },
		"critical": func(c *Config) { c.Oscillator.Drag = 4 },
	},
	"rotation": {
		"unit": func(c *Config) { c.Duration = 6.283185307179586 },
		"wide": func(c *Config) { c.Rotation.Start = [3]float64{3, 0, 0}; c.Dt = 0.05; c.Duration = 31.41592653589793 },
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(system, preset string) *Config {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	apply, ok := systemPresets[preset]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.System = system
	apply(cfg)
	return cfg
}

// ListPresets returns the sorted preset names of a system, or nil.
func ListPresets(system string) []string {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(systemPresets))
	for name := range systemPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetSystems lists systems that have presets, in Systems order.
func PresetSystems() []string {
	out := make([]string, 0, len(Presets))
	for _, s := range Systems {
		if _, ok := Presets[s]; ok {
			out = append(out, s)
		}
	}
	return slices.Clip(out)
}
