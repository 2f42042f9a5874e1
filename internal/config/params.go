package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/particlesim/internal/dynamo"
)

// tunables addresses the numeric fields a sweep may vary, by dotted name.
var tunables = map[string]func(*Config) *float64{
	"dt":                         func(c *Config) *float64 { return &c.Dt },
	"duration":                   func(c *Config) *float64 { return &c.Duration },
	"pendulum.stiffness":         func(c *Config) *float64 { return &c.Pendulum.Stiffness },
	"pendulum.rest_length":       func(c *Config) *float64 { return &c.Pendulum.RestLength },
	"pendulum.gravity":           func(c *Config) *float64 { return &c.Pendulum.Gravity },
	"pendulum.drag":              func(c *Config) *float64 { return &c.Pendulum.Drag },
	"cloth.structural.stiffness": func(c *Config) *float64 { return &c.Cloth.Structural.Stiffness },
	"cloth.shear.stiffness":      func(c *Config) *float64 { return &c.Cloth.Shear.Stiffness },
	"cloth.flexion.stiffness":    func(c *Config) *float64 { return &c.Cloth.Flexion.Stiffness },
	"cloth.gravity":              func(c *Config) *float64 { return &c.Cloth.Gravity },
	"cloth.drag":                 func(c *Config) *float64 { return &c.Cloth.Drag },
	"oscillator.mass":            func(c *Config) *float64 { return &c.Oscillator.Mass },
	"oscillator.stiffness":       func(c *Config) *float64 { return &c.Oscillator.Stiffness },
	"oscillator.drag":            func(c *Config) *float64 { return &c.Oscillator.Drag },
}

// Set assigns a tunable parameter by name.
func (c *Config) Set(name string, v float64) error {
	field, ok := tunables[name]
	if !ok {
		return fmt.Errorf("%w: unknown parameter %q", dynamo.ErrParameterBounds, name)
	}
	*field(c) = v
	return nil
}

// Get reads a tunable parameter by name.
func (c *Config) Get(name string) (float64, error) {
	field, ok := tunables[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown parameter %q", dynamo.ErrParameterBounds, name)
	}
	return *field(c), nil
}

// Tunables lists the parameter names accepted by Set, sorted.
func Tunables() []string {
	names := make([]string, 0, len(tunables))
	for name := range tunables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Cloth.PinList != nil {
		out.Cloth.PinList = append([][2]int(nil), c.Cloth.PinList...)
	}
	return &out
}
