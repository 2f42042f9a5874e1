package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultSeed     = 1
)

// Systems and Steppers are the names a config may select.
var (
	Systems  = []string{"pendulum", "cloth", "rotation", "oscillator"}
	Steppers = []string{"euler", "trapezoidal", "rk4"}
	PinModes = []string{string(physics.PinCorners), string(physics.PinTop), string(physics.PinCustom), string(physics.PinNone)}
)

type Config struct {
	System      string            `yaml:"system"`
	Stepper     string            `yaml:"stepper"`
	Dt          float64           `yaml:"dt"`
	Duration    float64           `yaml:"duration"`
	Seed        int64             `yaml:"seed"`
	SampleEvery int               `yaml:"sample_every"`
	Workers     int               `yaml:"workers"`
	Pendulum    PendulumSection   `yaml:"pendulum"`
	Cloth       ClothSection      `yaml:"cloth"`
	Oscillator  OscillatorSection `yaml:"oscillator"`
	Rotation    RotationSection   `yaml:"rotation"`
}

type PendulumSection struct {
	Interior       int        `yaml:"interior"`
	LeftAnchor     [3]float64 `yaml:"left_anchor"`
	RightAnchor    [3]float64 `yaml:"right_anchor"`
	RestLength     float64    `yaml:"rest_length"`
	Stiffness      float64    `yaml:"stiffness"`
	MinMass        float64    `yaml:"min_mass"`
	MaxMass        float64    `yaml:"max_mass"`
	VelocityJitter float64    `yaml:"velocity_jitter"`
	Gravity        float64    `yaml:"gravity"`
	Drag           float64    `yaml:"drag"`
}

// FamilySection is one cloth spring family. A zero rest_length follows the
// lattice spacing.
type FamilySection struct {
	RestLength float64 `yaml:"rest_length"`
	Stiffness  float64 `yaml:"stiffness"`
	Disabled   bool    `yaml:"disabled,omitempty"`
}

type ClothSection struct {
	Rows           int           `yaml:"rows"`
	Cols           int           `yaml:"cols"`
	Spacing        float64       `yaml:"spacing"`
	Origin         [3]float64    `yaml:"origin"`
	MinMass        float64       `yaml:"min_mass"`
	MaxMass        float64       `yaml:"max_mass"`
	Structural     FamilySection `yaml:"structural"`
	Shear          FamilySection `yaml:"shear"`
	Flexion        FamilySection `yaml:"flexion"`
	Pins           string        `yaml:"pins"`
	PinList        [][2]int      `yaml:"pin_list,omitempty"`
	PositionJitter float64       `yaml:"position_jitter"`
	VelocityJitter float64       `yaml:"velocity_jitter"`
	Gravity        float64       `yaml:"gravity"`
	Drag           float64       `yaml:"drag"`
}

type OscillatorSection struct {
	Mass       float64 `yaml:"mass"`
	Stiffness  float64 `yaml:"stiffness"`
	RestLength float64 `yaml:"rest_length"`
	Stretch    float64 `yaml:"stretch"`
	Gravity    float64 `yaml:"gravity"`
	Drag       float64 `yaml:"drag"`
}

type RotationSection struct {
	Start [3]float64 `yaml:"start"`
}

func DefaultConfig() *Config {
	pc := physics.DefaultPendulumConfig()
	cc := physics.DefaultClothConfig()
	oc := physics.DefaultOscillatorConfig()

	return &Config{
		System:      "cloth",
		Stepper:     "rk4",
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		Seed:        DefaultSeed,
		SampleEvery: 1,
		Pendulum: PendulumSection{
			Interior:       pc.Interior,
			LeftAnchor:     pc.LeftAnchor,
			RightAnchor:    pc.RightAnchor,
			RestLength:     pc.RestLength,
			Stiffness:      pc.Stiffness,
			MinMass:        pc.MinMass,
			MaxMass:        pc.MaxMass,
			VelocityJitter: pc.VelocityJitter,
			Gravity:        pc.Gravity,
			Drag:           pc.Drag,
		},
		Cloth: ClothSection{
			Rows:           cc.Rows,
			Cols:           cc.Cols,
			Spacing:        cc.Spacing,
			Origin:         cc.Origin,
			MinMass:        cc.MinMass,
			MaxMass:        cc.MaxMass,
			Structural:     familySection(cc.Structural),
			Shear:          familySection(cc.Shear),
			Flexion:        familySection(cc.Flexion),
			Pins:           string(cc.Pins),
			PositionJitter: cc.PositionJitter,
			VelocityJitter: cc.VelocityJitter,
			Gravity:        cc.Gravity,
			Drag:           cc.Drag,
		},
		Oscillator: OscillatorSection{
			Mass:       oc.Mass,
			Stiffness:  oc.Stiffness,
			RestLength: oc.RestLength,
			Stretch:    oc.Stretch,
			Gravity:    oc.Gravity,
			Drag:       oc.Drag,
		},
		Rotation: RotationSection{Start: [3]float64{1, 0, 0}},
	}
}

func familySection(f physics.SpringFamily) FamilySection {
	return FamilySection{RestLength: f.RestLength, Stiffness: f.Stiffness, Disabled: f.Disabled}
}

func (f FamilySection) family() physics.SpringFamily {
	return physics.SpringFamily{RestLength: f.RestLength, Stiffness: f.Stiffness, Disabled: f.Disabled}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run parameters and the section of the selected system.
// Errors wrap dynamo.ErrParameterBounds.
func (c *Config) Validate() error {
	if !slices.Contains(Systems, c.System) {
		return fmt.Errorf("%w: unknown system %q", dynamo.ErrParameterBounds, c.System)
	}
	if !slices.Contains(Steppers, c.Stepper) {
		return fmt.Errorf("%w: unknown stepper %q", dynamo.ErrParameterBounds, c.Stepper)
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrParameterBounds, c.Dt)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %g", dynamo.ErrParameterBounds, c.Duration)
	}
	if c.Dt > c.Duration {
		return fmt.Errorf("%w: dt %g exceeds duration %g", dynamo.ErrParameterBounds, c.Dt, c.Duration)
	}
	if c.SampleEvery < 0 || c.Workers < 0 {
		return fmt.Errorf("%w: sample_every and workers must not be negative", dynamo.ErrParameterBounds)
	}

	switch c.System {
	case "pendulum":
		p := c.Pendulum
		if p.Interior < 1 {
			return fmt.Errorf("%w: pendulum.interior must be at least 1, got %d", dynamo.ErrParameterBounds, p.Interior)
		}
		if err := checkMasses("pendulum", p.MinMass, p.MaxMass); err != nil {
			return err
		}
		if !(p.RestLength > 0) || !(p.Stiffness > 0) {
			return fmt.Errorf("%w: pendulum rest_length and stiffness must be positive", dynamo.ErrParameterBounds)
		}
	case "cloth":
		cl := c.Cloth
		if cl.Rows < 2 || cl.Cols < 2 {
			return fmt.Errorf("%w: cloth needs at least 2x2 particles, got %dx%d", dynamo.ErrParameterBounds, cl.Rows, cl.Cols)
		}
		if err := checkMasses("cloth", cl.MinMass, cl.MaxMass); err != nil {
			return err
		}
		if cl.Pins != "" && !slices.Contains(PinModes, cl.Pins) {
			return fmt.Errorf("%w: unknown cloth.pins %q", dynamo.ErrParameterBounds, cl.Pins)
		}
		if !(cl.Spacing > 0) {
			return fmt.Errorf("%w: cloth.spacing must be positive, got %g", dynamo.ErrParameterBounds, cl.Spacing)
		}
		families := []struct {
			name string
			f    FamilySection
		}{{"structural", cl.Structural}, {"shear", cl.Shear}, {"flexion", cl.Flexion}}
		for _, fam := range families {
			if !fam.f.Disabled && (fam.f.RestLength < 0 || !(fam.f.Stiffness > 0)) {
				return fmt.Errorf("%w: cloth.%s needs rest_length >= 0 and positive stiffness", dynamo.ErrParameterBounds, fam.name)
			}
		}
	case "oscillator":
		o := c.Oscillator
		if !(o.Mass > 0) || !(o.Stiffness > 0) || !(o.RestLength > 0) {
			return fmt.Errorf("%w: oscillator mass, stiffness and rest_length must be positive", dynamo.ErrParameterBounds)
		}
	}
	return nil
}

func checkMasses(section string, lo, hi float64) error {
	if !(lo > 0) || hi < lo {
		return fmt.Errorf("%w: %s mass range [%g, %g]", dynamo.ErrParameterBounds, section, lo, hi)
	}
	return nil
}

func (c *Config) PendulumConfig() physics.PendulumConfig {
	p := c.Pendulum
	return physics.PendulumConfig{
		Interior:       p.Interior,
		LeftAnchor:     mgl64.Vec3(p.LeftAnchor),
		RightAnchor:    mgl64.Vec3(p.RightAnchor),
		RestLength:     p.RestLength,
		Stiffness:      p.Stiffness,
		MinMass:        p.MinMass,
		MaxMass:        p.MaxMass,
		VelocityJitter: p.VelocityJitter,
		Gravity:        p.Gravity,
		Drag:           p.Drag,
		Workers:        c.Workers,
	}
}

func (c *Config) ClothConfig() physics.ClothConfig {
	cl := c.Cloth
	return physics.ClothConfig{
		Rows:           cl.Rows,
		Cols:           cl.Cols,
		Spacing:        cl.Spacing,
		Origin:         mgl64.Vec3(cl.Origin),
		MinMass:        cl.MinMass,
		MaxMass:        cl.MaxMass,
		Structural:     cl.Structural.family(),
		Shear:          cl.Shear.family(),
		Flexion:        cl.Flexion.family(),
		Pins:           physics.PinMode(cl.Pins),
		PinList:        cl.PinList,
		PositionJitter: cl.PositionJitter,
		VelocityJitter: cl.VelocityJitter,
		Gravity:        cl.Gravity,
		Drag:           cl.Drag,
		Workers:        c.Workers,
	}
}

func (c *Config) OscillatorConfig() physics.OscillatorConfig {
	o := c.Oscillator
	return physics.OscillatorConfig{
		Mass:       o.Mass,
		Stiffness:  o.Stiffness,
		RestLength: o.RestLength,
		Stretch:    o.Stretch,
		Gravity:    o.Gravity,
		Drag:       o.Drag,
	}
}

func (c *Config) RotationStart() mgl64.Vec3 {
	return mgl64.Vec3(c.Rotation.Start)
}

// Steps is the number of ticks the run takes.
func (c *Config) Steps() int {
	if !(c.Dt > 0) {
		return 0
	}
	return int(c.Duration/c.Dt + 0.5)
}
