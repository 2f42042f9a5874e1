package physics

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

const (
	DefaultClothSize = 8
	DefaultClothDrag = 3.0
)

// PinMode selects which lattice particles are pinned.
type PinMode string

const (
	PinCorners PinMode = "corners"
	PinTop     PinMode = "top"
	PinCustom  PinMode = "custom"
	PinNone    PinMode = "none"
)

// SpringFamily parameterizes one of the three cloth spring families. A zero
// RestLength means the family's natural length on the lattice: Spacing for
// structural, Spacing*√2 for shear, 2*Spacing for flexion.
type SpringFamily struct {
	RestLength float64
	Stiffness  float64
	Disabled   bool
}

type ClothConfig struct {
	Rows, Cols     int
	Spacing        float64
	Origin         mgl64.Vec3 // position of particle (0, 0); rows grow along -y
	MinMass        float64
	MaxMass        float64
	Structural     SpringFamily
	Shear          SpringFamily
	Flexion        SpringFamily
	Pins           PinMode
	PinList        [][2]int // used with PinCustom, as (row, col)
	PositionJitter float64
	VelocityJitter float64
	Gravity        float64
	Drag           float64
	Workers        int
}

func DefaultClothConfig() ClothConfig {
	return ClothConfig{
		Rows:       DefaultClothSize,
		Cols:       DefaultClothSize,
		Spacing:    1.0,
		Origin:     mgl64.Vec3{-3.5, 4, 0},
		MinMass:    DefaultMinMass,
		MaxMass:    DefaultMaxMass,
		Structural: SpringFamily{Stiffness: 3},
		Shear:      SpringFamily{Stiffness: 1},
		Flexion:    SpringFamily{RestLength: 0.6, Stiffness: 1},
		Pins:       PinCorners,
		Gravity:    DefaultGravity,
		Drag:       DefaultClothDrag,
	}
}

// ClothGrid is a Rows x Cols lattice of point masses connected by structural,
// shear and flexion springs. Particle (i, j) has index i*Cols + j.
type ClothGrid struct {
	*SpringSystem
	cfg ClothConfig
}

func NewClothGrid(cfg ClothConfig, rng *rand.Rand) (*ClothGrid, error) {
	if cfg.Rows < 2 || cfg.Cols < 2 {
		return nil, fmt.Errorf("%w: cloth needs at least 2x2 particles, got %dx%d", dynamo.ErrParameterBounds, cfg.Rows, cfg.Cols)
	}
	if !(cfg.Spacing > 0) {
		return nil, fmt.Errorf("%w: cloth spacing must be positive, got %g", dynamo.ErrParameterBounds, cfg.Spacing)
	}
	if !(cfg.MinMass > 0) || cfg.MaxMass < cfg.MinMass {
		return nil, fmt.Errorf("%w: mass range [%g, %g]", dynamo.ErrParameterBounds, cfg.MinMass, cfg.MaxMass)
	}
	pins, err := clothPins(cfg)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	particles := make([]Particle, cfg.Rows*cfg.Cols)
	for i := 0; i < cfg.Rows; i++ {
		for j := 0; j < cfg.Cols; j++ {
			jitter := mgl64.Vec3{
				uniform(rng, -cfg.PositionJitter, cfg.PositionJitter),
				uniform(rng, -cfg.PositionJitter, cfg.PositionJitter),
				0,
			}
			p := Particle{
				Position: cfg.Origin.Add(mgl64.Vec3{float64(j) * cfg.Spacing, -float64(i) * cfg.Spacing, 0}).Add(jitter),
				Velocity: mgl64.Vec3{0, uniform(rng, -cfg.VelocityJitter, 0), 0},
				Mass:     uniform(rng, cfg.MinMass, cfg.MaxMass),
			}
			particles[i*cfg.Cols+j] = p
		}
	}
	for _, rc := range pins {
		k := rc[0]*cfg.Cols + rc[1]
		particles[k].Mass = 0
		particles[k].Velocity = mgl64.Vec3{}
	}

	sys, err := NewSpringSystem(particles, clothSprings(cfg), Params{
		Gravity: cfg.Gravity,
		Drag:    cfg.Drag,
		Workers: cfg.Workers,
	})
	if err != nil {
		return nil, err
	}
	return &ClothGrid{SpringSystem: sys, cfg: cfg}, nil
}

func (c *ClothGrid) Config() ClothConfig { return c.cfg }

func (c *ClothGrid) Rows() int { return c.cfg.Rows }

func (c *ClothGrid) Cols() int { return c.cfg.Cols }

func (c *ClothGrid) Index(i, j int) int { return i*c.cfg.Cols + j }

// CountSprings returns the number of springs of the given kind.
func (c *ClothGrid) CountSprings(kind SpringKind) int {
	n := 0
	for _, sp := range c.springs {
		if sp.Kind == kind {
			n++
		}
	}
	return n
}

func clothSprings(cfg ClothConfig) []Spring {
	h, w := cfg.Rows, cfg.Cols
	idx := func(i, j int) int { return i*w + j }
	inBounds := func(i, j int) bool { return i >= 0 && i < h && j >= 0 && j < w }

	var springs []Spring
	link := func(fam SpringFamily, kind SpringKind, i, j, ti, tj int) {
		if fam.Disabled || !inBounds(ti, tj) {
			return
		}
		rest := fam.RestLength
		if rest == 0 {
			rest = naturalLength(kind, cfg.Spacing)
		}
		springs = append(springs, Spring{
			A:          idx(i, j),
			B:          idx(ti, tj),
			RestLength: rest,
			Stiffness:  fam.Stiffness,
			Kind:       kind,
		})
	}

	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			link(cfg.Structural, Structural, i, j, i, j+1)
			link(cfg.Structural, Structural, i, j, i+1, j)

			link(cfg.Shear, Shear, i, j, i+1, j+1)
			link(cfg.Shear, Shear, i, j, i+1, j-1)

			link(cfg.Flexion, Flexion, i, j, i, j+2)
			link(cfg.Flexion, Flexion, i, j, i+2, j)
		}
	}
	return springs
}

func naturalLength(kind SpringKind, spacing float64) float64 {
	switch kind {
	case Shear:
		return spacing * math.Sqrt2
	case Flexion:
		return 2 * spacing
	default:
		return spacing
	}
}

func clothPins(cfg ClothConfig) ([][2]int, error) {
	last, lastCol := cfg.Rows-1, cfg.Cols-1
	switch cfg.Pins {
	case PinCorners, "":
		return [][2]int{{0, 0}, {0, lastCol}, {last, 0}, {last, lastCol}}, nil
	case PinTop:
		return [][2]int{{0, 0}, {0, lastCol}}, nil
	case PinNone:
		return nil, nil
	case PinCustom:
		for _, rc := range cfg.PinList {
			if rc[0] < 0 || rc[0] >= cfg.Rows || rc[1] < 0 || rc[1] >= cfg.Cols {
				return nil, fmt.Errorf("%w: pin (%d, %d) outside %dx%d cloth", dynamo.ErrParameterBounds, rc[0], rc[1], cfg.Rows, cfg.Cols)
			}
		}
		return cfg.PinList, nil
	default:
		return nil, fmt.Errorf("%w: unknown pin mode %q", dynamo.ErrParameterBounds, cfg.Pins)
	}
}
