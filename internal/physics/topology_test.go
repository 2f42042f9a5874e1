package physics_test

import (
	"errors"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/physics"
)

var _ = Describe("ClothGrid", func() {
	newCloth := func(rows, cols int) *physics.ClothGrid {
		cfg := physics.DefaultClothConfig()
		cfg.Rows, cfg.Cols = rows, cols
		cloth, err := physics.NewClothGrid(cfg, rand.New(rand.NewSource(1)))
		Expect(err).NotTo(HaveOccurred())
		return cloth
	}

	DescribeTable("spring families",
		func(h, w int) {
			cloth := newCloth(h, w)

			Expect(cloth.NumParticles()).To(Equal(h * w))
			Expect(cloth.CountSprings(physics.Structural)).To(Equal(h*(w-1) + (h-1)*w))
			Expect(cloth.CountSprings(physics.Shear)).To(Equal(2 * (h - 1) * (w - 1)))
			Expect(cloth.CountSprings(physics.Flexion)).To(Equal(h*(w-2) + (h-2)*w))
		},
		Entry("2x2", 2, 2),
		Entry("3x5", 3, 5),
		Entry("8x8", 8, 8),
		Entry("10x4", 10, 4),
	)

	It("keeps every endpoint inside the lattice", func() {
		h, w := 7, 9
		cloth := newCloth(h, w)
		for _, sp := range cloth.Springs() {
			Expect(sp.A).To(BeNumerically(">=", 0))
			Expect(sp.A).To(BeNumerically("<", h*w))
			Expect(sp.B).To(BeNumerically(">=", 0))
			Expect(sp.B).To(BeNumerically("<", h*w))
		}
	})

	It("uses the configured rest lengths per family", func() {
		cfg := physics.DefaultClothConfig()
		cloth := newCloth(cfg.Rows, cfg.Cols)
		for _, sp := range cloth.Springs() {
			switch sp.Kind {
			case physics.Structural:
				Expect(sp.RestLength).To(Equal(cfg.Spacing))
			case physics.Shear:
				Expect(sp.RestLength).To(BeNumerically("~", 1.41421356, 1e-6))
			case physics.Flexion:
				Expect(sp.RestLength).To(Equal(cfg.Flexion.RestLength))
			}
		}
	})

	It("derives structural and shear rest lengths from the spacing", func() {
		cfg := physics.DefaultClothConfig()
		cfg.Rows, cfg.Cols = 4, 4
		cfg.Spacing = 0.5
		cfg.Flexion.Disabled = true
		cfg.Gravity = 0
		cloth, err := physics.NewClothGrid(cfg, rand.New(rand.NewSource(1)))
		Expect(err).NotTo(HaveOccurred())

		for _, sp := range cloth.Springs() {
			switch sp.Kind {
			case physics.Structural:
				Expect(sp.RestLength).To(Equal(0.5))
			case physics.Shear:
				Expect(sp.RestLength).To(BeNumerically("~", 0.5*1.41421356, 1e-6))
			}
		}

		// a lattice at its natural lengths starts at rest
		deriv := cloth.EvalF(cloth.State())
		for i := 0; i < cloth.NumParticles(); i++ {
			Expect(deriv[2*i+1].Len()).To(BeNumerically("<", 1e-12))
		}

		cfg.Structural.RestLength = 0.7
		cloth, err = physics.NewClothGrid(cfg, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(cloth.Springs()[0].RestLength).To(Equal(0.7))

		cfg.Spacing = 0
		_, err = physics.NewClothGrid(cfg, nil)
		Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
	})

	It("pins the four corners by default", func() {
		cloth := newCloth(4, 6)
		pinned := map[int]bool{}
		for i, p := range cloth.Particles() {
			if p.Pinned() {
				pinned[i] = true
			}
		}
		Expect(pinned).To(HaveLen(4))
		Expect(pinned).To(HaveKey(cloth.Index(0, 0)))
		Expect(pinned).To(HaveKey(cloth.Index(0, 5)))
		Expect(pinned).To(HaveKey(cloth.Index(3, 0)))
		Expect(pinned).To(HaveKey(cloth.Index(3, 5)))
	})

	It("supports top and custom pin sets", func() {
		cfg := physics.DefaultClothConfig()
		cfg.Pins = physics.PinTop
		cloth, err := physics.NewClothGrid(cfg, nil)
		Expect(err).NotTo(HaveOccurred())
		count := 0
		for _, p := range cloth.Particles() {
			if p.Pinned() {
				count++
			}
		}
		Expect(count).To(Equal(2))

		cfg.Pins = physics.PinCustom
		cfg.PinList = [][2]int{{0, 3}}
		cloth, err = physics.NewClothGrid(cfg, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(cloth.Particles()[cloth.Index(0, 3)].Pinned()).To(BeTrue())

		cfg.PinList = [][2]int{{cfg.Rows, 0}}
		_, err = physics.NewClothGrid(cfg, nil)
		Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
	})

	It("rejects lattices smaller than 2x2", func() {
		cfg := physics.DefaultClothConfig()
		cfg.Rows = 1
		_, err := physics.NewClothGrid(cfg, nil)
		Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
	})

	It("keeps pinned derivatives at zero while the rest falls", func() {
		cloth := newCloth(5, 5)
		deriv := cloth.EvalF(cloth.State())
		for i, p := range cloth.Particles() {
			if p.Pinned() {
				Expect(deriv[2*i]).To(Equal(mgl64.Vec3{}))
				Expect(deriv[2*i+1]).To(Equal(mgl64.Vec3{}))
			}
		}
		Expect(deriv.IsValid()).To(BeTrue())
	})
})

var _ = Describe("PendulumChain", func() {
	It("builds a path graph with pinned ends", func() {
		cfg := physics.DefaultPendulumConfig()
		chain, err := physics.NewPendulumChain(cfg, rand.New(rand.NewSource(42)))
		Expect(err).NotTo(HaveOccurred())

		n := cfg.Interior + 2
		Expect(chain.NumParticles()).To(Equal(n))

		springs := chain.Springs()
		Expect(springs).To(HaveLen(n - 1))
		for i, sp := range springs {
			Expect(sp.A).To(Equal(i))
			Expect(sp.B).To(Equal(i + 1))
		}

		particles := chain.Particles()
		Expect(particles[0].Pinned()).To(BeTrue())
		Expect(particles[n-1].Pinned()).To(BeTrue())
		for _, p := range particles[1 : n-1] {
			Expect(p.Mass).To(BeNumerically(">=", cfg.MinMass))
			Expect(p.Mass).To(BeNumerically("<=", cfg.MaxMass))
		}
	})

	It("is reproducible for a fixed seed", func() {
		a, err := physics.NewPendulumChain(physics.DefaultPendulumConfig(), rand.New(rand.NewSource(9)))
		Expect(err).NotTo(HaveOccurred())
		b, err := physics.NewPendulumChain(physics.DefaultPendulumConfig(), rand.New(rand.NewSource(9)))
		Expect(err).NotTo(HaveOccurred())
		Expect(a.State()).To(Equal(b.State()))
		Expect(a.Particles()).To(Equal(b.Particles()))
	})

	It("rejects an empty chain and an inverted mass range", func() {
		cfg := physics.DefaultPendulumConfig()
		cfg.Interior = 0
		_, err := physics.NewPendulumChain(cfg, nil)
		Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())

		cfg = physics.DefaultPendulumConfig()
		cfg.MinMass, cfg.MaxMass = 2, 1
		_, err = physics.NewPendulumChain(cfg, nil)
		Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
	})
})
