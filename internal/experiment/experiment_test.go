package experiment_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/experiment"
	"github.com/san-kum/particlesim/internal/physics"
)

var _ = Describe("Registry", func() {
	var reg *experiment.Registry

	BeforeEach(func() {
		reg = experiment.NewRegistry()
	})

	It("knows every configurable system and stepper", func() {
		Expect(reg.ListSystems()).To(ConsistOf(config.Systems))
		Expect(reg.ListSteppers()).To(ConsistOf(config.Steppers))
	})

	DescribeTable("builds systems",
		func(system string, particles int) {
			cfg := config.DefaultConfig()
			cfg.System = system
			sys, err := reg.GetSystem(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(sys.NumParticles()).To(Equal(particles))
			Expect(sys.State()).To(HaveLen(2 * particles))
		},
		Entry("pendulum", "pendulum", physics.DefaultChainInterior+2),
		Entry("cloth", "cloth", physics.DefaultClothSize*physics.DefaultClothSize),
		Entry("oscillator", "oscillator", 2),
		Entry("rotation", "rotation", 1),
	)

	It("builds identical systems from the same seed", func() {
		cfg := config.DefaultConfig()
		cfg.System = "pendulum"

		a, err := reg.Factory(cfg)()
		Expect(err).NotTo(HaveOccurred())
		b, err := reg.Factory(cfg)()
		Expect(err).NotTo(HaveOccurred())
		Expect(a.State()).To(Equal(b.State()))

		cfg.Seed = 99
		c, err := reg.GetSystem(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.State()).NotTo(Equal(a.State()))
	})

	It("rejects unknown names", func() {
		cfg := config.DefaultConfig()
		cfg.System = "lorenz"
		_, err := reg.GetSystem(cfg)
		Expect(err).To(MatchError(ContainSubstring("unknown system")))

		_, err = reg.GetStepper("verlet")
		Expect(err).To(MatchError(ContainSubstring("unknown stepper")))
	})

	It("propagates construction errors", func() {
		cfg := config.DefaultConfig()
		cfg.Cloth.Pins = "custom"
		cfg.Cloth.PinList = [][2]int{{50, 50}}
		_, err := reg.GetSystem(cfg)
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})
})

var _ = Describe("Experiment", func() {
	It("refuses to run before setup", func() {
		exp := experiment.New(config.DefaultConfig(), nil)
		_, err := exp.Run(context.Background())
		Expect(err).To(HaveOccurred())
	})

	It("fails setup on an invalid config", func() {
		cfg := config.DefaultConfig()
		cfg.Dt = 0
		err := experiment.New(cfg, nil).Setup()
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})

	It("runs a preset with its default metrics", func() {
		cfg := config.GetPreset("oscillator", "damped")
		cfg.Duration = 1

		exp := experiment.New(cfg, nil)
		Expect(exp.Setup()).To(Succeed())
		Expect(exp.System()).NotTo(BeNil())

		res, err := exp.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(100))
		Expect(res.Errors).To(BeEmpty())
		Expect(res.Metrics).To(HaveKey("energy_drift"))
		Expect(res.Metrics).To(HaveKey("max_stretch"))
		Expect(res.Metrics["stability"]).To(Equal(1.0))
	})

	It("keeps the cloth's pinned corners in place", func() {
		cfg := config.DefaultConfig()
		cfg.Duration = 0.5

		exp := experiment.New(cfg, nil)
		Expect(exp.Setup()).To(Succeed())
		start := exp.System().State()

		res, err := exp.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		final := res.Final()
		last := cfg.Cloth.Rows*cfg.Cloth.Cols - 1
		for _, k := range []int{0, cfg.Cloth.Cols - 1, last - cfg.Cloth.Cols + 1, last} {
			Expect(final[k]).To(Equal(start.Position(k)))
		}
	})

	It("compares steppers on independent instances", func() {
		cfg := config.GetPreset("oscillator", "undamped")
		cfg.Duration = 5

		results, err := experiment.New(cfg, nil).Compare(context.Background(), []string{"euler", "rk4"})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].Stepper).To(Equal("euler"))
		Expect(results[1].Stepper).To(Equal("rk4"))
		Expect(results[1].EnergyDrift).To(BeNumerically("<", results[0].EnergyDrift))

		_, err = experiment.New(cfg, nil).Compare(context.Background(), []string{"rk45"})
		Expect(err).To(HaveOccurred())
	})
})
