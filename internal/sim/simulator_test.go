package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/musclesim/internal/activation"
	"github.com/san-kum/musclesim/internal/dynamo"
	"github.com/san-kum/musclesim/internal/muscle"
	"github.com/san-kum/musclesim/internal/sim"
)

func referenceStates() (sim.MuscleState, sim.JointState) {
	return sim.MuscleState{Length: 1.2, Activation: 0.5}, sim.JointState{Theta: math.Pi / 10}
}

var _ = Describe("Simulator", func() {
	var (
		ctx    context.Context
		cfg    sim.Config
		params muscle.Params
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = sim.DefaultConfig()
		params = muscle.DefaultParams()
	})

	Describe("reference scenario", func() {
		var history sim.TimeHistory

		BeforeEach(func() {
			m0, j0 := referenceStates()
			var err error
			history, err = sim.RunSimulation(ctx, cfg, params, m0, j0)
			Expect(err).NotTo(HaveOccurred())
		})

		It("records one sample per step", func() {
			Expect(cfg.Steps()).To(Equal(500))
			Expect(history).To(HaveLen(500))
		})

		It("stamps samples with i*dt", func() {
			Expect(history[0].Time).To(Equal(0.0))
			Expect(history[10].Time).To(Equal(0.10))
		})

		It("keeps theta within the joint limits", func() {
			for i, s := range history {
				Expect(cfg.Limits.Contains(s.Theta)).To(BeTrue(), "step %d theta=%v", i, s.Theta)
			}
		})

		It("uses the initial state for the first force", func() {
			Expect(history[0].Force).To(BeNumerically("~", 738.605814759156, 1e-9))
			Expect(history[0].Activation).To(Equal(0.5))
		})

		It("matches the reference trajectory", func() {
			Expect(history[0].Theta).To(BeNumerically("~", 0.31484880048854874, 1e-12))
			Expect(history[0].Omega).To(BeNumerically("~", 0.0689535129569411, 1e-12))
			Expect(history[0].Length).To(BeNumerically("~", 1.1996552324352152, 1e-12))
			Expect(history[1].Force).To(BeNumerically("~", 1029.9736603805036, 1e-6))
			Expect(history[10].Theta).To(BeNumerically("~", 0.3784724150113019, 1e-9))
			Expect(history[10].Force).To(BeNumerically("~", 975.2681531746676, 1e-6))
		})

		It("reaches the upper limit and stops inelastically", func() {
			Expect(history[47].Theta).To(Equal(cfg.Limits.Max))
			Expect(history[47].Omega).To(Equal(0.0))
			Expect(history[47].AtLimit).To(BeTrue())
			Expect(history[46].Theta).To(BeNumerically("<", cfg.Limits.Max))
		})

		It("holds activation through step 51 and relaxes after", func() {
			Expect(history[51].Activation).To(Equal(0.5))
			Expect(history[52].Activation).To(Equal(0.0))
			for _, s := range history[52:] {
				Expect(s.Activation).To(Equal(0.0))
			}
		})

		It("settles on the lower limit", func() {
			last := history[len(history)-1]
			Expect(last.Time).To(BeNumerically("~", 4.99, 1e-12))
			Expect(last.Theta).To(Equal(cfg.Limits.Min))
			Expect(last.Omega).To(Equal(0.0))
			Expect(last.Force).To(Equal(0.0))
		})

		It("is bit-identical across runs", func() {
			m0, j0 := referenceStates()
			again, err := sim.RunSimulation(ctx, cfg, params, m0, j0)
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(Equal(history))
		})
	})

	Describe("joint-limit clamp", func() {
		It("pins theta to the upper limit regardless of overshoot", func() {
			// One Euler step moves theta by about omega0*dt, so each of
			// these overshoots theta_max from pi/10 on the first step.
			for _, omega0 := range []float64{200, 1e3, 1e6} {
				h, err := sim.RunSimulation(ctx, cfg, params,
					sim.MuscleState{Length: 1.2, Activation: 0.5},
					sim.JointState{Theta: math.Pi / 10, Omega: omega0})
				Expect(err).NotTo(HaveOccurred())
				Expect(math.Pi/10 + omega0*cfg.Dt).To(BeNumerically(">", cfg.Limits.Max))
				Expect(h[0].Theta).To(Equal(cfg.Limits.Max))
				Expect(h[0].Omega).To(Equal(0.0))
				Expect(h[0].AtLimit).To(BeTrue())
			}
		})

		It("pins theta to the lower limit", func() {
			h, err := sim.RunSimulation(ctx, cfg, params,
				sim.MuscleState{Length: 1.2},
				sim.JointState{Theta: 0.1, Omega: -1e4})
			Expect(err).NotTo(HaveOccurred())
			Expect(h[0].Theta).To(Equal(cfg.Limits.Min))
			Expect(h[0].Omega).To(Equal(0.0))
			Expect(h[0].AtLimit).To(BeTrue())
		})
	})

	Describe("construction", func() {
		DescribeTable("rejects invalid parameters",
			func(mutate func(*sim.Config, *muscle.Params)) {
				mutate(&cfg, &params)
				_, err := sim.New(cfg, params, nil)
				Expect(errors.Is(err, dynamo.ErrInvalidParameter)).To(BeTrue(), "got %v", err)
			},
			Entry("zero dt", func(c *sim.Config, p *muscle.Params) { c.Dt = 0 }),
			Entry("negative dt", func(c *sim.Config, p *muscle.Params) { c.Dt = -0.01 }),
			Entry("zero duration", func(c *sim.Config, p *muscle.Params) { c.Duration = 0 }),
			Entry("zero inertia", func(c *sim.Config, p *muscle.Params) { c.Joint.Inertia = 0 }),
			Entry("inverted limits", func(c *sim.Config, p *muscle.Params) { c.Limits.Min, c.Limits.Max = 1, 0 }),
			Entry("zero Vmax", func(c *sim.Config, p *muscle.Params) { p.MaxContractionVelocity = 0 }),
			Entry("zero L0", func(c *sim.Config, p *muscle.Params) { p.OptimalFiberLength = 0 }),
			Entry("negative Fmax", func(c *sim.Config, p *muscle.Params) { p.MaxIsometricForce = -1 }),
		)

		It("rejects activation outside [0, 1] before stepping", func() {
			s, err := sim.New(cfg, params, nil)
			Expect(err).NotTo(HaveOccurred())
			h, err := s.Run(ctx, sim.MuscleState{Length: 1.2, Activation: 1.5}, sim.JointState{})
			Expect(errors.Is(err, dynamo.ErrInvalidParameter)).To(BeTrue())
			Expect(h).To(BeNil())
		})

		It("returns an empty history when duration is shorter than dt", func() {
			cfg.Duration = cfg.Dt / 2
			h, err := sim.RunSimulation(ctx, cfg, params, sim.MuscleState{Length: 1.2}, sim.JointState{})
			Expect(err).NotTo(HaveOccurred())
			Expect(h).To(BeEmpty())
		})
	})

	Describe("schedules", func() {
		It("keeps activation under a constant schedule", func() {
			cfg.Schedule = activation.Constant{}
			m0, j0 := referenceStates()
			h, err := sim.RunSimulation(ctx, cfg, params, m0, j0)
			Expect(err).NotTo(HaveOccurred())
			for _, s := range h {
				Expect(s.Activation).To(Equal(0.5))
			}
		})

		It("clamps schedule output into [0, 1]", func() {
			cfg.Schedule = activation.Func(func(step, steps int, current float64) float64 { return 3 })
			m0, j0 := referenceStates()
			h, err := sim.RunSimulation(ctx, cfg, params, m0, j0)
			Expect(err).NotTo(HaveOccurred())
			Expect(h[1].Activation).To(Equal(1.0))
		})
	})

	Describe("hooks", func() {
		It("feeds every sample to metrics and observers in order", func() {
			s, err := sim.New(cfg, params, nil)
			Expect(err).NotTo(HaveOccurred())

			metric := &countMetric{}
			var seen []float64
			s.AddMetric(metric)
			s.AddObserver(sim.ObserverFunc(func(sample sim.Sample) {
				seen = append(seen, sample.Time)
			}))

			m0, j0 := referenceStates()
			h, err := s.Run(ctx, m0, j0)
			Expect(err).NotTo(HaveOccurred())
			Expect(metric.count).To(Equal(len(h)))
			Expect(s.Metrics()).To(HaveKeyWithValue("count", float64(len(h))))
			Expect(seen).To(Equal(h.Times()))
		})

		It("streams through a channel observer", func() {
			s, err := sim.New(cfg, params, nil)
			Expect(err).NotTo(HaveOccurred())
			obs := sim.NewChannelObserver(cfg.Steps())
			s.AddObserver(obs)

			m0, j0 := referenceStates()
			h, err := s.Run(ctx, m0, j0)
			Expect(err).NotTo(HaveOccurred())
			obs.Close()

			var streamed sim.TimeHistory
			for sample := range obs.C {
				streamed = append(streamed, sample)
			}
			Expect(streamed).To(Equal(h))
		})
	})

	Describe("cancellation", func() {
		It("stops between steps and returns the partial history", func() {
			cctx, cancel := context.WithCancel(ctx)
			s, err := sim.New(cfg, params, nil)
			Expect(err).NotTo(HaveOccurred())
			s.AddObserver(sim.ObserverFunc(func(sample sim.Sample) {
				if sample.Time >= 0.5 {
					cancel()
				}
			}))

			m0, j0 := referenceStates()
			h, err := s.Run(cctx, m0, j0)
			Expect(err).To(MatchError(context.Canceled))
			Expect(h).To(HaveLen(51))

			full, err := sim.RunSimulation(ctx, cfg, params, m0, j0)
			Expect(err).NotTo(HaveOccurred())
			Expect(h).To(Equal(full[:51]))
		})
	})

	Describe("state validation", func() {
		It("stops on a non-finite state", func() {
			cfg.Joint.Gravity = math.MaxFloat64
			m0, j0 := referenceStates()
			_, err := sim.RunSimulation(ctx, cfg, params, m0, j0)
			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
		})
	})

	Describe("Sweep", func() {
		It("returns results in case order matching single runs", func() {
			m0, j0 := referenceStates()
			light := cfg
			light.Joint.Inertia = 5

			cases := []sim.Case{
				{Config: cfg, Params: params, Muscle: m0, Joint: j0},
				{Config: light, Params: params, Muscle: m0, Joint: j0},
			}
			results, err := sim.Sweep(ctx, cases)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))

			for i, c := range cases {
				single, err := sim.RunSimulation(ctx, c.Config, c.Params, c.Muscle, c.Joint)
				Expect(err).NotTo(HaveOccurred())
				Expect(results[i]).To(Equal(single))
			}
		})

		It("fails when any case is invalid", func() {
			m0, j0 := referenceStates()
			bad := cfg
			bad.Dt = 0
			_, err := sim.Sweep(ctx, []sim.Case{
				{Config: cfg, Params: params, Muscle: m0, Joint: j0},
				{Config: bad, Params: params, Muscle: m0, Joint: j0},
			})
			Expect(errors.Is(err, dynamo.ErrInvalidParameter)).To(BeTrue())
		})
	})
})

type countMetric struct {
	count int
}

func (c *countMetric) Name() string       { return "count" }
func (c *countMetric) Observe(sim.Sample) { c.count++ }
func (c *countMetric) Value() float64     { return float64(c.count) }
func (c *countMetric) Reset()             { c.count = 0 }
