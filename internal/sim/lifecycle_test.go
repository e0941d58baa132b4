package sim

import (
	"context"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/bhsim/internal/dynamo"
	"github.com/san-kum/bhsim/internal/particles"
)

var _ = Describe("Simulator lifecycle", func() {
	var (
		ctx   context.Context
		sim   *Simulator
		store *particles.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		p, st := twoBody(GinkgoT())
		store = st
		var err error
		sim, err = New(p, store)
		Expect(err).NotTo(HaveOccurred())
	})

	It("starts initialized at time zero", func() {
		Expect(sim.State()).To(Equal(Initialized))
		Expect(sim.Time()).To(BeZero())
		Expect(sim.Snapshot().Positions).To(Equal([]mgl64.Vec2{{0, 0}, {1, 0}}))
	})

	It("moves to running after a step and never back", func() {
		_, err := sim.Step(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(sim.State()).To(Equal(Running))

		_, err = sim.Run(ctx, 3, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(sim.State()).To(Equal(Running))
		Expect(sim.Steps()).To(Equal(4))
		Expect(sim.Time()).To(BeNumerically("~", 0.04, 1e-12))
	})

	It("hands out snapshots that cannot corrupt the simulation", func() {
		snap, err := sim.Step(ctx)
		Expect(err).NotTo(HaveOccurred())
		before := sim.Snapshot()

		snap.Positions[0] = mgl64.Vec2{1e9, 1e9}
		snap.Velocities[1] = mgl64.Vec2{math.NaN(), 0}
		snap.Masses[0] = -1

		Expect(sim.Snapshot()).To(Equal(before))
		_, err = sim.Step(ctx)
		Expect(err).NotTo(HaveOccurred())
	})

	When("accelerations blow up", func() {
		BeforeEach(func() {
			p := dynamo.DefaultParams(2)
			p.Softening = 0
			p.Dt = 1
			st, err := particles.New(
				[]mgl64.Vec2{{0, 0}, {1e-150, 0}},
				make([]mgl64.Vec2, 2),
				[]float64{1, 1},
			)
			Expect(err).NotTo(HaveOccurred())
			sim, err = New(p, st)
			Expect(err).NotTo(HaveOccurred())
		})

		It("surfaces NumericalInstability and halts", func() {
			_, err := sim.Step(ctx)
			Expect(err).To(MatchError(dynamo.ErrNumericalInstability))

			var simErr *dynamo.SimulationError
			Expect(err).To(BeAssignableToTypeOf(simErr))
			Expect(sim.State()).To(Equal(Halted))
			Expect(sim.Steps()).To(BeZero())

			_, err = sim.Step(ctx)
			Expect(err).To(MatchError(dynamo.ErrHalted))
			Expect(err).To(MatchError(dynamo.ErrNumericalInstability))
		})

		It("leaves the last committed state intact", func() {
			_, _ = sim.Step(ctx)
			Expect(sim.Snapshot().Positions).To(Equal([]mgl64.Vec2{{0, 0}, {1e-150, 0}}))
		})
	})

	When("a position is not finite", func() {
		BeforeEach(func() {
			st, err := particles.New(
				[]mgl64.Vec2{{0, 0}, {math.NaN(), 1}, {2, 2}},
				make([]mgl64.Vec2, 3),
				[]float64{1, 1, 1},
			)
			Expect(err).NotTo(HaveOccurred())
			sim, err = New(dynamo.DefaultParams(3), st)
			Expect(err).NotTo(HaveOccurred())
		})

		It("surfaces InvalidGeometry and halts before time advances", func() {
			_, err := sim.Step(ctx)
			Expect(err).To(MatchError(dynamo.ErrInvalidGeometry))

			var simErr *dynamo.SimulationError
			Expect(err).To(BeAssignableToTypeOf(simErr))
			Expect(sim.State()).To(Equal(Halted))
			Expect(sim.Steps()).To(BeZero())
			Expect(sim.Time()).To(BeZero())

			_, err = sim.Step(ctx)
			Expect(err).To(MatchError(dynamo.ErrHalted))
			Expect(err).To(MatchError(dynamo.ErrInvalidGeometry))
		})
	})

	It("runs independent simulations concurrently", func() {
		ens := NewEnsemble(func(run int) (*Simulator, error) {
			p, st := twoBody(GinkgoT())
			p.Dt = 0.01 * float64(run+1)
			return New(p, st)
		}, 3)

		snaps, err := ens.Run(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(snaps).To(HaveLen(3))
		for i, snap := range snaps {
			Expect(snap.Step).To(Equal(10))
			Expect(snap.Time).To(BeNumerically("~", 0.1*float64(i+1), 1e-12))
		}
	})
})
