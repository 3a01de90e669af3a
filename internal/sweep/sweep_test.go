package sweep_test

import (
	"context"
	"errors"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"gonum.org/v1/gonum/floats"

	"github.com/TeamSunride/SunFireInjectors/internal/flow"
	"github.com/TeamSunride/SunFireInjectors/internal/fluid"
	"github.com/TeamSunride/SunFireInjectors/internal/sweep"
)

var _ = Describe("ParallelFor", func() {
	It("stores results by input position", func() {
		out := make([]int, 100)
		errs := sweep.ParallelFor(context.Background(), 100, 4, func(i int) error {
			out[i] = i * i
			return nil
		})
		Expect(errs).To(HaveLen(100))
		for i := range out {
			Expect(out[i]).To(Equal(i * i))
			Expect(errs[i]).NotTo(HaveOccurred())
		}
	})

	It("keeps each error at its index", func() {
		boom := errors.New("boom")
		errs := sweep.ParallelFor(context.Background(), 10, 3, func(i int) error {
			if i%4 == 1 {
				return boom
			}
			return nil
		})
		for i, err := range errs {
			if i%4 == 1 {
				Expect(err).To(MatchError(boom))
			} else {
				Expect(err).NotTo(HaveOccurred())
			}
		}
	})

	It("starts no samples once the context is done", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var calls int32
		errs := sweep.ParallelFor(ctx, 20, 4, func(i int) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
		Expect(atomic.LoadInt32(&calls)).To(BeZero())
		Expect(errs[7]).To(MatchError(context.Canceled))
	})
})

var _ = Describe("Runner", func() {
	var (
		runner    *sweep.Runner
		hook      *logtest.Hook
		geom      flow.Geometry
		diameters []float64
	)

	BeforeEach(func() {
		var logger *logrus.Logger
		logger, hook = logtest.NewNullLogger()
		runner = sweep.NewRunner(fluid.Default(), "NitrousOxide")
		runner.Log = logger
		runner.Workers = 3
		geom = flow.Geometry{Cd: 0.66, Orifices: 12}
		diameters = floats.Span(make([]float64, 100), 0.1e-3, 2.5e-3)
	})

	Describe("Family", func() {
		temps := []float64{280, 300, 315}

		It("fails fast on the first bad temperature", func() {
			_, err := runner.Family(context.Background(), flow.HEM{}, temps, 20e5, geom, diameters)
			var se *sweep.SampleError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Index).To(Equal(2))
			Expect(err).To(MatchError(fluid.ErrSupercritical))
		})

		It("records skipped temperatures and keeps the rest in order", func() {
			runner.Policy = sweep.SkipFailed
			fam, err := runner.Family(context.Background(), flow.HEM{}, temps, 20e5, geom, diameters)
			Expect(err).NotTo(HaveOccurred())
			Expect(fam.Members).To(HaveLen(2))
			Expect(fam.Members[0].Temperature).To(Equal(280.0))
			Expect(fam.Members[1].Temperature).To(Equal(300.0))
			Expect(fam.Failures).To(HaveLen(1))
			Expect(fam.Failures[0].Index).To(Equal(2))
			Expect(fam.Failures[0].Kind).To(Equal("supercritical"))

			Expect(hook.Entries).To(HaveLen(1))
			Expect(hook.LastEntry().Level).To(Equal(logrus.WarnLevel))
			Expect(hook.LastEntry().Data["index"]).To(Equal(2))
		})

		It("orders curves by supply temperature", func() {
			fam, err := runner.Family(context.Background(), flow.SPI{}, []float64{270, 290}, 20e5, geom, diameters)
			Expect(err).NotTo(HaveOccurred())
			last := len(diameters) - 1
			Expect(fam.Members[1].Curve.MassFlows[last]).To(BeNumerically(">", fam.Members[0].Curve.MassFlows[last]))
		})

		It("does not skip cancellation", func() {
			runner.Policy = sweep.SkipFailed
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := runner.Family(ctx, flow.HEM{}, temps, 20e5, geom, diameters)
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Describe("CriticalEnvelope", func() {
		It("evaluates SPI just below the critical temperature", func() {
			env, err := runner.CriticalEnvelope(20e5, geom, diameters)
			Expect(err).NotTo(HaveOccurred())
			Expect(env.Temperature).To(BeNumerically("~", 309.56, 1e-9))
			Expect(env.Curve.Model).To(Equal("SPI"))
			Expect(env.Curve.Len()).To(Equal(len(diameters)))
			Expect(env.Curve.MassFlows[0]).To(BeNumerically(">", 0))
		})
	})

	Describe("Flux", func() {
		It("marks temperatures below the chamber saturation point as domain failures", func() {
			runner.Policy = sweep.SkipFailed
			series, err := runner.Flux(context.Background(), []float64{250, 293.15}, 20e5)
			Expect(err).NotTo(HaveOccurred())
			Expect(series.Temperatures).To(Equal([]float64{293.15}))
			Expect(series.Flux[0]).To(BeNumerically("~", 22184, 150))
			Expect(series.Failures).To(HaveLen(1))
			Expect(series.Failures[0].Kind).To(Equal("domain"))
		})
	})

	Describe("Design", func() {
		var sc sweep.Scenario

		BeforeEach(func() {
			sc = sweep.Scenario{
				Temperature:     293.15,
				ChamberPressure: 20e5,
				Geometry:        geom,
				Kappa:           1.4,
				Target:          0.5,
				Diameters:       floats.Span(make([]float64, 1000), 0.1e-3, 6e-3),
			}
		})

		It("places the NHNE design between SPI and HEM", func() {
			d, err := runner.Design(context.Background(), sc)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Points).To(HaveLen(3))
			hem, spi, nhne := d.Points[0], d.Points[1], d.Points[2]
			Expect(spi.Diameter).To(BeNumerically("<=", nhne.Diameter))
			Expect(nhne.Diameter).To(BeNumerically("<=", hem.Diameter))
			Expect(nhne.Deviation()).To(BeNumerically("<", 0.01))
		})

		It("uses the Dyer estimate for a saturated supply", func() {
			sc.DyerKappa = true
			d, err := runner.Design(context.Background(), sc)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Kappa).To(Equal(1.0))
		})
	})

	Describe("DesignTable", func() {
		It("solves every cell", func() {
			base := sweep.Scenario{
				ChamberPressure: 20e5,
				Geometry:        geom,
				Kappa:           1,
				Target:          0.5,
				Diameters:       diameters,
			}
			table, err := runner.DesignTable(context.Background(), base, []float64{283.15, 293.15}, []int{6, 12})
			Expect(err).NotTo(HaveOccurred())
			Expect(table.Cells).To(HaveLen(4))
			for _, c := range table.Cells {
				Expect(c.OK).To(BeTrue())
				Expect(c.Points).To(HaveLen(3))
			}
			Expect(table.At(1, 0).Points[0].Diameter).To(BeNumerically(">=", table.At(1, 1).Points[0].Diameter))
		})

		It("skips cells past the critical point", func() {
			runner.Policy = sweep.SkipFailed
			base := sweep.Scenario{ChamberPressure: 20e5, Geometry: geom, Kappa: 1, Target: 0.5, Diameters: diameters}
			table, err := runner.DesignTable(context.Background(), base, []float64{293.15, 320}, []int{12})
			Expect(err).NotTo(HaveOccurred())
			Expect(table.At(0, 0).OK).To(BeTrue())
			Expect(table.At(1, 0).OK).To(BeFalse())
			Expect(table.Failures).To(HaveLen(1))
			Expect(table.Failures[0].Index).To(Equal(1))
		})
	})
})
