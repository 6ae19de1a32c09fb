package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rdsim/internal/dynamo"
	"github.com/san-kum/rdsim/internal/grid"
	"github.com/san-kum/rdsim/internal/reaction"
	"github.com/san-kum/rdsim/internal/sim"
)

type countingObserver struct {
	steps  int
	frames []int
}

func (c *countingObserver) OnStep(step int)      { c.steps = step }
func (c *countingObserver) OnFrame(f *sim.Frame) { c.frames = append(c.frames, f.Index) }

type frameCounter struct{ n int }

func (f *frameCounter) Name() string       { return "frames" }
func (f *frameCounter) Observe(*sim.Frame) { f.n++ }
func (f *frameCounter) Value() float64     { return float64(f.n) }
func (f *frameCounter) Reset()             { f.n = 0 }

func smallConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Frames = 5
	return cfg
}

var _ = Describe("Simulator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("produces one frame per StepsPerFrame steps", func() {
		s, err := sim.NewSeeded(32, reaction.DefaultParams(), smallConfig())
		Expect(err).NotTo(HaveOccurred())

		obs := &countingObserver{}
		s.AddObserver(obs)

		res, err := s.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Frames).To(HaveLen(5))
		Expect(res.Steps).To(Equal(200))
		Expect(s.Steps()).To(Equal(200))
		Expect(obs.steps).To(Equal(200))
		Expect(obs.frames).To(Equal([]int{0, 1, 2, 3, 4}))

		for i, f := range res.Frames {
			Expect(f.Index).To(Equal(i))
			Expect(f.Step).To(Equal(40 * (i + 1)))
			Expect(f.N()).To(Equal(32))
		}
	})

	It("reports metric values after a full run", func() {
		s, err := sim.NewSeeded(16, reaction.DefaultParams(), smallConfig())
		Expect(err).NotTo(HaveOccurred())
		s.AddMetric(&frameCounter{})

		res, err := s.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Metrics).To(HaveKeyWithValue("frames", 5.0))
	})

	It("matches a hand-written sync/step loop bit for bit", func() {
		p := reaction.DefaultParams()
		cfg := sim.Config{StepsPerFrame: 3, Frames: 2, Workers: 1}

		s, err := sim.NewSeeded(20, p, cfg)
		Expect(err).NotTo(HaveOccurred())
		res, err := s.Run(ctx)
		Expect(err).NotTo(HaveOccurred())

		u, v, err := reaction.Init(20)
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < 6; i++ {
			grid.ApplyPeriodic(u)
			grid.ApplyPeriodic(v)
			Expect(reaction.Step(u, v, p)).To(Succeed())
		}
		Expect(res.Last().Data.RawMatrix().Data).To(Equal(v.Interior().RawMatrix().Data))
	})

	It("is deterministic across runs and worker counts", func() {
		p := reaction.DefaultParams()
		serialCfg := sim.Config{StepsPerFrame: 10, Frames: 3, Workers: 1}
		parallelCfg := serialCfg
		parallelCfg.Workers = 4

		a, _ := sim.NewSeeded(64, p, serialCfg)
		b, _ := sim.NewSeeded(64, p, serialCfg)
		c, _ := sim.NewSeeded(64, p, parallelCfg)

		ra, err := a.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		rb, err := b.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		rc, err := c.Run(ctx)
		Expect(err).NotTo(HaveOccurred())

		for i := range ra.Frames {
			Expect(rb.Frames[i].Values()).To(Equal(ra.Frames[i].Values()))
			Expect(rc.Frames[i].Values()).To(Equal(ra.Frames[i].Values()))
		}
	})

	It("hands out frames that do not alias the live field", func() {
		s, _ := sim.NewSeeded(16, reaction.DefaultParams(), smallConfig())
		res, err := s.Run(ctx)
		Expect(err).NotTo(HaveOccurred())

		first := res.Frames[0].Values()[0]
		_, v := s.Fields()
		v.Set(1, 1, 42)
		Expect(res.Frames[0].Values()[0]).To(Equal(first))
	})

	Describe("single use", func() {
		It("yields ErrConsumed on a second iteration", func() {
			s, _ := sim.NewSeeded(8, reaction.DefaultParams(), smallConfig())
			_, err := s.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			var errs []error
			for f, err := range s.Frames(ctx) {
				Expect(f).To(BeNil())
				errs = append(errs, err)
			}
			Expect(errs).To(HaveLen(1))
			Expect(errs[0]).To(MatchError(dynamo.ErrConsumed))
		})

		It("stops stepping when the consumer breaks early", func() {
			s, _ := sim.NewSeeded(8, reaction.DefaultParams(), smallConfig())
			for f, err := range s.Frames(ctx) {
				Expect(err).NotTo(HaveOccurred())
				Expect(f.Index).To(Equal(0))
				break
			}
			Expect(s.Steps()).To(Equal(40))
		})
	})

	Describe("preconditions", func() {
		DescribeTable("rejects bad configs before allocating",
			func(cfg sim.Config) {
				s, err := sim.NewSeeded(8, reaction.DefaultParams(), cfg)
				Expect(s).To(BeNil())
				Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
			},
			Entry("zero steps per frame", sim.Config{StepsPerFrame: 0, Frames: 1}),
			Entry("zero frames", sim.Config{StepsPerFrame: 1, Frames: 0}),
			Entry("negative frames", sim.Config{StepsPerFrame: 1, Frames: -2}),
		)

		It("rejects a non-positive grid size", func() {
			_, err := sim.NewSeeded(0, reaction.DefaultParams(), smallConfig())
			Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
		})

		It("rejects invalid parameters", func() {
			p := reaction.DefaultParams()
			p.F = 0
			_, err := sim.NewSeeded(8, p, smallConfig())
			Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
		})

		It("rejects fields of different sizes", func() {
			u, _ := grid.New(8)
			v, _ := grid.New(9)
			_, err := sim.New(u, v, reaction.DefaultParams(), smallConfig())
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
		})

		It("rejects missing fields", func() {
			u, _ := grid.New(8)
			_, err := sim.New(u, nil, reaction.DefaultParams(), smallConfig())
			Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
		})
	})

	Describe("aborts", func() {
		It("stops on a canceled context", func() {
			s, _ := sim.NewSeeded(8, reaction.DefaultParams(), smallConfig())
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			res, err := s.Run(cctx)
			Expect(err).To(MatchError(dynamo.ErrContextCanceled))
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Frames).To(BeEmpty())
			Expect(s.Steps()).To(BeZero())

			var simErr *sim.SimError
			Expect(err).To(BeAssignableToTypeOf(simErr))
		})

		It("flags a blown-up state when validation is on", func() {
			p := reaction.DefaultParams()
			p.Du, p.Dv = 5, 5
			cfg := sim.Config{StepsPerFrame: 50, Frames: 10, Workers: 1, ValidateState: true}

			s, err := sim.NewSeeded(16, p, cfg)
			Expect(err).NotTo(HaveOccurred())
			_, err = s.Run(ctx)
			Expect(err).To(MatchError(dynamo.ErrUnstable))
		})
	})
})

var _ = Describe("Frame", func() {
	frameOf := func(vals ...float64) *sim.Frame {
		n := int(math.Sqrt(float64(len(vals))))
		v, _ := grid.New(n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				v.Set(i+1, j+1, vals[i*n+j])
			}
		}
		return &sim.Frame{Data: v.Interior()}
	}

	It("reports min, max and mean", func() {
		f := frameOf(0, 1, 2, 5)
		lo, hi := f.MinMax()
		Expect(lo).To(Equal(0.0))
		Expect(hi).To(Equal(5.0))
		Expect(f.Mean()).To(Equal(2.0))
	})

	It("skips NaN cells when taking min and max", func() {
		lo, hi := frameOf(0.5, math.NaN(), -1, 2).MinMax()
		Expect(lo).To(Equal(-1.0))
		Expect(hi).To(Equal(2.0))

		lo, hi = frameOf(math.NaN(), math.NaN(), math.NaN(), math.NaN()).MinMax()
		Expect(math.IsNaN(lo)).To(BeTrue())
		Expect(math.IsNaN(hi)).To(BeTrue())
	})

	It("keeps bytes defined on a partly diverged frame", func() {
		Expect(frameOf(0, math.NaN(), 1, 1).Bytes()).To(Equal([]uint8{0, 0, 255, 255}))
	})

	It("normalizes into the requested range", func() {
		f := frameOf(0, 1, 2, 4)
		out := f.Normalize(0, 1)
		Expect(out.RawMatrix().Data).To(Equal([]float64{0, 0.25, 0.5, 1}))
	})

	It("maps a constant frame to the low end", func() {
		f := frameOf(0.3, 0.3, 0.3, 0.3)
		Expect(f.Normalize(-1, 1).RawMatrix().Data).To(Equal([]float64{-1, -1, -1, -1}))
		Expect(f.Bytes()).To(Equal([]uint8{0, 0, 0, 0}))
	})

	It("scales to bytes like an 8-bit image", func() {
		f := frameOf(0, 0.5, 1, 1)
		Expect(f.Bytes()).To(Equal([]uint8{0, 127, 255, 255}))
	})

	It("detects non-finite cells", func() {
		Expect(frameOf(0, 1, 2, 3).IsFinite()).To(BeTrue())
		Expect(frameOf(0, math.NaN(), 2, 3).IsFinite()).To(BeFalse())
		Expect(frameOf(0, math.Inf(1), 2, 3).IsFinite()).To(BeFalse())
	})
})
