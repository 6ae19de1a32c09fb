package reaction_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rdsim/internal/dynamo"
	"github.com/san-kum/rdsim/internal/grid"
	"github.com/san-kum/rdsim/internal/reaction"
)

var _ = Describe("Init", func() {
	It("pads both fields with a halo ring", func() {
		for _, n := range []int{1, 3, 50} {
			u, v, err := reaction.Init(n)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Size()).To(Equal(n + 2))
			Expect(v.Size()).To(Equal(n + 2))
		}
	})

	It("rejects a non-positive resolution", func() {
		u, v, err := reaction.Init(0)
		Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
		Expect(u).To(BeNil())
		Expect(v).To(BeNil())
	})

	It("seeds the centered square for n=100", func() {
		u, v, err := reaction.Init(100)
		Expect(err).NotTo(HaveOccurred())

		lo, hi := reaction.SeedRange(100)
		Expect(lo).To(Equal(41))
		Expect(hi).To(Equal(60))

		for i := 1; i <= 100; i++ {
			for j := 1; j <= 100; j++ {
				x, y := float64(i)/101, float64(j)/101
				inside := x >= 0.4 && x <= 0.6 && y >= 0.4 && y <= 0.6
				if inside {
					Expect(u.At(i, j)).To(Equal(0.5), "U[%d,%d]", i, j)
					Expect(v.At(i, j)).To(Equal(0.25), "V[%d,%d]", i, j)
				} else {
					Expect(u.At(i, j)).To(Equal(1.0), "U[%d,%d]", i, j)
					Expect(v.At(i, j)).To(Equal(0.0), "V[%d,%d]", i, j)
				}
			}
		}
	})

	It("covers a fifth of each axis", func() {
		lo, hi := reaction.SeedRange(300)
		Expect(hi - lo + 1).To(BeNumerically("~", 60, 1))
	})

	It("seeds the single cell of a 1x1 grid", func() {
		u, v, err := reaction.Init(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(u.At(1, 1)).To(Equal(0.5))
		Expect(v.At(1, 1)).To(Equal(0.25))
	})
})

var _ = Describe("Params", func() {
	DescribeTable("validation",
		func(p reaction.Params, ok bool) {
			err := p.Validate()
			if ok {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
			}
		},
		Entry("defaults", reaction.DefaultParams(), true),
		Entry("zero Du", reaction.Params{Du: 0, Dv: 0.05, F: 0.05, K: 0.06}, false),
		Entry("negative Dv", reaction.Params{Du: 0.1, Dv: -0.05, F: 0.05, K: 0.06}, false),
		Entry("zero feed", reaction.Params{Du: 0.1, Dv: 0.05, F: 0, K: 0.06}, false),
		Entry("NaN kill", reaction.Params{Du: 0.1, Dv: 0.05, F: 0.05, K: math.NaN()}, false),
		Entry("negative spacing", reaction.Params{Du: 0.1, Dv: 0.05, F: 0.05, K: 0.06, Spacing: -1}, false),
		Entry("positive spacing", reaction.Params{Du: 0.1, Dv: 0.05, F: 0.05, K: 0.06, Spacing: 0.5}, true),
	)

	It("sets rates by name", func() {
		p := reaction.DefaultParams()
		Expect(p.SetParam("F", 0.03)).To(Succeed())
		Expect(p.SetParam("kill", 0.07)).To(Succeed())
		Expect(p.F).To(Equal(0.03))
		Expect(p.K).To(Equal(0.07))
		Expect(p.SetParam("bogus", 1)).To(MatchError(dynamo.ErrInvalidArgument))
	})
})

var _ = Describe("GrayScott", func() {
	var params reaction.Params

	BeforeEach(func() {
		params = reaction.DefaultParams()
	})

	It("leaves the steady background unchanged", func() {
		u, _ := grid.New(12)
		v, _ := grid.New(12)
		u.Fill(1)
		v.Fill(0)
		uBefore, vBefore := u.Clone(), v.Clone()

		g, err := reaction.New(params)
		Expect(err).NotTo(HaveOccurred())
		grid.ApplyPeriodic(u)
		grid.ApplyPeriodic(v)

		lu, lv := grid.Laplacian(u), grid.Laplacian(v)
		r, c := lu.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				Expect(lu.At(i, j)).To(BeZero())
				Expect(lv.At(i, j)).To(BeZero())
			}
		}

		Expect(g.Step(u, v)).To(Succeed())
		Expect(u.Equal(uBefore)).To(BeTrue())
		Expect(v.Equal(vBefore)).To(BeTrue())
	})

	It("keeps shapes across many steps", func() {
		u, v, _ := reaction.Init(20)
		g, _ := reaction.New(params)
		for i := 0; i < 50; i++ {
			Expect(g.Advance(u, v)).To(Succeed())
		}
		Expect(u.Size()).To(Equal(22))
		Expect(v.Size()).To(Equal(22))
		Expect(u.Finite()).To(BeTrue())
		Expect(v.Finite()).To(BeTrue())
	})

	It("matches the update formula on a single cell", func() {
		u, v, _ := reaction.Init(10)
		grid.ApplyPeriodic(u)
		grid.ApplyPeriodic(v)

		// (5,5) sits on the lower-left edge of the seed square
		i, j := 5, 5
		lap := func(f *grid.Field) float64 {
			return f.At(i-1, j) + f.At(i+1, j) + f.At(i, j-1) + f.At(i, j+1) - 4*f.At(i, j)
		}
		u0, v0 := u.At(i, j), v.At(i, j)
		lu, lv := lap(u), lap(v)
		uvv := u0 * v0 * v0
		wantU := u0 + (params.Du*lu - uvv + params.F*(1-u0))
		wantV := v0 + (params.Dv*lv + uvv - (params.F+params.K)*v0)

		Expect(reaction.Step(u, v, params)).To(Succeed())
		Expect(u.At(i, j)).To(BeNumerically("~", wantU, 1e-12))
		Expect(v.At(i, j)).To(BeNumerically("~", wantV, 1e-12))
	})

	It("uses pre-step values for both fields", func() {
		// a V update computed from an already-updated U would differ
		u, v, _ := reaction.Init(10)
		grid.ApplyPeriodic(u)
		grid.ApplyPeriodic(v)
		i, j := 5, 5
		u0, v0 := u.At(i, j), v.At(i, j)
		lv := v.At(i-1, j) + v.At(i+1, j) + v.At(i, j-1) + v.At(i, j+1) - 4*v0
		wantV := v0 + (params.Dv*lv + u0*v0*v0 - (params.F+params.K)*v0)

		Expect(reaction.Step(u, v, params)).To(Succeed())
		Expect(v.At(i, j)).To(BeNumerically("~", wantV, 1e-12))
	})

	It("is deterministic", func() {
		u1, v1, _ := reaction.Init(32)
		u2, v2 := u1.Clone(), v1.Clone()
		g1, _ := reaction.New(params)
		g2, _ := reaction.New(params)
		for i := 0; i < 25; i++ {
			Expect(g1.Advance(u1, v1)).To(Succeed())
			Expect(g2.Advance(u2, v2)).To(Succeed())
		}
		Expect(u1.Equal(u2)).To(BeTrue())
		Expect(v1.Equal(v2)).To(BeTrue())
	})

	It("produces bit-identical results with row workers", func() {
		u1, v1, _ := reaction.Init(96)
		u2, v2 := u1.Clone(), v1.Clone()
		serial, _ := reaction.New(params)
		parallel, _ := reaction.New(params)
		parallel.WithWorkers(4)
		Expect(parallel.Workers()).To(Equal(4))

		for i := 0; i < 30; i++ {
			Expect(serial.Advance(u1, v1)).To(Succeed())
			Expect(parallel.Advance(u2, v2)).To(Succeed())
		}
		Expect(u1.Equal(u2)).To(BeTrue())
		Expect(v1.Equal(v2)).To(BeTrue())
	})

	It("rejects mismatched fields", func() {
		u, _ := grid.New(4)
		v, _ := grid.New(5)
		g, _ := reaction.New(params)
		Expect(g.Step(u, v)).To(MatchError(dynamo.ErrDimensionMismatch))
		Expect(g.Advance(u, v)).To(MatchError(dynamo.ErrDimensionMismatch))
	})

	It("scales diffusion by the opt-in spacing", func() {
		raw := params
		scaled := params
		scaled.Spacing = 0.5
		// Du/0.25 with spacing 0.5 equals 4*Du without it
		wide := params
		wide.Du, wide.Dv = params.Du*4, params.Dv*4

		u1, v1, _ := reaction.Init(16)
		u2, v2 := u1.Clone(), v1.Clone()
		u3, v3 := u1.Clone(), v1.Clone()
		gs, _ := reaction.New(scaled)
		gw, _ := reaction.New(wide)
		gr, _ := reaction.New(raw)
		Expect(gs.Advance(u1, v1)).To(Succeed())
		Expect(gw.Advance(u2, v2)).To(Succeed())
		Expect(gr.Advance(u3, v3)).To(Succeed())

		Expect(u1.Equal(u2)).To(BeTrue())
		Expect(v1.Equal(v2)).To(BeTrue())
		Expect(u1.Equal(u3)).To(BeFalse())
	})
})
