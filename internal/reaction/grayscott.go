package reaction

import (
	"fmt"

	"github.com/san-kum/rdsim/internal/dynamo"
	"github.com/san-kum/rdsim/internal/grid"
)

// rows handed to a single worker at minimum
const minRowsPerWorker = 16

// GrayScott advances a (U, V) pair by explicit Euler steps. It owns the
// Laplacian scratch buffers, so one instance must not step two runs at once.
type GrayScott struct {
	params  Params
	workers int
	lu, lv  []float64
}

// New returns a serial stepper.
func New(p Params) (*GrayScott, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &GrayScott{params: p, workers: 1}, nil
}

// WithWorkers splits rows across n goroutines. n <= 1 keeps the serial path.
func (g *GrayScott) WithWorkers(n int) *GrayScott {
	if n < 1 {
		n = 1
	}
	g.workers = n
	return g
}

func (g *GrayScott) Params() Params { return g.params }
func (g *GrayScott) Workers() int   { return g.workers }

func (g *GrayScott) ensureScratch(cells int) {
	if len(g.lu) != cells {
		g.lu = make([]float64, cells)
		g.lv = make([]float64, cells)
	}
}

// Step applies one update to the interiors of u and v using halo values
// as they currently stand. Both Laplacians are taken from the pre-step state
// before either field is written; the halo is stale afterwards.
func (g *GrayScott) Step(u, v *grid.Field) error {
	if !grid.SameShape(u, v) {
		return fmt.Errorf("%w: U and V must share a resolution", dynamo.ErrDimensionMismatch)
	}
	n := u.N()
	g.ensureScratch(n * n)

	if g.workers <= 1 {
		grid.LaplacianRows(u, g.lu, 0, n)
		grid.LaplacianRows(v, g.lv, 0, n)
		g.updateRows(u, v, 0, n)
		return nil
	}

	// read phase; ParallelFor returns only after every chunk is done
	dynamo.ParallelFor(n, g.workers, minRowsPerWorker, func(start, end int) {
		grid.LaplacianRows(u, g.lu, start, end)
		grid.LaplacianRows(v, g.lv, start, end)
	})
	// write phase
	dynamo.ParallelFor(n, g.workers, minRowsPerWorker, func(start, end int) {
		g.updateRows(u, v, start, end)
	})
	return nil
}

// Advance synchronizes both halos and then steps.
func (g *GrayScott) Advance(u, v *grid.Field) error {
	if !grid.SameShape(u, v) {
		return fmt.Errorf("%w: U and V must share a resolution", dynamo.ErrDimensionMismatch)
	}
	grid.ApplyPeriodic(u)
	grid.ApplyPeriodic(v)
	return g.Step(u, v)
}

func (g *GrayScott) updateRows(u, v *grid.Field, start, end int) {
	n, s := u.N(), u.Stride()
	ud, vd := u.Raw(), v.Raw()

	scale := g.params.laplacianScale()
	du, dv := g.params.Du*scale, g.params.Dv*scale
	f, fk := g.params.F, g.params.F+g.params.K

	for r := start; r < end; r++ {
		base := (r+1)*s + 1
		urow := ud[base : base+n]
		vrow := vd[base : base+n]
		lu := g.lu[r*n : (r+1)*n]
		lv := g.lv[r*n : (r+1)*n]
		for j := range urow {
			uu, vv := urow[j], vrow[j]
			uvv := uu * vv * vv
			urow[j] = uu + (du*lu[j] - uvv + f*(1-uu))
			vrow[j] = vv + (dv*lv[j] + uvv - fk*vv)
		}
	}
}

// Step is the one-shot form of GrayScott.Step.
func Step(u, v *grid.Field, p Params) error {
	g, err := New(p)
	if err != nil {
		return err
	}
	return g.Step(u, v)
}
