// Package sweep explores the (F, k) plane by running one independent
// simulation per grid point.
package sweep

import (
	"context"
	"math"
	"sort"

	"github.com/san-kum/rdsim/internal/config"
	"github.com/san-kum/rdsim/internal/dynamo"
	"github.com/san-kum/rdsim/internal/experiment"
)

// Point is one finished grid cell.
type Point struct {
	F, K       float64
	Metrics    map[string]float64
	Wavelength float64
	Err        error
}

type GridSearch struct {
	fs, ks []float64
	limit  int
}

// NewGridSearch runs every combination of fs and ks, at most limit at a
// time (limit <= 0 means one per CPU).
func NewGridSearch(fs, ks []float64, limit int) *GridSearch {
	return &GridSearch{fs: fs, ks: ks, limit: limit}
}

// Linspace returns count evenly spaced values over the closed [lo, hi].
func Linspace(lo, hi float64, count int) []float64 {
	if count < 1 {
		return nil
	}
	if count == 1 {
		return []float64{lo}
	}
	out := make([]float64, count)
	step := (hi - lo) / float64(count-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	out[count-1] = hi
	return out
}

// Run executes the grid. base supplies everything except F and k. A point
// whose simulation fails records its error; only context cancellation
// aborts the whole sweep.
func (g *GridSearch) Run(ctx context.Context, base *config.Config) ([]Point, error) {
	if len(g.fs) == 0 || len(g.ks) == 0 {
		return nil, dynamo.Invalid("sweep needs at least one F and one k value")
	}

	points := make([]Point, len(g.fs)*len(g.ks))
	reg := experiment.NewRegistry()

	err := dynamo.NewEnsemble(g.limit).Run(ctx, len(points), func(ctx context.Context, idx int) error {
		cfg := *base
		cfg.Params.F = g.fs[idx/len(g.ks)]
		cfg.Params.K = g.ks[idx%len(g.ks)]
		cfg.ValidateState = true

		p := &points[idx]
		p.F, p.K = cfg.Params.F, cfg.Params.K

		exp := experiment.New(&cfg)
		if err := exp.Setup(reg.DefaultMetrics()); err != nil {
			p.Err = err
			return nil
		}
		out, err := exp.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			p.Err = err
			return nil
		}
		p.Metrics = out.Result.Metrics
		p.Wavelength = out.Wavelength
		return nil
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

// Best returns the successful point with the largest (or smallest) value
// of metric.
func Best(points []Point, metric string, maximize bool) (Point, bool) {
	best := math.Inf(1)
	if maximize {
		best = math.Inf(-1)
	}
	var out Point
	found := false
	for _, p := range points {
		if p.Err != nil {
			continue
		}
		v, ok := p.Metrics[metric]
		if !ok || math.IsNaN(v) {
			continue
		}
		if (maximize && v > best) || (!maximize && v < best) {
			best, out, found = v, p, true
		}
	}
	return out, found
}

// Sorted orders points by F then k.
func Sorted(points []Point) []Point {
	out := append([]Point(nil), points...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].F != out[j].F {
			return out[i].F < out[j].F
		}
		return out[i].K < out[j].K
	})
	return out
}
