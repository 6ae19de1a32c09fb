package dynamo

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ParallelFor executes fn over [0, n) split into contiguous chunks, one
// goroutine per chunk, and returns once every chunk has finished.
// workers <= 0 selects runtime.NumCPU().
func ParallelFor(n, workers, minChunk int, fn func(start, end int)) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// Ensemble runs independent jobs concurrently with at most limit in flight.
// The first error cancels the shared context and is returned.
type Ensemble struct {
	limit int
}

func NewEnsemble(limit int) *Ensemble {
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	return &Ensemble{limit: limit}
}

func (e *Ensemble) Run(ctx context.Context, jobs int, fn func(ctx context.Context, idx int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)

	for i := 0; i < jobs; i++ {
		idx := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, idx)
		})
	}

	return g.Wait()
}
