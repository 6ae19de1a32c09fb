package reaction_test

import (
	"fmt"
	"testing"

	"github.com/san-kum/rdsim/internal/reaction"
)

func BenchmarkAdvance(b *testing.B) {
	for _, n := range []int{100, 300} {
		for _, workers := range []int{1, 4} {
			b.Run(fmt.Sprintf("n=%d/workers=%d", n, workers), func(b *testing.B) {
				u, v, _ := reaction.Init(n)
				g, _ := reaction.New(reaction.DefaultParams())
				g.WithWorkers(workers)

				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					_ = g.Advance(u, v)
				}
			})
		}
	}
}
