package reaction

import "github.com/san-kum/rdsim/internal/grid"

// Seed square in normalized coordinates, closed on both ends.
const (
	seedLo = 0.4
	seedHi = 0.6

	backgroundU = 1.0
	backgroundV = 0.0
	seedU       = 0.5
	seedV       = 0.25
)

// Init allocates the U and V fields for an n x n interior: U=1, V=0
// everywhere except the centered seed square where U=0.5, V=0.25.
// Index i maps to the normalized coordinate i/(n+1).
func Init(n int) (u, v *grid.Field, err error) {
	if u, err = grid.New(n); err != nil {
		return nil, nil, err
	}
	if v, err = grid.New(n); err != nil {
		return nil, nil, err
	}

	u.Fill(backgroundU)
	v.Fill(backgroundV)

	lo, hi := SeedRange(n)
	for i := lo; i <= hi; i++ {
		for j := lo; j <= hi; j++ {
			u.Set(i, j, seedU)
			v.Set(i, j, seedV)
		}
	}
	return u, v, nil
}

// SeedRange returns the inclusive interior index range of the seed square
// along one axis. lo > hi means the square is empty at this resolution.
func SeedRange(n int) (lo, hi int) {
	lo, hi = n+1, 0
	for i := 1; i <= n; i++ {
		if inSeed(i, n) {
			if i < lo {
				lo = i
			}
			hi = i
		}
	}
	return lo, hi
}

func inSeed(i, n int) bool {
	x := float64(i) / float64(n+1)
	return x >= seedLo && x <= seedHi
}
