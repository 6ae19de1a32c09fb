package grid

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/rdsim/internal/dynamo"
)

// Laplacian returns the unnormalized 5-point Laplacian of the interior as an
// n x n matrix. Halo cells must be synchronized beforehand.
func Laplacian(f *Field) *mat.Dense {
	out := make([]float64, f.n*f.n)
	LaplacianRows(f, out, 0, f.n)
	return mat.NewDense(f.n, f.n, out)
}

// LaplacianInto writes the Laplacian of every interior cell into dst, which
// must hold n*n values in row-major order.
func LaplacianInto(f *Field, dst []float64) error {
	if len(dst) != f.n*f.n {
		return fmt.Errorf("%w: laplacian buffer has %d cells, want %d", dynamo.ErrDimensionMismatch, len(dst), f.n*f.n)
	}
	LaplacianRows(f, dst, 0, f.n)
	return nil
}

// LaplacianRows evaluates interior rows [start, end) (0-based, so row r is
// field row r+1) into dst. It only reads f, so disjoint row ranges may run
// concurrently.
//
//	delta[i,j] = f[i-1,j] + f[i+1,j] + f[i,j-1] + f[i,j+1] - 4*f[i,j]
func LaplacianRows(f *Field, dst []float64, start, end int) {
	n, s, d := f.n, f.stride, f.data
	for r := start; r < end; r++ {
		i := r + 1
		up := d[(i-1)*s : i*s]
		mid := d[i*s : (i+1)*s]
		down := d[(i+1)*s : (i+2)*s]
		out := dst[r*n : (r+1)*n]
		for j := 1; j <= n; j++ {
			out[j-1] = up[j] + down[j] + mid[j-1] + mid[j+1] - 4*mid[j]
		}
	}
}
