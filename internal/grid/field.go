package grid

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/rdsim/internal/dynamo"
)

// Field is an (n+2) x (n+2) concentration grid. Rows and columns 0 and n+1
// form the halo ring; 1..n are the interior cells.
type Field struct {
	n      int
	stride int
	data   []float64
	dense  *mat.Dense
}

// New allocates a zeroed field with interior resolution n.
func New(n int) (*Field, error) {
	if n < 1 {
		return nil, dynamo.Invalid("grid resolution must be >= 1, got %d", n)
	}
	size := n + 2
	dense := mat.NewDense(size, size, nil)
	raw := dense.RawMatrix()
	return &Field{n: n, stride: raw.Stride, data: raw.Data, dense: dense}, nil
}

// N returns the interior resolution.
func (f *Field) N() int { return f.n }

// Size returns the padded edge length n+2.
func (f *Field) Size() int { return f.n + 2 }

// Stride returns the distance between consecutive rows of Raw.
func (f *Field) Stride() int { return f.stride }

// Raw exposes the row-major backing buffer, halo included.
func (f *Field) Raw() []float64 { return f.data }

// Dense exposes the gonum matrix sharing Raw's storage.
func (f *Field) Dense() *mat.Dense { return f.dense }

func (f *Field) At(i, j int) float64 { return f.data[i*f.stride+j] }

func (f *Field) Set(i, j int, v float64) { f.data[i*f.stride+j] = v }

// Fill sets every cell, halo included.
func (f *Field) Fill(v float64) {
	for i := range f.data {
		f.data[i] = v
	}
}

// Interior returns an n x n copy of the interior cells.
func (f *Field) Interior() *mat.Dense {
	return mat.DenseCopyOf(f.dense.Slice(1, f.n+1, 1, f.n+1))
}

// Clone returns a deep copy.
func (f *Field) Clone() *Field {
	c, _ := New(f.n)
	copy(c.data, f.data)
	return c
}

// Equal reports whether both fields have the same shape and bit-identical cells.
func (f *Field) Equal(other *Field) bool {
	if other == nil || f.n != other.n {
		return false
	}
	for i, v := range f.data {
		if math.Float64bits(v) != math.Float64bits(other.data[i]) {
			return false
		}
	}
	return true
}

// SameShape reports whether two fields can be stepped together.
func SameShape(a, b *Field) bool {
	return a != nil && b != nil && a.n == b.n
}

// Finite reports whether no interior cell is NaN or Inf.
func (f *Field) Finite() bool {
	for i := 1; i <= f.n; i++ {
		row := f.data[i*f.stride+1 : i*f.stride+1+f.n]
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
