package grid

import (
	"errors"
	"testing"

	"github.com/san-kum/rdsim/internal/dynamo"
)

func TestNewShape(t *testing.T) {
	for _, n := range []int{1, 2, 7, 64} {
		f, err := New(n)
		if err != nil {
			t.Fatalf("New(%d): %v", n, err)
		}
		r, c := f.Dense().Dims()
		if r != n+2 || c != n+2 {
			t.Errorf("New(%d) dims = %dx%d, want %dx%d", n, r, c, n+2, n+2)
		}
		if len(f.Raw()) != (n+2)*(n+2) {
			t.Errorf("New(%d) raw len = %d", n, len(f.Raw()))
		}
	}
}

func TestNewInvalid(t *testing.T) {
	for _, n := range []int{0, -1, -100} {
		f, err := New(n)
		if err == nil {
			t.Fatalf("New(%d) expected error", n)
		}
		if !errors.Is(err, dynamo.ErrInvalidArgument) {
			t.Errorf("New(%d) error %v does not wrap ErrInvalidArgument", n, err)
		}
		if f != nil {
			t.Errorf("New(%d) returned a field alongside the error", n)
		}
	}
}

func TestRawSharesDense(t *testing.T) {
	f, _ := New(3)
	f.Set(2, 3, 4.5)
	if got := f.Dense().At(2, 3); got != 4.5 {
		t.Errorf("dense At(2,3) = %v, want 4.5", got)
	}
	f.Dense().Set(1, 1, -2)
	if got := f.At(1, 1); got != -2 {
		t.Errorf("At(1,1) = %v, want -2", got)
	}
}

func TestInteriorIsCopy(t *testing.T) {
	f, _ := New(4)
	for i := 0; i < f.Size(); i++ {
		for j := 0; j < f.Size(); j++ {
			f.Set(i, j, float64(i*10+j))
		}
	}
	in := f.Interior()
	r, c := in.Dims()
	if r != 4 || c != 4 {
		t.Fatalf("interior dims = %dx%d, want 4x4", r, c)
	}
	if in.At(0, 0) != 11 || in.At(3, 3) != 44 {
		t.Errorf("interior corners = %v, %v, want 11, 44", in.At(0, 0), in.At(3, 3))
	}
	in.Set(0, 0, -1)
	if f.At(1, 1) != 11 {
		t.Error("mutating the interior copy changed the field")
	}
}

func TestCloneAndEqual(t *testing.T) {
	f, _ := New(5)
	f.Fill(0.3)
	c := f.Clone()
	if !f.Equal(c) {
		t.Fatal("clone not equal to source")
	}
	c.Set(2, 2, 0.31)
	if f.Equal(c) {
		t.Error("fields differing in one cell reported equal")
	}
	g, _ := New(6)
	if f.Equal(g) {
		t.Error("fields of different shape reported equal")
	}
}

func TestFinite(t *testing.T) {
	f, _ := New(3)
	if !f.Finite() {
		t.Fatal("zero field reported non-finite")
	}
	f.Set(0, 0, 1.0/zero())
	if !f.Finite() {
		t.Error("halo Inf should not count against the interior")
	}
	f.Set(2, 2, 1.0/zero())
	if f.Finite() {
		t.Error("interior Inf not detected")
	}
}

func zero() float64 { return 0 }
