package sim

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/rdsim/internal/dynamo"
)

// Frame is a read-only snapshot of V's interior taken after Step updates.
type Frame struct {
	Index int
	Step  int
	Data  *mat.Dense
}

// N returns the frame's edge length.
func (f *Frame) N() int {
	r, _ := f.Data.Dims()
	return r
}

// Values returns the row-major cells. The slice aliases Data.
func (f *Frame) Values() []float64 {
	return f.Data.RawMatrix().Data
}

// MinMax returns the extreme cell values. NaN cells are skipped; a frame
// with nothing but NaN reports NaN for both.
func (f *Frame) MinMax() (lo, hi float64) {
	vals := f.Values()
	if !floats.HasNaN(vals) {
		return floats.Min(vals), floats.Max(vals)
	}
	kept := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return math.NaN(), math.NaN()
	}
	return floats.Min(kept), floats.Max(kept)
}

func (f *Frame) Mean() float64 {
	r, c := f.Data.Dims()
	return mat.Sum(f.Data) / float64(r*c)
}

func (f *Frame) IsFinite() bool {
	for _, v := range f.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Normalize min-max scales the frame into [lo, hi]. A constant frame maps to lo.
func (f *Frame) Normalize(lo, hi float64) *mat.Dense {
	min, max := f.MinMax()
	span := max - min
	out := mat.DenseCopyOf(f.Data)
	out.Apply(func(_, _ int, v float64) float64 {
		if span == 0 {
			return lo
		}
		return lo + (hi-lo)*(v-min)/span
	}, out)
	return out
}

// Bytes scales the frame to 0..255 the way an 8-bit image expects.
// Non-finite cells become 0.
func (f *Frame) Bytes() []uint8 {
	min, max := f.MinMax()
	span := max - min
	vals := f.Values()
	out := make([]uint8, len(vals))
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return out
	}
	for i, v := range vals {
		s := 255 * (v - min) / span
		if math.IsNaN(s) || s < 0 {
			continue
		}
		if s > 255 {
			s = 255
		}
		out[i] = uint8(s)
	}
	return out
}

// Metric accumulates a scalar over the frames of a run.
type Metric interface {
	Name() string
	Observe(f *Frame)
	Value() float64
	Reset()
}

// Observer is notified as the run progresses.
type Observer interface {
	OnStep(step int)
	OnFrame(f *Frame)
}

type Config struct {
	StepsPerFrame int
	Frames        int
	Workers       int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		StepsPerFrame: 40,
		Frames:        500,
		Workers:       1,
	}
}

func (c Config) Validate() error {
	if c.StepsPerFrame < 1 {
		return dynamo.Invalid("steps per frame must be >= 1, got %d", c.StepsPerFrame)
	}
	if c.Frames < 1 {
		return dynamo.Invalid("frame count must be >= 1, got %d", c.Frames)
	}
	return nil
}

// TotalSteps is the number of Step calls a full run performs.
func (c Config) TotalSteps() int {
	return c.StepsPerFrame * c.Frames
}

type Result struct {
	Frames  []*Frame
	Steps   int
	Metrics map[string]float64
}

// Last returns the final frame, or nil for an empty result.
func (r *Result) Last() *Frame {
	if len(r.Frames) == 0 {
		return nil
	}
	return r.Frames[len(r.Frames)-1]
}
