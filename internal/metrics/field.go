package metrics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/rdsim/internal/sim"
)

// MeanV averages the mean V concentration over every observed frame.
type MeanV struct {
	name    string
	sum     float64
	samples int
}

func NewMeanV() *MeanV {
	return &MeanV{name: "mean_v"}
}

func (m *MeanV) Name() string { return m.name }

func (m *MeanV) Observe(f *sim.Frame) {
	m.sum += f.Mean()
	m.samples++
}

func (m *MeanV) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanV) Reset() {
	m.sum = 0
	m.samples = 0
}

// Coverage is the fraction of cells whose V exceeds the threshold in the
// latest frame, a proxy for pattern area.
type Coverage struct {
	name      string
	threshold float64
	value     float64
}

const DefaultCoverageThreshold = 0.1

func NewCoverage(threshold float64) *Coverage {
	return &Coverage{
		name:      "coverage",
		threshold: threshold,
	}
}

func (c *Coverage) Name() string { return c.name }

func (c *Coverage) Observe(f *sim.Frame) {
	vals := f.Values()
	if len(vals) == 0 {
		return
	}
	above := floats.Count(func(v float64) bool { return v > c.threshold }, vals)
	c.value = float64(above) / float64(len(vals))
}

func (c *Coverage) Value() float64 { return c.value }

func (c *Coverage) Reset() { c.value = 0 }

// Contrast is max-min of the latest frame.
type Contrast struct {
	name  string
	value float64
}

func NewContrast() *Contrast {
	return &Contrast{name: "contrast"}
}

func (c *Contrast) Name() string { return c.name }

func (c *Contrast) Observe(f *sim.Frame) {
	lo, hi := f.MinMax()
	c.value = hi - lo
}

func (c *Contrast) Value() float64 { return c.value }

func (c *Contrast) Reset() { c.value = 0 }
