package metrics

import (
	"github.com/san-kum/rdsim/internal/sim"
)

// Finite reports 1 while every observed frame is free of NaN and Inf, and
// drops to the finite fraction once one is not.
type Finite struct {
	name       string
	violations int
	samples    int
}

func NewFinite() *Finite {
	return &Finite{name: "finite"}
}

func (s *Finite) Name() string {
	return s.name
}

func (s *Finite) Observe(f *sim.Frame) {
	s.samples++
	if !f.IsFinite() {
		s.violations++
	}
}

func (s *Finite) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Finite) Reset() {
	s.violations = 0
	s.samples = 0
}
