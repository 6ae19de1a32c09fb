package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/rdsim/internal/sim"
)

// FrameStats is one row of a run's frames.csv.
type FrameStats struct {
	Index int
	Step  int
	Min   float64
	Max   float64
	Mean  float64
	Std   float64
}

func Summarize(f *sim.Frame) FrameStats {
	vals := f.Values()
	mean, std := stat.MeanStdDev(vals, nil)
	return FrameStats{
		Index: f.Index,
		Step:  f.Step,
		Min:   floats.Min(vals),
		Max:   floats.Max(vals),
		Mean:  mean,
		Std:   std,
	}
}

// Series pulls one column out of a run's frame stats for plotting.
func Series(stats []FrameStats, column string) []float64 {
	out := make([]float64, len(stats))
	for i, s := range stats {
		switch column {
		case "min":
			out[i] = s.Min
		case "max":
			out[i] = s.Max
		case "std":
			out[i] = s.Std
		default:
			out[i] = s.Mean
		}
	}
	return out
}
