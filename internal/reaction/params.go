package reaction

import (
	"math"

	"github.com/san-kum/rdsim/internal/dynamo"
)

// Params holds the Gray-Scott rates. They are fixed for the length of a run.
type Params struct {
	Du float64 // diffusion rate of U
	Dv float64 // diffusion rate of V
	F  float64 // feed rate
	K  float64 // kill rate

	// Spacing is the opt-in grid spacing. Zero keeps the unnormalized
	// stencil; a positive value divides both Laplacians by Spacing^2.
	Spacing float64
}

// DefaultParams returns Pearson's coral-growth parameters.
func DefaultParams() Params {
	return Params{Du: 0.1, Dv: 0.05, F: 0.0545, K: 0.062}
}

func (p Params) Validate() error {
	rates := []struct {
		name string
		v    float64
	}{
		{"Du", p.Du}, {"Dv", p.Dv}, {"F", p.F}, {"k", p.K},
	}
	for _, r := range rates {
		if math.IsNaN(r.v) || math.IsInf(r.v, 0) || r.v <= 0 {
			return dynamo.Invalid("%s must be a positive finite number, got %v", r.name, r.v)
		}
	}
	if math.IsNaN(p.Spacing) || math.IsInf(p.Spacing, 0) || p.Spacing < 0 {
		return dynamo.Invalid("spacing must be >= 0, got %v", p.Spacing)
	}
	return nil
}

// laplacianScale is the factor applied to raw stencil sums.
func (p Params) laplacianScale() float64 {
	if p.Spacing > 0 {
		return 1 / (p.Spacing * p.Spacing)
	}
	return 1
}

func (p Params) GetParams() map[string]float64 {
	return map[string]float64{"Du": p.Du, "Dv": p.Dv, "F": p.F, "k": p.K, "spacing": p.Spacing}
}

// SetParam updates one rate by name.
func (p *Params) SetParam(name string, v float64) error {
	switch name {
	case "Du", "du":
		p.Du = v
	case "Dv", "dv":
		p.Dv = v
	case "F", "f", "feed":
		p.F = v
	case "k", "K", "kill":
		p.K = v
	case "spacing":
		p.Spacing = v
	default:
		return dynamo.Invalid("unknown parameter %q", name)
	}
	return nil
}
