package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/rdsim/internal/dynamo"
)

// RadialSpectrum returns the power of the mean-removed field binned by
// integer wavenumber |k|, for k in 0..n/2. The DC bin is zero by
// construction.
func RadialSpectrum(data *mat.Dense) ([]float64, error) {
	rows, cols := data.Dims()
	if rows != cols {
		return nil, dynamo.Invalid("spectrum needs a square field, got %dx%d", rows, cols)
	}
	n := rows
	mean := mat.Sum(data) / float64(n*n)

	in := make([][]float64, n)
	for i := range in {
		in[i] = make([]float64, n)
		for j := range in[i] {
			in[i][j] = data.At(i, j) - mean
		}
	}
	out := fft.FFT2Real(in)

	bins := n/2 + 1
	power := make([]float64, bins)
	counts := make([]int, bins)
	for i := 0; i < n; i++ {
		ki := wrapFreq(i, n)
		for j := 0; j < n; j++ {
			kj := wrapFreq(j, n)
			k := int(math.Round(math.Hypot(float64(ki), float64(kj))))
			if k >= bins {
				continue
			}
			a := cmplx.Abs(out[i][j])
			power[k] += a * a
			counts[k]++
		}
	}
	for k := range power {
		if counts[k] > 0 {
			power[k] /= float64(counts[k])
		}
	}
	return power, nil
}

func wrapFreq(i, n int) int {
	if i > n/2 {
		return i - n
	}
	return i
}

// DominantWavelength finds the non-DC wavenumber with the most power and
// converts it to a length in cells. A featureless field returns (0, 0, nil).
func DominantWavelength(data *mat.Dense) (wavelength float64, k int, err error) {
	power, err := RadialSpectrum(data)
	if err != nil {
		return 0, 0, err
	}
	n, _ := data.Dims()

	best := 0.0
	for i := 1; i < len(power); i++ {
		if power[i] > best {
			best = power[i]
			k = i
		}
	}
	if k == 0 {
		return 0, 0, nil
	}
	return float64(n) / float64(k), k, nil
}
