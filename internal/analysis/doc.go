// Package analysis characterizes the patterns a run settles into.
//
//   - [RadialSpectrum]: azimuthally averaged 2D power spectrum of a frame
//   - [DominantWavelength]: the spot/stripe spacing the spectrum peaks at
//   - [Summarize]: per-frame statistics for plots and the run catalog
//
// A labyrinth pattern on a 300 cell grid typically peaks at a wavelength of
// ten to fifteen cells:
//
//	wl, k, err := analysis.DominantWavelength(frame.Data)
package analysis
