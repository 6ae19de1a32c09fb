// Package reaction implements the Gray-Scott reaction-diffusion model on
// halo-padded grids:
//
//	du/dt = Du Δu - u v² + F (1 - u)
//	dv/dt = Dv Δv + u v² - (F + k) v
//
// integrated with explicit Euler steps of unit length. The Laplacian is the
// unnormalized 5-point stencil unless [Params.Spacing] is set.
//
// # Stability
//
// Nothing here detects divergence. Unsuitable rates blow up to Inf or NaN
// and keep propagating; wrap the stepper (see sim.Config.ValidateState) when
// that matters.
package reaction
