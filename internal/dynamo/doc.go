// Package dynamo provides the shared primitives of the reaction-diffusion lab.
//
// The package defines the pieces every other package leans on:
//
//   - domain errors ([ErrInvalidArgument], [ErrUnstable], ...) and
//     [SimulationError] for positional context
//   - [ParallelFor]: chunked fan-out with a barrier on return
//   - [Ensemble]: bounded concurrent execution of independent runs
//
// # Thread Safety
//
// Nothing in this package holds shared mutable state. Callers own the
// buffers they hand to [ParallelFor] and must keep chunks disjoint.
package dynamo
