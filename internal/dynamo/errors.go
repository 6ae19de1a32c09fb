package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidArgument indicates a precondition violation detected before
	// any field is allocated or stepped.
	ErrInvalidArgument = errors.New("dynamo: invalid argument")

	// ErrUnstable indicates the fields diverged (NaN or Inf detected).
	ErrUnstable = errors.New("dynamo: simulation unstable (field diverged)")

	// ErrDimensionMismatch indicates U and V (or a destination buffer) differ in shape.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between fields")

	// ErrContextCanceled indicates the run was aborted by the caller.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrConsumed indicates a frame sequence was iterated a second time.
	ErrConsumed = errors.New("dynamo: frame sequence already consumed")
)

// Invalid returns an error wrapping ErrInvalidArgument.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// SimulationError wraps an error with the position in the run where it surfaced.
type SimulationError struct {
	Step    int
	Frame   int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (frame %d): %v", e.Step, e.Frame, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
