package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for engine operations.
var (
	// ErrNoContext indicates the drawing surface could not provide a 2D context.
	ErrNoContext = errors.New("dynamo: drawing surface has no 2d context")

	// ErrRecording indicates a recording is already in progress.
	ErrRecording = errors.New("dynamo: recording already in progress")

	// ErrNotRecording indicates StopRecording was called with nothing to stop.
	ErrNotRecording = errors.New("dynamo: no recording in progress")

	// ErrUnknownParam indicates a parameter name that no setter handles.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")

	// ErrInvalidState indicates the ball state went NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid ball state (NaN or Inf detected)")
)

// SimError wraps an error with the frame it happened on.
type SimError struct {
	Frame   int
	Wrapped error
}

func (e *SimError) Error() string {
	return fmt.Sprintf("frame %d: %v", e.Frame, e.Wrapped)
}

func (e *SimError) Unwrap() error {
	return e.Wrapped
}
