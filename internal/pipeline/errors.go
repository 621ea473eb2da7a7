package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// Pipeline stages, used to identify where a fatal error originated.
const (
	StageSubmit     = "submit"
	StageTranscribe = "transcribe"
	StageFetch      = "fetch"
	StageEnrich     = "enrich"
	StagePersist    = "persist"
)

// StageError is a job-scoped fatal error tagged with the stage that
// produced it. Segment-scoped faults never surface as StageError; they
// degrade individual rows instead.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// CancelledError means the caller's context was cancelled or the poll
// deadline expired, distinct from a service-side failure.
type CancelledError struct {
	Stage string
	Err   error
}

func (e *CancelledError) Error() string { return fmt.Sprintf("run cancelled during %s: %v", e.Stage, e.Err) }

func (e *CancelledError) Unwrap() error { return e.Err }

// stageErr wraps a fatal stage failure, classifying context expiry as
// cancellation.
func stageErr(stage string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &CancelledError{Stage: stage, Err: err}
	}
	return &StageError{Stage: stage, Err: err}
}
