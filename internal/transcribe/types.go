package transcribe

import (
	"context"
	"time"
)

// JobStatus is the lifecycle state reported by the transcription service.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusError      JobStatus = "error"
)

// Terminal reports whether no further polling can change the status.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Sentence is one ordered transcript sentence. Order of the slice
// returned by FetchSentences is transcript order and must be preserved
// by every downstream stage.
type Sentence struct {
	StartMS int64  `json:"start"`
	EndMS   int64  `json:"end"`
	Text    string `json:"text"`
}

// CompletedJob is the result of a job reaching the completed state.
type CompletedJob struct {
	ID       string
	Language string // language code, possibly detected by the service
}

// Client drives a transcription job through its lifecycle.
type Client interface {
	// Submit uploads/refers the media and creates a job, returning its ID.
	Submit(ctx context.Context, mediaSource, languageHint string) (string, error)

	// AwaitCompletion polls the job until it reaches a terminal state.
	AwaitCompletion(ctx context.Context, jobID string) (*CompletedJob, error)

	// FetchSentences retrieves the finalized sentence segmentation.
	// An empty result is valid.
	FetchSentences(ctx context.Context, jobID string) ([]Sentence, error)
}

// SleepFunc waits for d or until ctx is done, returning ctx.Err() in the
// latter case. Injectable so polling tests run without real delay.
type SleepFunc func(ctx context.Context, d time.Duration) error

// PollPolicy controls how AwaitCompletion waits on the service.
type PollPolicy struct {
	Interval time.Duration // delay between polls
	Deadline time.Duration // max total wait; 0 means no cap
	Sleep    SleepFunc     // nil falls back to a real timer
}

// DefaultPollPolicy polls every five seconds with a fifteen-minute cap.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		Interval: 5 * time.Second,
		Deadline: 15 * time.Minute,
	}
}

func (p PollPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
