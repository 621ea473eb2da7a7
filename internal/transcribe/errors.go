package transcribe

import "fmt"

// SubmissionError is a transport or service-side rejection while
// uploading media or creating the job. Fatal for the run.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string { return fmt.Sprintf("submission failed: %v", e.Err) }

func (e *SubmissionError) Unwrap() error { return e.Err }

// TranscriptionFailed means the service reported a terminal error status
// for the job, carrying the service's reason. Fatal for the run.
type TranscriptionFailed struct {
	JobID  string
	Reason string
}

func (e *TranscriptionFailed) Error() string {
	return fmt.Sprintf("transcription failed for job %s: %s", e.JobID, e.Reason)
}

// RetrievalError is a transport failure while reading job state or the
// finalized sentences. Fatal for the run.
type RetrievalError struct {
	JobID string
	Err   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed for job %s: %v", e.JobID, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }
