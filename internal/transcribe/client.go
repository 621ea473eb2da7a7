package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/emoscribe/emoscribe/internal/config"
	"github.com/emoscribe/emoscribe/internal/observability"
	"github.com/emoscribe/emoscribe/internal/resilience"
)

// HTTPClient implements Client against an AssemblyAI-compatible REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	upload  *http.Client // media uploads get a much longer timeout
	poll    PollPolicy
	retry   *resilience.RetryConfig
	logger  zerolog.Logger
}

// NewHTTPClient creates a transcription job client from configuration.
func NewHTTPClient(cfg *config.Config) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.TranscribeBaseURL, "/"),
		apiKey:  cfg.TranscribeAPIKey,
		http:    &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second},
		upload:  &http.Client{Timeout: time.Duration(cfg.UploadTimeout) * time.Second},
		poll: PollPolicy{
			Interval: time.Duration(cfg.PollInterval) * time.Second,
			Deadline: time.Duration(cfg.PollDeadline) * time.Second,
		},
		retry: &resilience.RetryConfig{
			MaxAttempts:    cfg.RetryMaxAttempts,
			InitialBackoff: time.Duration(cfg.RetryInitialBackoff) * time.Millisecond,
			MaxBackoff:     5 * time.Second,
			Multiplier:     2.0,
			Jitter:         true,
		},
		logger: observability.GetLogger().With().Str("component", "transcribe").Logger(),
	}
}

// SetPollPolicy overrides the poll policy (tests inject a no-delay sleeper).
func (c *HTTPClient) SetPollPolicy(p PollPolicy) {
	c.poll = p
}

type createJobRequest struct {
	AudioURL          string `json:"audio_url"`
	LanguageCode      string `json:"language_code,omitempty"`
	LanguageDetection bool   `json:"language_detection,omitempty"`
	Punctuate         bool   `json:"punctuate"`
	FormatText        bool   `json:"format_text"`
}

type createJobResponse struct {
	ID string `json:"id"`
}

type jobStatusResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	LanguageCode string `json:"language_code"`
	Error        string `json:"error"`
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type sentencesResponse struct {
	Sentences []Sentence `json:"sentences"`
}

// Submit uploads local media if needed and creates a transcription job.
// A hint of "" or "auto" asks the service to detect the language.
func (c *HTTPClient) Submit(ctx context.Context, mediaSource, languageHint string) (string, error) {
	audioURL := mediaSource
	if !isRemote(mediaSource) {
		u, err := c.uploadFile(ctx, mediaSource)
		if err != nil {
			observability.RecordJobSubmitted(false)
			return "", &SubmissionError{Err: err}
		}
		audioURL = u
	}

	req := createJobRequest{
		AudioURL:   audioURL,
		Punctuate:  true,
		FormatText: true,
	}
	if languageHint == "" || languageHint == "auto" {
		req.LanguageDetection = true
	} else {
		req.LanguageCode = languageHint
	}

	var resp createJobResponse
	err := resilience.Retry(ctx, func(ctx context.Context) error {
		return c.postJSON(ctx, c.baseURL+"/transcript", req, &resp)
	}, c.retry, isTransient)
	if err != nil {
		observability.RecordJobSubmitted(false)
		return "", &SubmissionError{Err: err}
	}

	observability.RecordJobSubmitted(true)
	c.logger.Info().Str("job_id", resp.ID).Str("language_hint", languageHint).Msg("Transcription job submitted")
	return resp.ID, nil
}

// AwaitCompletion polls job status until the service reports a terminal
// state. The poll deadline is enforced through the context, so a run that
// never completes surfaces as context.DeadlineExceeded.
func (c *HTTPClient) AwaitCompletion(ctx context.Context, jobID string) (*CompletedJob, error) {
	if c.poll.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.poll.Deadline)
		defer cancel()
	}

	url := c.baseURL + "/transcript/" + jobID
	for {
		var status jobStatusResponse
		err := resilience.Retry(ctx, func(ctx context.Context) error {
			return c.getJSON(ctx, url, &status)
		}, c.retry, isTransient)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, &RetrievalError{JobID: jobID, Err: err}
		}

		observability.RecordPollCycle()
		switch JobStatus(status.Status) {
		case StatusCompleted:
			c.logger.Info().Str("job_id", jobID).Str("language", status.LanguageCode).Msg("Transcription complete")
			return &CompletedJob{ID: jobID, Language: status.LanguageCode}, nil
		case StatusError:
			reason := status.Error
			if reason == "" {
				reason = "unknown error"
			}
			return nil, &TranscriptionFailed{JobID: jobID, Reason: reason}
		}

		c.logger.Debug().Str("job_id", jobID).Str("status", status.Status).Msg("Job still in progress")
		if err := c.poll.sleep(ctx, c.poll.Interval); err != nil {
			return nil, err
		}
	}
}

// FetchSentences retrieves the finalized sentence segmentation for a
// completed job. Zero sentences is a valid result.
func (c *HTTPClient) FetchSentences(ctx context.Context, jobID string) ([]Sentence, error) {
	var resp sentencesResponse
	err := resilience.Retry(ctx, func(ctx context.Context) error {
		return c.getJSON(ctx, c.baseURL+"/transcript/"+jobID+"/sentences", &resp)
	}, c.retry, isTransient)
	if err != nil {
		return nil, &RetrievalError{JobID: jobID, Err: err}
	}

	if len(resp.Sentences) == 0 {
		c.logger.Warn().Str("job_id", jobID).Msg("No sentences returned for completed job")
	}
	return resp.Sentences, nil
}

func (c *HTTPClient) uploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open media file: %w", err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", f)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.upload.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload %s: %s", resp.Status, string(body))
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("upload decode: %w", err)
	}
	c.logger.Debug().Str("path", path).Msg("Media uploaded")
	return out.UploadURL, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, url string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("%s %s: %s", req.Method, resp.Status, strings.TrimSpace(string(body)))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return resilience.NewRetryableError(err)
		}
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isTransient(err error) bool {
	return resilience.IsRetryable(err) || resilience.IsRetryableNetworkError(err)
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
