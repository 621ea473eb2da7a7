package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"time"
)

// RetryConfig holds configuration for retry logic.
type RetryConfig struct {
	MaxAttempts    int           // Maximum number of attempts (including the first)
	InitialBackoff time.Duration // Backoff before the second attempt
	MaxBackoff     time.Duration // Upper bound for a single backoff
	Multiplier     float64       // Exponential growth factor
	Jitter         bool          // Add up to 25% random jitter to each backoff
}

// DefaultRetryConfig returns the retry configuration used for transport
// calls when nothing else is configured.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Multiplier:     2.0,
		Jitter:         true,
	}
}

// RetryableFunc is a function that can be retried.
type RetryableFunc func(ctx context.Context) error

// IsRetryableError reports whether a failed attempt should be retried.
type IsRetryableError func(error) bool

// Retry executes fn with exponential backoff between failed attempts.
// A nil isRetryable retries every error. Context cancellation stops the
// loop immediately and returns the context's error.
func Retry(ctx context.Context, fn RetryableFunc, config *RetryConfig, isRetryable IsRetryableError) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error
	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if isRetryable != nil && !isRetryable(err) {
			return err
		}
		if attempt == config.MaxAttempts-1 {
			break
		}

		sleep := CalculateBackoff(attempt, config.InitialBackoff, config.MaxBackoff, config.Multiplier)
		if config.Jitter {
			sleep += time.Duration(rand.Int63n(int64(sleep)/4 + 1))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}

	return lastErr
}

// CalculateBackoff returns the backoff duration for a given zero-based
// attempt number.
func CalculateBackoff(attempt int, initial, max time.Duration, multiplier float64) time.Duration {
	backoff := time.Duration(float64(initial) * math.Pow(multiplier, float64(attempt)))
	if backoff > max {
		return max
	}
	return backoff
}

// IsRetryableNetworkError reports whether err looks like a transient
// transport fault worth retrying.
func IsRetryableNetworkError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	for _, s := range []string{
		"connection refused",
		"connection reset",
		"connection closed",
		"network is unreachable",
		"no route to host",
		"unavailable",
		"i/o timeout",
		"deadline exceeded",
		"timeout",
		"too many requests",
		"rate limit",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// RetryableError marks an error as retryable regardless of its text.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// NewRetryableError wraps err as retryable; a nil err stays nil.
func NewRetryableError(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable checks if an error was wrapped with NewRetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}
