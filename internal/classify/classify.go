// Package classify holds the emotion classification collaborator.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/emoscribe/emoscribe/internal/resilience"
)

// Result is one classification outcome. Confidence is a percentage in
// [0, 100], not a fraction.
type Result struct {
	Label      string
	Confidence float64
}

// Classifier predicts the emotion of a single sentence.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

// HTTPClassifier calls a deployed classification endpoint
// (POST {text} -> {predicted_label, confidence}) with bearer auth.
// Calls run behind a circuit breaker so a dead endpoint degrades fast
// instead of costing a full timeout for every sentence in the batch.
type HTTPClassifier struct {
	url     string
	apiKey  string
	http    *http.Client
	breaker *resilience.CircuitBreaker
}

// NewHTTPClassifier creates a classifier client for the given endpoint.
func NewHTTPClassifier(url, apiKey string, timeout time.Duration, breaker *resilience.CircuitBreaker) *HTTPClassifier {
	return &HTTPClassifier{
		url:     url,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		breaker: breaker,
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	PredictedLabel string  `json:"predicted_label"`
	Confidence     float64 `json:"confidence"`
	Error          string  `json:"error"`
}

func (c *HTTPClassifier) Classify(ctx context.Context, text string) (Result, error) {
	var result Result
	call := func() error {
		r, err := c.classify(ctx, text)
		if err != nil {
			return err
		}
		result = r
		return nil
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Call(call)
	} else {
		err = call()
	}
	return result, err
}

func (c *HTTPClassifier) classify(ctx context.Context, text string) (Result, error) {
	payload, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("classify %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("classify decode: %w", err)
	}
	// The scoring script reports model-side failures as {"error": "..."}
	// with a 200 status; surface them as errors.
	if out.Error != "" {
		return Result{}, fmt.Errorf("classify model error: %s", out.Error)
	}
	if out.Confidence < 0 || out.Confidence > 100 {
		return Result{}, fmt.Errorf("classify: confidence %v out of range", out.Confidence)
	}

	return Result{Label: out.PredictedLabel, Confidence: out.Confidence}, nil
}
