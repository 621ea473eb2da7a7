// Package translate holds the translation collaborator used to bring
// non-English transcript sentences into English before classification.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Translator translates a sentence from the given source language.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang string) (string, error)
}

// HTTPTranslator calls a translation model server
// (POST /translate {text, source_lang} -> {translation}).
type HTTPTranslator struct {
	url  string
	http *http.Client
}

// NewHTTPTranslator creates a translator client for the given endpoint.
func NewHTTPTranslator(url string, timeout time.Duration) *HTTPTranslator {
	return &HTTPTranslator{
		url:  strings.TrimRight(url, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

type translateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
}

type translateResponse struct {
	Translation string `json:"translation"`
}

func (t *HTTPTranslator) Translate(ctx context.Context, text, sourceLang string) (string, error) {
	payload, err := json.Marshal(translateRequest{Text: text, SourceLang: sourceLang})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url+"/translate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("translate %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("translate decode: %w", err)
	}
	if out.Translation == "" {
		return "", fmt.Errorf("translate: empty translation returned")
	}
	return out.Translation, nil
}
