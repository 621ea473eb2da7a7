package pipeline

import (
	"context"

	"github.com/emoscribe/emoscribe/internal/classify"
	"github.com/emoscribe/emoscribe/internal/transcribe"
)

// Documented stub values: one canned two-second sentence, neutral label,
// zero confidence. Mock-mode runs always produce exactly this table.
const (
	StubJobID    = "mock-job"
	StubLanguage = "en"
	StubSentence = "This is a mock sentence."
	StubEmotion  = "neutral"
)

type stubJobClient struct{}

func (s *stubJobClient) Submit(ctx context.Context, mediaSource, languageHint string) (string, error) {
	return StubJobID, nil
}

func (s *stubJobClient) AwaitCompletion(ctx context.Context, jobID string) (*transcribe.CompletedJob, error) {
	return &transcribe.CompletedJob{ID: jobID, Language: StubLanguage}, nil
}

func (s *stubJobClient) FetchSentences(ctx context.Context, jobID string) ([]transcribe.Sentence, error) {
	return []transcribe.Sentence{{StartMS: 0, EndMS: 2000, Text: StubSentence}}, nil
}

type stubTranslator struct{}

func (s *stubTranslator) Translate(ctx context.Context, text, sourceLang string) (string, error) {
	return text, nil
}

type stubClassifier struct{}

func (s *stubClassifier) Classify(ctx context.Context, text string) (classify.Result, error) {
	return classify.Result{Label: StubEmotion, Confidence: 0}, nil
}
