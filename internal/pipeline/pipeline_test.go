package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/emoscribe/emoscribe/internal/classify"
	"github.com/emoscribe/emoscribe/internal/config"
	"github.com/emoscribe/emoscribe/internal/transcribe"
)

type fakeJobs struct {
	language  string
	sentences []transcribe.Sentence
	submitErr error
	awaitErr  error
	fetchErr  error
}

func (f *fakeJobs) Submit(ctx context.Context, mediaSource, languageHint string) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return "job-1", nil
}

func (f *fakeJobs) AwaitCompletion(ctx context.Context, jobID string) (*transcribe.CompletedJob, error) {
	if f.awaitErr != nil {
		return nil, f.awaitErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &transcribe.CompletedJob{ID: jobID, Language: f.language}, nil
}

func (f *fakeJobs) FetchSentences(ctx context.Context, jobID string) ([]transcribe.Sentence, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.sentences, nil
}

type fixedClassifier struct {
	result classify.Result
}

func (f *fixedClassifier) Classify(ctx context.Context, text string) (classify.Result, error) {
	return f.result, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		OutputDir:            filepath.Join(t.TempDir(), "out"),
		TranslateTriggerLang: "pl",
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Parse %s: %v", path, err)
	}
	return records
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	provider := &ServiceProvider{
		Jobs: &fakeJobs{
			language: "en",
			sentences: []transcribe.Sentence{
				{StartMS: 0, EndMS: 500, Text: "hi"},
				{StartMS: 500, EndMS: 1500, Text: "bye"},
			},
		},
		Classifier: &fixedClassifier{result: classify.Result{Label: "joy", Confidence: 99.9}},
	}

	result, err := New(cfg, provider).Run(context.Background(), "https://example.com/a.mp3", "output", "result.csv", "en")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Language != "en" {
		t.Errorf("Expected language en, got %s", result.Language)
	}
	if result.Table.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", result.Table.Len())
	}
	if len(result.WrittenPaths) != 1 {
		t.Fatalf("Expected 1 written path, got %v", result.WrittenPaths)
	}
	if result.PersistErr != nil {
		t.Errorf("Unexpected persist error: %v", result.PersistErr)
	}

	wantRows := [][]string{
		{"00:00:00,000", "00:00:00,500", "hi", "hi", "joy", "99.9"},
		{"00:00:00,500", "00:00:01,500", "bye", "bye", "joy", "99.9"},
	}
	if got := result.Table.Rows(); !reflect.DeepEqual(got, wantRows) {
		t.Errorf("Table rows = %v, want %v", got, wantRows)
	}

	records := readCSV(t, result.WrittenPaths[0])
	if len(records) != 3 {
		t.Fatalf("Expected header + 2 rows in file, got %d", len(records))
	}
	if !reflect.DeepEqual(records[1], wantRows[0]) || !reflect.DeepEqual(records[2], wantRows[1]) {
		t.Errorf("File rows mismatch: %v", records[1:])
	}
}

func TestRun_TranscriptionFailedWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	provider := &ServiceProvider{
		Jobs: &fakeJobs{
			awaitErr: &transcribe.TranscriptionFailed{JobID: "job-1", Reason: "bad audio"},
		},
		Classifier: &fixedClassifier{},
	}

	_, err := New(cfg, provider).Run(context.Background(), "https://example.com/a.mp3", "output", "result.csv", "en")
	if err == nil {
		t.Fatal("Expected run to fail")
	}

	var tf *transcribe.TranscriptionFailed
	if !errors.As(err, &tf) {
		t.Fatalf("Expected TranscriptionFailed, got %v", err)
	}
	if tf.Reason != "bad audio" {
		t.Errorf("Expected reason 'bad audio', got %q", tf.Reason)
	}

	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageTranscribe {
		t.Errorf("Expected stage %q, got %v", StageTranscribe, err)
	}

	if _, statErr := os.Stat(filepath.Join(cfg.OutputDir, "result.csv")); !os.IsNotExist(statErr) {
		t.Error("No file should be written on a fatal job error")
	}
}

func TestRun_SubmitFailure(t *testing.T) {
	cfg := testConfig(t)
	provider := &ServiceProvider{
		Jobs:       &fakeJobs{submitErr: &transcribe.SubmissionError{Err: errors.New("connection refused")}},
		Classifier: &fixedClassifier{},
	}

	_, err := New(cfg, provider).Run(context.Background(), "a.mp3", "output", "result.csv", "auto")

	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageSubmit {
		t.Fatalf("Expected submit stage error, got %v", err)
	}
	var sub *transcribe.SubmissionError
	if !errors.As(err, &sub) {
		t.Fatalf("Expected SubmissionError in chain, got %v", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	provider := &ServiceProvider{
		Jobs:       &fakeJobs{language: "en"},
		Classifier: &fixedClassifier{},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(cfg, provider).Run(ctx, "https://example.com/a.mp3", "output", "result.csv", "en")

	var ce *CancelledError
	if !errors.As(err, &ce) {
		t.Fatalf("Expected CancelledError, got %v", err)
	}
}

func TestRun_EmptyTranscript(t *testing.T) {
	cfg := testConfig(t)
	provider := &ServiceProvider{
		Jobs:       &fakeJobs{language: "en", sentences: nil},
		Classifier: &fixedClassifier{result: classify.Result{Label: "joy", Confidence: 50}},
	}

	result, err := New(cfg, provider).Run(context.Background(), "https://example.com/a.mp3", "output", "result.csv", "en")
	if err != nil {
		t.Fatalf("Empty transcript should not fail the run: %v", err)
	}
	if result.Table.Len() != 0 {
		t.Errorf("Expected empty table, got %d rows", result.Table.Len())
	}
	if len(result.WrittenPaths) != 1 {
		t.Errorf("Header-only file should still be written, got %v", result.WrittenPaths)
	}
}

func TestRun_AllDestinationsFailed(t *testing.T) {
	tmp := t.TempDir()
	blocked := filepath.Join(tmp, "blocked")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		// The output directory's parent is a plain file, so MkdirAll fails.
		OutputDir:            filepath.Join(blocked, "out"),
		TranslateTriggerLang: "pl",
	}
	provider := &ServiceProvider{
		Jobs:       &fakeJobs{language: "en", sentences: []transcribe.Sentence{{StartMS: 0, EndMS: 500, Text: "hi"}}},
		Classifier: &fixedClassifier{result: classify.Result{Label: "joy", Confidence: 50}},
	}

	_, err := New(cfg, provider).Run(context.Background(), "https://example.com/a.mp3", "output", "result.csv", "en")

	var se *StageError
	if !errors.As(err, &se) || se.Stage != StagePersist {
		t.Fatalf("Expected persist stage error when every destination fails, got %v", err)
	}
}

func TestRun_MockMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.MockMode = true

	result, err := New(cfg, nil).Run(context.Background(), "anything.mp3", "output", "result.csv", "auto")
	if err != nil {
		t.Fatalf("Mock run failed: %v", err)
	}

	if result.JobID != StubJobID {
		t.Errorf("Expected stub job ID, got %s", result.JobID)
	}
	if result.Table.Len() != 1 {
		t.Fatalf("Expected canned single-row table, got %d rows", result.Table.Len())
	}

	want := []string{"00:00:00,000", "00:00:02,000", StubSentence, StubSentence, StubEmotion, "0"}
	if got := result.Table.Rows()[0]; !reflect.DeepEqual(got, want) {
		t.Errorf("Canned row = %v, want %v", got, want)
	}
}
