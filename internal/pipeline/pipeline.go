// Package pipeline composes the annotation pipeline: submit media for
// transcription, await the job, enrich each sentence, and persist the
// resulting table.
package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/emoscribe/emoscribe/internal/annotate"
	"github.com/emoscribe/emoscribe/internal/config"
	"github.com/emoscribe/emoscribe/internal/history"
	"github.com/emoscribe/emoscribe/internal/observability"
	"github.com/emoscribe/emoscribe/internal/persist"
)

// Result is the output of one pipeline run.
type Result struct {
	RunID        string
	JobID        string
	Language     string // language code reported or detected by the service
	Table        *annotate.Table
	WrittenPaths []string
	// PersistErr aggregates per-destination write failures. It is set when
	// some destinations failed while at least one succeeded; the run is
	// still considered successful.
	PersistErr error
}

// Pipeline is the single entry point for producing an annotation table
// from a media source.
type Pipeline struct {
	provider *ServiceProvider
	enricher *annotate.Enricher
	sink     *persist.Sink
	runs     *history.RunRepository // nil disables the run journal
	logger   zerolog.Logger
}

// New creates a pipeline. A nil provider selects one from configuration
// (live collaborators, or stubs in mock mode).
func New(cfg *config.Config, provider *ServiceProvider) *Pipeline {
	if provider == nil {
		provider = NewProvider(cfg)
	}
	return &Pipeline{
		provider: provider,
		enricher: annotate.NewEnricher(provider.Translator, provider.Classifier, cfg.TranslateTriggerLang),
		sink:     persist.NewSink(cfg.OutputDir),
		logger:   observability.GetLogger().With().Str("component", "pipeline").Logger(),
	}
}

// WithHistory enables the run journal.
func (p *Pipeline) WithHistory(runs *history.RunRepository) *Pipeline {
	p.runs = runs
	return p
}

// Run executes the pipeline end-to-end. Job-scoped failures abort the run
// with a StageError (or CancelledError); segment-scoped failures degrade
// individual rows and the run completes. Partial persistence failure is
// surfaced in Result.PersistErr while the successfully written paths are
// returned.
func (p *Pipeline) Run(ctx context.Context, mediaSource, destTokens, filename, languageHint string) (*Result, error) {
	runID := observability.NewRunID()
	logger := observability.WithRunID(runID)
	start := time.Now()

	logger.Info().
		Str("media_source", mediaSource).
		Str("destinations", destTokens).
		Str("language_hint", languageHint).
		Msg("Pipeline run starting")

	if p.runs != nil {
		if err := p.runs.Start(ctx, runID, mediaSource); err != nil {
			logger.Warn().Err(err).Msg("Run journal unavailable")
		}
	}

	fatal := func(stage string, err error) (*Result, error) {
		wrapped := stageErr(stage, err)
		logger.Error().Err(wrapped).Str("stage", stage).Msg("Pipeline run failed")
		if p.runs != nil {
			// The run's own context may already be cancelled.
			_ = p.runs.Fail(context.Background(), runID, wrapped.Error())
		}
		observability.RecordRun(false, time.Since(start))
		return nil, wrapped
	}

	stageStart := time.Now()
	jobID, err := p.provider.Jobs.Submit(ctx, mediaSource, languageHint)
	if err != nil {
		return fatal(StageSubmit, err)
	}
	observability.ObserveStage(StageSubmit, time.Since(stageStart))

	stageStart = time.Now()
	job, err := p.provider.Jobs.AwaitCompletion(ctx, jobID)
	if err != nil {
		return fatal(StageTranscribe, err)
	}
	observability.ObserveStage(StageTranscribe, time.Since(stageStart))

	stageStart = time.Now()
	sentences, err := p.provider.Jobs.FetchSentences(ctx, jobID)
	if err != nil {
		return fatal(StageFetch, err)
	}
	observability.ObserveStage(StageFetch, time.Since(stageStart))

	// Enrichment is strictly sequential: the table's row order is the
	// transcript order of the sentences.
	table := annotate.NewTable(len(sentences))
	for _, sentence := range sentences {
		if err := ctx.Err(); err != nil {
			return fatal(StageEnrich, err)
		}
		seg := p.enricher.Process(ctx, sentence, job.Language)
		table.Append(seg)
		logger.Info().
			Str("sentence", seg.Sentence.Text).
			Str("emotion", seg.Emotion).
			Float64("confidence", seg.Confidence).
			Bool("degraded", !seg.Outcome.OK).
			Msg("Sentence annotated")
	}

	stageStart = time.Now()
	paths, persistErr := p.sink.Write(table, destTokens, filename)
	observability.ObserveStage(StagePersist, time.Since(stageStart))
	if persistErr != nil && len(paths) == 0 {
		// Every destination failed; nothing was persisted.
		return fatal(StagePersist, persistErr)
	}

	result := &Result{
		RunID:        runID,
		JobID:        jobID,
		Language:     job.Language,
		Table:        table,
		WrittenPaths: paths,
		PersistErr:   persistErr,
	}

	if p.runs != nil {
		if err := p.runs.Complete(ctx, runID, job.Language, table.Len(), paths); err != nil {
			logger.Warn().Err(err).Msg("Failed to journal run completion")
		}
	}

	observability.RecordRun(true, time.Since(start))
	logger.Info().
		Str("job_id", jobID).
		Str("language", job.Language).
		Int("sentences", table.Len()).
		Strs("written_paths", paths).
		Dur("elapsed", time.Since(start)).
		Msg("Pipeline run complete")
	return result, nil
}
