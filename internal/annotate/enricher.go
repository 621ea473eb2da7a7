package annotate

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/emoscribe/emoscribe/internal/classify"
	"github.com/emoscribe/emoscribe/internal/observability"
	"github.com/emoscribe/emoscribe/internal/transcribe"
	"github.com/emoscribe/emoscribe/internal/translate"
)

// SentinelLabel marks a segment whose classification failed.
const SentinelLabel = "unknown"

// Enricher translates (when the detected language matches the trigger
// code) and classifies one sentence at a time. Collaborator failures are
// segment-scoped: the segment degrades, the batch continues.
type Enricher struct {
	translator translate.Translator
	classifier classify.Classifier
	trigger    string // language code that gets translated before classification
	logger     zerolog.Logger
}

// NewEnricher creates an enricher. A nil translator disables translation;
// the original text is then used verbatim.
func NewEnricher(translator translate.Translator, classifier classify.Classifier, trigger string) *Enricher {
	return &Enricher{
		translator: translator,
		classifier: classifier,
		trigger:    trigger,
		logger:     observability.GetLogger().With().Str("component", "enricher").Logger(),
	}
}

// Process enriches one sentence. It never returns an error: translation
// failure falls back to the untranslated text and classification failure
// yields the sentinel label with zero confidence, both recorded in the
// segment's outcome.
func (e *Enricher) Process(ctx context.Context, s transcribe.Sentence, language string) Segment {
	seg := Segment{
		Sentence:    s,
		Translation: s.Text,
		Outcome:     Outcome{OK: true},
	}

	if e.translator != nil && language == e.trigger {
		translated, err := e.translator.Translate(ctx, s.Text, language)
		if err != nil {
			e.logger.Warn().Err(err).Str("sentence", s.Text).Msg("Translation failed, using original text")
			seg.Outcome = Outcome{OK: false, Reason: "translation failed: " + err.Error()}
		} else {
			seg.Translation = translated
			e.logger.Debug().Str("original", s.Text).Str("translated", translated).Msg("Sentence translated")
		}
	}

	result, err := e.classifier.Classify(ctx, seg.Translation)
	if err != nil {
		e.logger.Warn().Err(err).Str("sentence", s.Text).Msg("Classification failed, using sentinel label")
		seg.Emotion = SentinelLabel
		seg.Confidence = 0
		seg.Outcome = Outcome{OK: false, Reason: "classification failed: " + err.Error()}
		observability.RecordSegment("degraded")
		return seg
	}

	seg.Emotion = result.Label
	seg.Confidence = result.Confidence
	if seg.Outcome.OK {
		observability.RecordSegment("ok")
	} else {
		observability.RecordSegment("degraded")
	}
	return seg
}
