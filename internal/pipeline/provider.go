package pipeline

import (
	"time"

	"github.com/emoscribe/emoscribe/internal/classify"
	"github.com/emoscribe/emoscribe/internal/config"
	"github.com/emoscribe/emoscribe/internal/resilience"
	"github.com/emoscribe/emoscribe/internal/transcribe"
	"github.com/emoscribe/emoscribe/internal/translate"
)

// ServiceProvider bundles the external collaborators for a pipeline.
// It is chosen once at construction; orchestration logic never consults
// ambient state to decide which implementation it is talking to.
type ServiceProvider struct {
	Jobs       transcribe.Client
	Translator translate.Translator // nil disables translation
	Classifier classify.Classifier
}

// NewProvider selects live collaborators, or deterministic stubs when
// mock mode is configured.
func NewProvider(cfg *config.Config) *ServiceProvider {
	if cfg.MockMode {
		return StubProvider()
	}
	return LiveProvider(cfg)
}

// LiveProvider wires the real HTTP collaborators from configuration.
func LiveProvider(cfg *config.Config) *ServiceProvider {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second

	var translator translate.Translator
	if cfg.TranslatorURL != "" {
		translator = translate.NewHTTPTranslator(cfg.TranslatorURL, timeout)
	}

	breaker := resilience.NewCircuitBreaker("classifier",
		cfg.BreakerMaxFailures, time.Duration(cfg.BreakerResetTimeout)*time.Second)

	return &ServiceProvider{
		Jobs:       transcribe.NewHTTPClient(cfg),
		Translator: translator,
		Classifier: classify.NewHTTPClassifier(cfg.ClassifierURL, cfg.ClassifierAPIKey, timeout, breaker),
	}
}

// StubProvider returns the offline collaborators used for mock mode,
// documentation builds and fast tests.
func StubProvider() *ServiceProvider {
	return &ServiceProvider{
		Jobs:       &stubJobClient{},
		Translator: &stubTranslator{},
		Classifier: &stubClassifier{},
	}
}
