package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the annotation pipeline.
type Config struct {
	// Transcription service (AssemblyAI-compatible REST API)
	TranscribeAPIKey  string `envconfig:"ASSEMBLYAI_API_KEY" default:""`
	TranscribeBaseURL string `envconfig:"ASSEMBLYAI_BASE_URL" default:"https://api.assemblyai.com/v2"`
	PollInterval      int    `envconfig:"POLL_INTERVAL" default:"5"`        // Seconds between job status polls
	PollDeadline      int    `envconfig:"POLL_DEADLINE" default:"900"`      // Max seconds to wait for a job; 0 disables the cap
	RequestTimeout    int    `envconfig:"REQUEST_TIMEOUT" default:"60"`     // Per-request HTTP timeout in seconds
	UploadTimeout     int    `envconfig:"UPLOAD_TIMEOUT" default:"600"`     // HTTP timeout for media uploads in seconds

	// Translation collaborator (invoked only for the trigger language)
	TranslatorURL        string `envconfig:"TRANSLATOR_URL" default:""`
	TranslateTriggerLang string `envconfig:"TRANSLATE_TRIGGER_LANG" default:"pl"`

	// Emotion classification collaborator
	ClassifierURL    string `envconfig:"CLASSIFIER_URL" default:""`
	ClassifierAPIKey string `envconfig:"CLASSIFIER_API_KEY" default:""`

	// Output
	SaveTo         string `envconfig:"SAVE_TO" default:"output"`                     // Comma-separated destination tokens
	OutputDir      string `envconfig:"OUTPUT_DIR" default:"output"`                  // Directory behind the "output" token
	OutputFilename string `envconfig:"OUTPUT_FILENAME" default:"final_predictions.csv"`
	HistoryDBPath  string `envconfig:"HISTORY_DB_PATH" default:""` // SQLite run journal; empty disables it

	// Mock mode swaps every external collaborator for deterministic stubs.
	MockMode bool `envconfig:"MOCK_MODE" default:"false"`

	// Resilience configuration
	RetryMaxAttempts    int `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	RetryInitialBackoff int `envconfig:"RETRY_INITIAL_BACKOFF" default:"100"` // Milliseconds
	BreakerMaxFailures  int `envconfig:"BREAKER_MAX_FAILURES" default:"5"`
	BreakerResetTimeout int `envconfig:"BREAKER_RESET_TIMEOUT" default:"30"` // Seconds

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"false"`
	MetricsPort    string `envconfig:"METRICS_PORT" default:"9102"`
}

// Load reads configuration from environment variables, first loading a
// .env file if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without touching a .env file (useful for containerized deployments).
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Mock mode runs fully offline; everything else needs the API key.
	if !cfg.MockMode && cfg.TranscribeAPIKey == "" {
		return nil, fmt.Errorf("ASSEMBLYAI_API_KEY is required unless MOCK_MODE is set")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL must be positive")
	}

	return &cfg, nil
}

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
