package observability

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	globalLogger zerolog.Logger
	initialized  bool
)

// InitLogger initializes the global structured logger.
func InitLogger(level string, pretty bool) {
	if initialized {
		return
	}

	logLevel := zerolog.InfoLevel
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	case "fatal":
		logLevel = zerolog.FatalLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	if pretty {
		// Pretty console output for development
		output := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
		globalLogger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		// JSON output for production
		globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	log.Logger = globalLogger
	initialized = true
}

// GetLogger returns the global logger.
func GetLogger() zerolog.Logger {
	if !initialized {
		InitLogger("info", false)
	}
	return globalLogger
}

// WithRunID creates a logger tagged with a pipeline run ID.
func WithRunID(runID string) zerolog.Logger {
	if runID == "" {
		runID = NewRunID()
	}
	return GetLogger().With().Str("run_id", runID).Logger()
}

// NewRunID generates a new pipeline run ID.
func NewRunID() string {
	return uuid.New().String()
}
