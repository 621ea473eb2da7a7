package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	os.Setenv("ASSEMBLYAI_API_KEY", "test-key")
	defer os.Unsetenv("ASSEMBLYAI_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.TranscribeAPIKey != "test-key" {
		t.Errorf("Expected TranscribeAPIKey 'test-key', got '%s'", cfg.TranscribeAPIKey)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("ASSEMBLYAI_API_KEY")
	os.Unsetenv("MOCK_MODE")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when API key is missing")
	}
}

func TestLoad_MockModeNeedsNoKey(t *testing.T) {
	os.Unsetenv("ASSEMBLYAI_API_KEY")
	os.Setenv("MOCK_MODE", "true")
	defer os.Unsetenv("MOCK_MODE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed in mock mode: %v", err)
	}
	if !cfg.MockMode {
		t.Error("Expected MockMode to be true")
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("ASSEMBLYAI_API_KEY", "test-key")
	defer os.Unsetenv("ASSEMBLYAI_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.TranscribeBaseURL != "https://api.assemblyai.com/v2" {
		t.Errorf("Unexpected default base URL: %s", cfg.TranscribeBaseURL)
	}
	if cfg.PollInterval != 5 {
		t.Errorf("Expected default PollInterval 5, got %d", cfg.PollInterval)
	}
	if cfg.TranslateTriggerLang != "pl" {
		t.Errorf("Expected default trigger language 'pl', got '%s'", cfg.TranslateTriggerLang)
	}
	if cfg.SaveTo != "output" {
		t.Errorf("Expected default SaveTo 'output', got '%s'", cfg.SaveTo)
	}
	if cfg.OutputFilename != "final_predictions.csv" {
		t.Errorf("Expected default filename 'final_predictions.csv', got '%s'", cfg.OutputFilename)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default LogLevel 'info', got '%s'", cfg.LogLevel)
	}
}

func TestLoad_Overrides(t *testing.T) {
	os.Setenv("ASSEMBLYAI_API_KEY", "test-key")
	os.Setenv("POLL_INTERVAL", "1")
	os.Setenv("SAVE_TO", "output,desktop")
	defer func() {
		os.Unsetenv("ASSEMBLYAI_API_KEY")
		os.Unsetenv("POLL_INTERVAL")
		os.Unsetenv("SAVE_TO")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.PollInterval != 1 {
		t.Errorf("Expected PollInterval 1, got %d", cfg.PollInterval)
	}
	if cfg.SaveTo != "output,desktop" {
		t.Errorf("Expected SaveTo 'output,desktop', got '%s'", cfg.SaveTo)
	}
}

func TestLoad_InvalidPollInterval(t *testing.T) {
	os.Setenv("ASSEMBLYAI_API_KEY", "test-key")
	os.Setenv("POLL_INTERVAL", "0")
	defer func() {
		os.Unsetenv("ASSEMBLYAI_API_KEY")
		os.Unsetenv("POLL_INTERVAL")
	}()

	if _, err := Load(); err == nil {
		t.Error("Expected error for zero poll interval")
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_CONFIG_KEY", "value")
	defer os.Unsetenv("TEST_CONFIG_KEY")

	if got := GetEnv("TEST_CONFIG_KEY", "fallback"); got != "value" {
		t.Errorf("Expected 'value', got '%s'", got)
	}
	if got := GetEnv("TEST_CONFIG_MISSING", "fallback"); got != "fallback" {
		t.Errorf("Expected 'fallback', got '%s'", got)
	}
}
