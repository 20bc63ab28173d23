package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// validConfigYAML is a minimal valid configuration.
const validConfigYAML = `
processor:
  source_root: "./raw"
  destination_root: "./out"
  partitions: 4
  tie_break: "last_wins"
  include_small: true
  retry:
    max_attempts: 3
    initial_delay_ms: 100
    max_delay_ms: 5000
    backoff_multiplier: 2.0
  logging:
    level: "info"
    format: "text"
`

func validConfig() *Config {
	cfg := Default()
	cfg.Processor.SourceRoot = "./raw"
	cfg.Processor.DestinationRoot = "./out"

	return cfg
}

func TestLoadConfig_Valid(t *testing.T) {
	configPath := createTempConfigFile(t, validConfigYAML)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Processor.SourceRoot != "./raw" {
		t.Errorf("Expected source_root './raw', got '%s'", cfg.Processor.SourceRoot)
	}

	if cfg.Processor.Partitions != 4 {
		t.Errorf("Expected 4 partitions, got %d", cfg.Processor.Partitions)
	}

	if cfg.Processor.TieBreak != TieBreakLastWins {
		t.Errorf("Expected tie_break 'last_wins', got '%s'", cfg.Processor.TieBreak)
	}
}

func TestLoadConfig_DefaultsPreserved(t *testing.T) {
	// A file that only sets the roots keeps all other defaults.
	configPath := createTempConfigFile(t, `
processor:
  source_root: "./raw"
  destination_root: "./out"
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Processor.Retry.MaxAttempts != 3 {
		t.Errorf("Expected default max_attempts 3, got %d", cfg.Processor.Retry.MaxAttempts)
	}

	if cfg.Processor.Logging.Level != "info" {
		t.Errorf("Expected default log level 'info', got '%s'", cfg.Processor.Logging.Level)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Expected error for nonexistent file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := createTempConfigFile(t, "invalid: yaml: content: [}")

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
}

func TestConfig_Validate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "Missing source root",
			mutate:  func(c *Config) { c.Processor.SourceRoot = "" },
			wantErr: ErrMissingSourceRoot,
		},
		{
			name:    "Missing destination root",
			mutate:  func(c *Config) { c.Processor.DestinationRoot = "" },
			wantErr: ErrMissingDestinationRoot,
		},
		{
			name:    "Zero partitions",
			mutate:  func(c *Config) { c.Processor.Partitions = 0 },
			wantErr: ErrInvalidPartitions,
		},
		{
			name:    "Unknown tie-break policy",
			mutate:  func(c *Config) { c.Processor.TieBreak = "most_complete_wins" },
			wantErr: ErrInvalidTieBreak,
		},
		{
			name:    "Zero retry attempts",
			mutate:  func(c *Config) { c.Processor.Retry.MaxAttempts = 0 },
			wantErr: ErrInvalidMaxAttempts,
		},
		{
			name:    "Negative initial delay",
			mutate:  func(c *Config) { c.Processor.Retry.InitialDelayMs = -1 },
			wantErr: ErrInvalidInitialDelay,
		},
		{
			name:    "Backoff multiplier below one",
			mutate:  func(c *Config) { c.Processor.Retry.BackoffMultiplier = 0.5 },
			wantErr: ErrInvalidBackoffMultiplier,
		},
		{
			name:    "Invalid log level",
			mutate:  func(c *Config) { c.Processor.Logging.Level = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "Invalid log format",
			mutate:  func(c *Config) { c.Processor.Logging.Format = "xml" },
			wantErr: ErrInvalidLogFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() returned unexpected error: %v", err)
	}
}

func TestRetryPolicy_GetRetryDelay(t *testing.T) {
	rp := &RetryPolicy{
		MaxAttempts:       5,
		InitialDelayMs:    100,
		MaxDelayMs:        1000,
		BackoffMultiplier: 2.0,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 0},
		{2, 100 * time.Millisecond},
		{3, 200 * time.Millisecond},
		{4, 400 * time.Millisecond},
		{6, 1000 * time.Millisecond}, // capped
	}

	for _, tt := range tests {
		if got := rp.GetRetryDelay(tt.attempt); got != tt.want {
			t.Errorf("GetRetryDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	cfg := validConfig()
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig after save failed: %v", err)
	}

	if loaded.String() != cfg.String() {
		t.Errorf("Reloaded config %s != saved %s", loaded.String(), cfg.String())
	}
}
