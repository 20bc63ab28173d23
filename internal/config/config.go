// Package config provides configuration management for the movie data
// processor.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingSourceRoot        = errors.New("processor.source_root is required")
	ErrMissingDestinationRoot   = errors.New("processor.destination_root is required")
	ErrInvalidPartitions        = errors.New("processor.partitions must be at least 1")
	ErrInvalidTieBreak          = errors.New("processor.tie_break must be 'last_wins' or 'first_wins'")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
)

// Tie-break policies for duplicate entity attribute conflicts.
const (
	TieBreakLastWins  = "last_wins"
	TieBreakFirstWins = "first_wins"
)

// Config represents the complete processor configuration.
type Config struct {
	Processor ProcessorConfig `yaml:"processor"`
}

// ProcessorConfig contains the run settings.
type ProcessorConfig struct {
	SourceRoot      string        `yaml:"source_root"`
	DestinationRoot string        `yaml:"destination_root"`
	TieBreak        string        `yaml:"tie_break"`
	Partitions      int           `yaml:"partitions"`
	IncludeSmall    bool          `yaml:"include_small"`
	Retry           RetryPolicy   `yaml:"retry"`
	Logging         LoggingConfig `yaml:"logging"`
}

// RetryPolicy defines per-partition retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Processor: ProcessorConfig{
			TieBreak:     TieBreakLastWins,
			Partitions:   runtime.NumCPU(),
			IncludeSmall: true,
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    200,
				MaxDelayMs:        5000,
				BackoffMultiplier: 2.0,
			},
			Logging: LoggingConfig{
				Level:  "info",
				Format: "text",
			},
		},
	}
}

// LoadConfig loads configuration from a YAML file. Fields left empty in the
// file keep their defaults.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	p := &c.Processor

	if p.SourceRoot == "" {
		return ErrMissingSourceRoot
	}

	if p.DestinationRoot == "" {
		return ErrMissingDestinationRoot
	}

	if p.Partitions < 1 {
		return ErrInvalidPartitions
	}

	if p.TieBreak != TieBreakLastWins && p.TieBreak != TieBreakFirstWins {
		return ErrInvalidTieBreak
	}

	if p.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if p.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if p.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[p.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if p.Logging.Format != "text" && p.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{SourceRoot: %s, DestinationRoot: %s, Partitions: %d, TieBreak: %s}",
		c.Processor.SourceRoot,
		c.Processor.DestinationRoot,
		c.Processor.Partitions,
		c.Processor.TieBreak,
	)
}
