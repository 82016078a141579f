package app

import (
	"errors"
	"fmt"

	"github.com/vk/varflow/internal/formatting"
	"github.com/vk/varflow/internal/tracing"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Sources    []string // transform files, directories or dotted identifiers
	DataPath   string   // input dataset, .csv or .json
	OutputPath string   // empty prints a table
	Head       int

	// PartitionSize enables partitioned execution when positive.
	PartitionSize   int
	Workers         int
	AllowUndeclared bool

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	Trace           tracing.Config
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Sources) == 0 {
		return nil, errors.New("at least one transform source is required")
	}
	if cfg.DataPath == "" {
		return nil, errors.New("DataPath is a required configuration field and cannot be empty")
	}
	if _, err := formatting.FormatFromPath(cfg.DataPath); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if cfg.OutputPath != "" {
		if _, err := formatting.FormatFromPath(cfg.OutputPath); err != nil {
			return nil, fmt.Errorf("invalid output path: %w", err)
		}
	}
	if cfg.PartitionSize < 0 {
		return nil, fmt.Errorf("partition size must not be negative, got %d", cfg.PartitionSize)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	if cfg.Head < 0 {
		return nil, fmt.Errorf("head must not be negative, got %d", cfg.Head)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if _, ok := logLevels[cfg.LogLevel]; !ok {
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	switch cfg.Trace.Exporter {
	case "", tracing.ExporterNone, tracing.ExporterStdout, tracing.ExporterOTLP:
	default:
		return nil, fmt.Errorf("invalid trace exporter %q: must be 'none', 'stdout', or 'otlp'", cfg.Trace.Exporter)
	}

	return &cfg, nil
}
