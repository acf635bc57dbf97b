package config

import (
	"fmt"
	"time"
)

// Config holds server configuration
type Config struct {
	// Definition directories
	SLADirectory   string
	CheckDirectory string
	SchemaPath     string

	// Engine settings
	EvaluationInterval  time.Duration
	HistoryLimit        int
	MaxConcurrentProbes int64

	// Snapshot settings; empty SnapshotPath disables persistence
	SnapshotPath string

	// Observability settings
	MetricsAddr string

	// Operational settings
	GracefulShutdownTimeout time.Duration
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.SLADirectory == "" {
		return fmt.Errorf("SLA directory is required")
	}

	if c.EvaluationInterval <= 0 {
		return fmt.Errorf("evaluation interval must be positive")
	}

	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history limit must be positive")
	}

	if c.MaxConcurrentProbes <= 0 {
		return fmt.Errorf("max concurrent probes must be positive")
	}

	return nil
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		SchemaPath:              "schemas/sla_v1.json",
		EvaluationInterval:      5 * time.Minute,
		HistoryLimit:            1000,
		MaxConcurrentProbes:     16,
		MetricsAddr:             ":9090",
		GracefulShutdownTimeout: 30 * time.Second,
	}
}
