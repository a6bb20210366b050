// Package config holds per-binary configuration loaded from FISCAL_-prefixed
// environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/pedrovi35/fiscalapp/internal/env"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL             string        `env:"FISCAL_POSTGRES_URL"`
	MaxOpenConns    int           `env:"FISCAL_DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `env:"FISCAL_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `env:"FISCAL_DB_CONN_MAX_LIFETIME" default:"5m"`
}

// Validate implements env.Validator.
func (c *DatabaseConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("FISCAL_POSTGRES_URL is required")
	}
	return nil
}

// ObservabilityConfig controls the OTLP telemetry pipeline.
type ObservabilityConfig struct {
	Enabled     bool   `env:"FISCAL_OTEL_ENABLED" default:"false"`
	ServiceName string `env:"FISCAL_OTEL_SERVICE_NAME" default:"fiscalapp"`
}

// ServerConfig holds configuration for the HTTP server binary.
type ServerConfig struct {
	Database      DatabaseConfig
	Observability ObservabilityConfig

	Port         string        `env:"FISCAL_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `env:"FISCAL_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"FISCAL_HTTP_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout  time.Duration `env:"FISCAL_HTTP_IDLE_TIMEOUT" default:"60s"`
}

// LoadServerConfig loads and validates server configuration from environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}
	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	return cfg, nil
}

// SchedulerConfig holds configuration for the scheduler binary, which hosts
// the daily-generation and due-soon-alerts jobs.
type SchedulerConfig struct {
	Database      DatabaseConfig
	Observability ObservabilityConfig

	// Cron specs for the recurring jobs. The generation pass runs once per
	// day, the alert pass every few hours, the report on the 1st of each month.
	GenerationSpec    string `env:"FISCAL_GENERATION_CRON" default:"0 6 * * *"`
	DueSoonSpec       string `env:"FISCAL_DUE_SOON_CRON" default:"0 */4 * * *"`
	MonthlyReportSpec string `env:"FISCAL_MONTHLY_REPORT_CRON" default:"0 8 1 * *"`

	// DueSoonLookaheadDays bounds the alert window: obligations due within
	// this many days (and those due today) trigger alerts.
	DueSoonLookaheadDays int `env:"FISCAL_DUE_SOON_LOOKAHEAD_DAYS" default:"3"`

	// OperationTimeout bounds a single batch run.
	OperationTimeout time.Duration `env:"FISCAL_SCHEDULER_OPERATION_TIMEOUT" default:"5m"`
}

// Validate implements env.Validator.
func (c *SchedulerConfig) Validate() error {
	if c.DueSoonLookaheadDays < 0 {
		return fmt.Errorf("FISCAL_DUE_SOON_LOOKAHEAD_DAYS must not be negative")
	}
	return nil
}

// LoadSchedulerConfig loads and validates scheduler configuration from environment.
func LoadSchedulerConfig() (*SchedulerConfig, error) {
	cfg := &SchedulerConfig{}
	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load scheduler config: %w", err)
	}
	return cfg, nil
}
