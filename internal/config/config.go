// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

/*
Package config provides layered configuration for gaquery.

Configuration is assembled by LoadWithKoanf from three sources, each
overriding the previous one:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $GAQUERY_CONFIG, ./gaquery.yaml, ./gaquery.yml or
    <user config dir>/gaquery/config.yaml
 3. Environment variables from an explicit mapping table

Example file:

	reporting:
	  access_token: ya29.example
	  namespace: "ga:"
	  max_pages: 200
	  requests_per_second: 5
	circuit_breaker:
	  enabled: true
	export:
	  format: jsonl
	  duckdb_path: /var/lib/gaquery/reports.duckdb
	logging:
	  level: debug

Environment variables (unmapped variables are ignored):

	GAQUERY_BASE_URL, GAQUERY_MCF_URL, GAQUERY_BATCH_URL
	GAQUERY_ACCESS_TOKEN (or GA_ACCESS_TOKEN), GAQUERY_NAMESPACE
	GAQUERY_TIMEOUT, GAQUERY_MAX_RETRIES, GAQUERY_RETRY_BASE_DELAY
	GAQUERY_REQUESTS_PER_SECOND, GAQUERY_BURST, GAQUERY_MAX_PAGES
	GAQUERY_CACHE_SIZE, GAQUERY_CACHE_TTL
	CIRCUIT_BREAKER_ENABLED, CIRCUIT_BREAKER_MAX_REQUESTS,
	CIRCUIT_BREAKER_INTERVAL, CIRCUIT_BREAKER_TIMEOUT,
	CIRCUIT_BREAKER_MIN_REQUESTS, CIRCUIT_BREAKER_FAILURE_RATIO
	EXPORT_FORMAT, DUCKDB_PATH, DUCKDB_TABLE
	PUSHGATEWAY_URL, METRICS_JOB
	LOG_LEVEL, LOG_FORMAT, LOG_CALLER

The loaded Config is validated before it is returned.
*/
package config

import (
	"os"
	"time"

	"github.com/tomtom215/gaquery/internal/logging"
)

// Config holds all gaquery configuration.
type Config struct {
	Reporting      ReportingConfig      `koanf:"reporting"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
	Export         ExportConfig         `koanf:"export"`
	Metrics        MetricsConfig        `koanf:"metrics"`
	Logging        LoggingConfig        `koanf:"logging"`
}

// ReportingConfig holds reporting API connection and paging settings.
type ReportingConfig struct {
	BaseURL     string `koanf:"base_url" validate:"required,url"`
	MCFURL      string `koanf:"mcf_url" validate:"omitempty,url"`
	BatchURL    string `koanf:"batch_url" validate:"omitempty,url"`
	AccessToken string `koanf:"access_token"`

	// Namespace is the prefix added to unqualified dimension, metric,
	// sort and filter names ("ga:" or "mcf:").
	Namespace string `koanf:"namespace" validate:"required,namespace"`

	Timeout        time.Duration `koanf:"timeout"`
	MaxRetries     int           `koanf:"max_retries" validate:"gte=0,lte=20"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`

	// RequestsPerSecond throttles outgoing requests. Zero disables the limiter.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int     `koanf:"burst" validate:"gte=0"`

	// MaxPages bounds how many pages a single execution follows. Zero means unlimited.
	MaxPages int `koanf:"max_pages" validate:"gte=0"`

	// CacheSize is the number of cached page responses. Zero disables the cache.
	CacheSize int           `koanf:"cache_size" validate:"gte=0"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
}

// CircuitBreakerConfig configures the breaker wrapped around the reporting client.
type CircuitBreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests" validate:"gte=1"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// ExportConfig selects how reshaped tables are written.
type ExportConfig struct {
	Format     string `koanf:"format" validate:"oneof=csv json jsonl"`
	DuckDBPath string `koanf:"duckdb_path"`
	Table      string `koanf:"table" validate:"required"`
}

// MetricsConfig configures the optional Prometheus Pushgateway flush.
type MetricsConfig struct {
	PushgatewayURL string `koanf:"pushgateway_url" validate:"omitempty,url"`
	Job            string `koanf:"job" validate:"required"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format string `koanf:"format" validate:"oneof=auto json console"`
	Caller bool   `koanf:"caller"`
}

// LoggerConfig converts the section into the logging package configuration.
func (c LoggingConfig) LoggerConfig() logging.Config {
	return logging.Config{
		Level:     c.Level,
		Format:    c.Format,
		Caller:    c.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	}
}

// HasDuckDB reports whether a DuckDB sink is configured.
func (c ExportConfig) HasDuckDB() bool {
	return c.DuckDBPath != ""
}
