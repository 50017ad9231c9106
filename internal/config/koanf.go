// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched, in order, when no explicit path is given.
var DefaultConfigPaths = []string{
	"gaquery.yaml",
	"gaquery.yml",
}

// ConfigPathEnvVar names the environment variable holding an explicit config file path.
const ConfigPathEnvVar = "GAQUERY_CONFIG"

// Reporting API endpoints used when nothing else is configured.
const (
	DefaultBaseURL  = "https://www.googleapis.com/analytics/v3/data/ga"
	DefaultMCFURL   = "https://www.googleapis.com/analytics/v3/data/mcf"
	DefaultBatchURL = "https://analyticsreporting.googleapis.com/v4/reports:batchGet"
)

func defaultConfig() *Config {
	return &Config{
		Reporting: ReportingConfig{
			BaseURL:           DefaultBaseURL,
			MCFURL:            DefaultMCFURL,
			BatchURL:          DefaultBatchURL,
			Namespace:         "ga:",
			Timeout:           30 * time.Second,
			MaxRetries:        5,
			RetryBaseDelay:    time.Second,
			RequestsPerSecond: 10,
			Burst:             10,
			MaxPages:          1000,
			CacheSize:         256,
			CacheTTL:          5 * time.Minute,
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:      true,
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      2 * time.Minute,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
		Export: ExportConfig{
			Format: "csv",
			Table:  "report",
		},
		Metrics: MetricsConfig{
			Job: "gaquery",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Default returns the built-in configuration without consulting files or the environment.
func Default() *Config {
	return defaultConfig()
}

// LoadWithKoanf loads configuration from defaults, the first config file found
// in the default locations, and environment variables (ENV > File > Defaults).
func LoadWithKoanf() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile is LoadWithKoanf with an explicit config file path. The file must exist.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return LoadWithKoanf()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return load(path)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" when none is found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	paths := DefaultConfigPaths
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths[:len(paths):len(paths)], filepath.Join(dir, "gaquery", "config.yaml"))
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Reporting API
	"gaquery_base_url":            "reporting.base_url",
	"gaquery_mcf_url":             "reporting.mcf_url",
	"gaquery_batch_url":           "reporting.batch_url",
	"gaquery_access_token":        "reporting.access_token",
	"ga_access_token":             "reporting.access_token",
	"gaquery_namespace":           "reporting.namespace",
	"gaquery_timeout":             "reporting.timeout",
	"gaquery_max_retries":         "reporting.max_retries",
	"gaquery_retry_base_delay":    "reporting.retry_base_delay",
	"gaquery_requests_per_second": "reporting.requests_per_second",
	"gaquery_burst":               "reporting.burst",
	"gaquery_max_pages":           "reporting.max_pages",
	"gaquery_cache_size":          "reporting.cache_size",
	"gaquery_cache_ttl":           "reporting.cache_ttl",

	// Circuit breaker
	"circuit_breaker_enabled":       "circuit_breaker.enabled",
	"circuit_breaker_max_requests":  "circuit_breaker.max_requests",
	"circuit_breaker_interval":      "circuit_breaker.interval",
	"circuit_breaker_timeout":       "circuit_breaker.timeout",
	"circuit_breaker_min_requests":  "circuit_breaker.min_requests",
	"circuit_breaker_failure_ratio": "circuit_breaker.failure_ratio",

	// Export
	"export_format": "export.format",
	"duckdb_path":   "export.duckdb_path",
	"duckdb_table":  "export.table",

	// Metrics
	"pushgateway_url": "metrics.pushgateway_url",
	"metrics_job":     "metrics.job",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" so they are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
