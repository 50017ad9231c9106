// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name:   "circuit breaker disabled skips its checks",
			mutate: func(c *Config) { c.CircuitBreaker.Enabled = false; c.CircuitBreaker.Timeout = 0 },
		},
		{
			name:   "limiter disabled",
			mutate: func(c *Config) { c.Reporting.RequestsPerSecond = 0; c.Reporting.Burst = 0 },
		},
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.Reporting.BaseURL = "" },
			wantErr: "base_url is required",
		},
		{
			name:    "base url with query",
			mutate:  func(c *Config) { c.Reporting.BaseURL = "https://example.com/data/ga?x=1" },
			wantErr: "should not contain query parameters",
		},
		{
			name:    "mcf url with bad scheme",
			mutate:  func(c *Config) { c.Reporting.MCFURL = "ftp://example.com/mcf" },
			wantErr: "scheme must be http or https",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Reporting.Timeout = 0 },
			wantErr: "reporting.timeout must be positive",
		},
		{
			name:    "burst missing with limiter",
			mutate:  func(c *Config) { c.Reporting.Burst = 0 },
			wantErr: "reporting.burst",
		},
		{
			name:    "cache without ttl",
			mutate:  func(c *Config) { c.Reporting.CacheTTL = 0 },
			wantErr: "reporting.cache_ttl",
		},
		{
			name:    "negative max pages",
			mutate:  func(c *Config) { c.Reporting.MaxPages = -1 },
			wantErr: "max_pages",
		},
		{
			name:    "failure ratio above one",
			mutate:  func(c *Config) { c.CircuitBreaker.FailureRatio = 1.5 },
			wantErr: "failure_ratio",
		},
		{
			name:    "breaker timeout zero",
			mutate:  func(c *Config) { c.CircuitBreaker.Timeout = 0 },
			wantErr: "circuit_breaker.timeout",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "level must be one of",
		},
		{
			name:    "bad pushgateway",
			mutate:  func(c *Config) { c.Metrics.PushgatewayURL = "not a url" },
			wantErr: "pushgateway_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoggingConfig_LoggerConfig(t *testing.T) {
	t.Parallel()

	lc := LoggingConfig{Level: "debug", Format: "json", Caller: true}.LoggerConfig()
	if lc.Level != "debug" || lc.Format != "json" || !lc.Caller || !lc.Timestamp {
		t.Errorf("LoggerConfig() = %+v", lc)
	}
	if lc.Output == nil {
		t.Error("LoggerConfig().Output should default to stderr")
	}
}
