// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package config

import (
	"fmt"
	"regexp"

	"github.com/tomtom215/gaquery/internal/validation"
)

// identifierPattern restricts DuckDB table names to plain SQL identifiers.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateReporting(); err != nil {
		return err
	}

	if err := c.validateCircuitBreaker(); err != nil {
		return err
	}

	return c.validateExport()
}

func (c *Config) validateReporting() error {
	r := &c.Reporting

	endpoints := []struct {
		name  string
		value string
	}{
		{"reporting.base_url", r.BaseURL},
		{"reporting.mcf_url", r.MCFURL},
		{"reporting.batch_url", r.BatchURL},
	}
	for _, ep := range endpoints {
		if ep.value == "" {
			continue
		}
		if err := validateEndpointURL(ep.value, ep.name); err != nil {
			return err
		}
	}

	if r.Timeout <= 0 {
		return fmt.Errorf("reporting.timeout must be positive, got %v", r.Timeout)
	}
	if r.RetryBaseDelay < 0 {
		return fmt.Errorf("reporting.retry_base_delay must not be negative, got %v", r.RetryBaseDelay)
	}
	if r.RequestsPerSecond > 0 && r.Burst < 1 {
		return fmt.Errorf("reporting.burst must be at least 1 when requests_per_second is set")
	}
	if r.CacheSize > 0 && r.CacheTTL <= 0 {
		return fmt.Errorf("reporting.cache_ttl must be positive when cache_size is set, got %v", r.CacheTTL)
	}
	return nil
}

func (c *Config) validateCircuitBreaker() error {
	cb := &c.CircuitBreaker
	if !cb.Enabled {
		return nil
	}
	if cb.Timeout <= 0 {
		return fmt.Errorf("circuit_breaker.timeout must be positive, got %v", cb.Timeout)
	}
	if cb.Interval < 0 {
		return fmt.Errorf("circuit_breaker.interval must not be negative, got %v", cb.Interval)
	}
	return nil
}

func (c *Config) validateExport() error {
	if !c.Export.HasDuckDB() {
		return nil
	}
	if !identifierPattern.MatchString(c.Export.Table) {
		return fmt.Errorf("export.table %q is not a valid table name", c.Export.Table)
	}
	return nil
}
