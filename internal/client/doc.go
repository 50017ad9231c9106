// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

/*
Package client is the HTTP transport for the analytics reporting API.

Client implements report.FetchFunc through Fetch: it encodes a normalized
query as request parameters, sends it to the core (data/ga) or
multi-channel funnels (data/mcf) endpoint, and decodes the JSON page.
BatchGet posts a Reporting v4 reports:batchGet document.

Resilience:
  - Client-side throttling with golang.org/x/time/rate (requests_per_second, burst)
  - HTTP 429 handling with exponential backoff (1s, 2s, 4s, ...) honouring Retry-After
  - Optional TTL LRU cache of page bodies keyed by the full request URL
  - CircuitBreakerClient wraps a Client with sony/gobreaker; client errors
    (4xx other than 429) and cancellations do not count as breaker failures

Non-200 responses are returned as *APIError carrying the decoded error
envelope when the body contains one.

Usage:

	c := client.NewCircuitBreakerClient(&cfg.Reporting, &cfg.CircuitBreaker)
	collector := report.Collector{Fetch: c.Fetch, MaxPages: cfg.Reporting.MaxPages}
	table, meta, err := collector.Collect(ctx, normalized)
*/
package client
