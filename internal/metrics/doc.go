// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

// Package metrics defines the Prometheus collectors used across gaquery.
//
// Collectors are registered on the default registry through promauto and
// grouped by concern:
//
//   - gaquery_queries_normalized_total / gaquery_query_corrections_total:
//     normalization outcomes and sampling/whitelist corrections
//   - gaquery_fetch_duration_seconds / gaquery_fetch_errors_total: reporting
//     API latency and failures per endpoint
//   - gaquery_pages_fetched_total / gaquery_rows_reshaped_total: pagination
//     progress
//   - gaquery_circuit_breaker_*: breaker state and transitions
//   - gaquery_export_rows_total: rows written per sink
//
// The CLI pushes the registry to a Pushgateway once per run with Push.
package metrics
