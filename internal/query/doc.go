// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

// Package query turns loosely specified report queries into the strict
// request format expected by the reporting API.
//
// A Description holds the fifteen recognized query fields, each as an
// optional Value. The Normalizer rewrites a Description into an immutable
// Normalized query in a fixed sequence of steps:
//
//  1. start_date and end_date are resolved to YYYY-MM-DD using the
//     injected Clock (today, yesterday, NdaysAgo and literal dates).
//  2. ids are prefixed with "ga:"; dimensions and metrics with the
//     configured namespace prefix.
//  3. Sort terms keep their leading "-" in front of the prefix.
//  4. Filter chains ([operand, AND|OR, operand, ...]) are rendered with
//     ";" for AND and "," for OR.
//  5. start_index and max_results are coerced to strings.
//  6. samplingLevel is upper-cased; invalid values become DEFAULT.
//  7. Unrecognized fields are removed.
//
// Steps 6 and 7 are corrections rather than failures: they are reported
// through the DiagnosticFunc and normalization continues. Everything else
// that is structurally wrong fails with an *InvalidQueryError.
//
// # Usage
//
//	n := query.NewNormalizer("ga:")
//	q, err := n.NormalizeMap(map[string]any{
//	    "ids":        12345,
//	    "start_date": "7daysAgo",
//	    "metrics":    []string{"sessions", "users"},
//	    "sort":       "-sessions",
//	})
//	if err != nil {
//	    return err
//	}
//	params := q.Values() // ids=ga:12345&start-date=...&metrics=ga:sessions,ga:users
//
// Normalization is idempotent: normalizing q.Description() yields q again.
package query
