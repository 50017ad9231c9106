// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

// Package reporting defines the JSON wire types returned by the analytics
// reporting APIs.
//
// Two families are covered:
//
//   - Response: the Core Reporting v3 (data/ga) and Multi-Channel Funnels
//     (data/mcf) feed, with columnHeaders plus rows of cells.
//   - BatchResponse: the Reporting v4 reports:batchGet payload, where each
//     row nests dimension values and per-date-range metric values.
//
// Numeric counters that the API encodes as JSON strings are decoded into
// Scalar so callers decide how to coerce them.
package reporting
