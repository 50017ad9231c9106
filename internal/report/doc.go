// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

// Package report reshapes reporting API responses into typed tables.
//
// Reshape converts a Core Reporting or Multi-Channel Funnels page into a
// Table: column names lose their namespace prefix ("ga:sessions" becomes
// "sessions"), and every cell is cast according to the column's declared
// data type:
//
//	INTEGER                  int64
//	FLOAT, CURRENCY, PERCENT float64
//	TIME                     float64 (seconds)
//	BOOLEAN                  bool
//	anything else            string
//
// A cell that does not parse as its declared type is a hard error. After
// casting, a best-effort pass converts date-like dimension columns (date,
// dateHour, dateHourMinute, yearMonth) into time.Time.
//
// ReshapeReport does the same for Reporting v4 reports, flattening each
// row's nested dimension and per-date-range metric groups first.
//
// Collector follows continuation markers (nextPageToken, or the start-index
// carried by nextLink) through an injected FetchFunc, appending rows in
// arrival order. Pages are fetched strictly in sequence. A page budget or
// context cancellation stops the loop early and returns what was collected.
package report
