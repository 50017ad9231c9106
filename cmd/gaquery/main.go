// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

// Package main is the gaquery command line client.
//
// gaquery normalizes a report query, fetches one or all pages from the
// reporting API and writes the reshaped table to stdout, optionally
// storing it in DuckDB as well.
//
// # Configuration
//
// Settings are loaded via Koanf v2 (highest priority wins):
//   - Command line flags (-namespace, -format, -duckdb, -table, -max-pages)
//   - Environment variables (GA_ACCESS_TOKEN, GAQUERY_BASE_URL, ...)
//   - Config file (-config, $GAQUERY_CONFIG or ./gaquery.yaml)
//   - Built-in defaults
//
// # Example Usage
//
// Sessions per day and country for the last week:
//
//	export GA_ACCESS_TOKEN=ya29....
//	gaquery -ids 12345 -start 7daysAgo -metrics sessions -dimensions date,country
//
// All pages of a saved query into DuckDB:
//
//	gaquery -query weekly.yaml -all -duckdb reports.duckdb -table weekly
//
// Multi-channel funnel paths:
//
//	gaquery -mcf -ids 12345 -start 30daysAgo -metrics totalConversions -dimensions sourcePath
//
// Reshape a response saved earlier, without network access:
//
//	gaquery -reshape response.json -format jsonl
//
// # Exit Status
//
// gaquery exits 1 when the query is invalid, the API call fails or the
// output cannot be written. Partial tables collected before a paging
// failure are still written.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/gaquery/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Args[1:], os.Stdout)
	stop()

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		logging.Error().Err(err).Msg("gaquery failed")
		os.Exit(1)
	}
}
