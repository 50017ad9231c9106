// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gaquery/internal/analytics"
	"github.com/tomtom215/gaquery/internal/client"
	"github.com/tomtom215/gaquery/internal/config"
	"github.com/tomtom215/gaquery/internal/export"
	"github.com/tomtom215/gaquery/internal/logging"
	"github.com/tomtom215/gaquery/internal/metrics"
	"github.com/tomtom215/gaquery/internal/query"
)

// run executes one gaquery invocation and writes results to stdout.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logging.Init(cfg.Logging.LoggerConfig())
	if opts.verbose {
		logging.SetLevelString("debug")
	}

	defer func() {
		if pushErr := metrics.Push(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); pushErr != nil {
			logging.Warn().Err(pushErr).Msg("Failed to push metrics")
		}
	}()

	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		return err
	}

	out := &output{w: stdout, format: format, table: cfg.Export.Table}
	if opts.replace {
		out.mode = export.ModeReplace
	}
	if cfg.Export.HasDuckDB() {
		db, err := export.OpenDuckDB(cfg.Export.DuckDBPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				logging.Error().Err(closeErr).Msg("Error closing database")
			}
		}()
		out.db = db
	}

	execOpts := analytics.Options{
		AllPages:      opts.all,
		RawJSON:       opts.raw,
		SkipInference: opts.noInfer,
	}

	if opts.reshape != "" {
		data, err := os.ReadFile(opts.reshape)
		if err != nil {
			return fmt.Errorf("failed to read response file: %w", err)
		}
		results, err := analytics.ReshapeJSON(data, execOpts)
		if err != nil {
			return err
		}
		return out.writeAll(ctx, results)
	}

	svc := analytics.NewService(newFetcher(cfg), query.NewNormalizer(cfg.Reporting.Namespace), cfg.Reporting.MaxPages)

	if opts.batchFile != "" {
		request, err := loadBatchRequest(opts.batchFile)
		if err != nil {
			return err
		}
		results, execErr := svc.ExecuteBatch(ctx, request, execOpts)
		if err := out.writeAll(ctx, results); err != nil {
			return errors.Join(execErr, err)
		}
		return execErr
	}

	m, err := opts.queryMap()
	if err != nil {
		return err
	}
	res, execErr := svc.ExecuteMap(ctx, m, execOpts)
	if res != nil {
		if err := out.write(ctx, res, cfg.Export.Table); err != nil {
			return errors.Join(execErr, err)
		}
	}
	return execErr
}

// loadConfig loads the configuration and applies flag overrides.
func loadConfig(opts *cliOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.LoadWithKoanf()
	}
	if err != nil {
		return nil, err
	}

	if ns := opts.effectiveNamespace(); ns != "" {
		cfg.Reporting.Namespace = ns
	}
	if opts.format != "" {
		cfg.Export.Format = opts.format
	}
	if opts.duckdb != "" {
		cfg.Export.DuckDBPath = opts.duckdb
	}
	if opts.table != "" {
		cfg.Export.Table = opts.table
	}
	// An explicit -max-pages wins even when it is 0, which means unlimited.
	if opts.maxPagesSet {
		cfg.Reporting.MaxPages = opts.maxPages
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// fetcher is satisfied by both the plain and the circuit breaker client.
type fetcher interface {
	analytics.Fetcher
	analytics.BatchFetcher
}

func newFetcher(cfg *config.Config) fetcher {
	if cfg.CircuitBreaker.Enabled {
		return client.NewCircuitBreakerClient(&cfg.Reporting, &cfg.CircuitBreaker)
	}
	return client.NewClient(&cfg.Reporting)
}

func loadBatchRequest(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch request: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("batch request %s is not valid JSON", path)
	}
	return json.RawMessage(data), nil
}

// output writes results to the stream and, when configured, to DuckDB.
type output struct {
	w      io.Writer
	format export.Format
	db     *export.DuckDB
	table  string
	mode   export.WriteMode
}

// writeAll writes several results. DuckDB tables after the first get a
// numeric suffix: report, report_2, report_3.
func (o *output) writeAll(ctx context.Context, results []*analytics.Result) error {
	for i, res := range results {
		table := o.table
		if i > 0 {
			table += "_" + strconv.Itoa(i+1)
		}
		if err := o.write(ctx, res, table); err != nil {
			return err
		}
	}
	return nil
}

func (o *output) write(ctx context.Context, res *analytics.Result, table string) error {
	if res.Raw != nil {
		return export.WriteRaw(o.w, res.Raw)
	}

	if err := export.Write(o.w, o.format, res.Query, res.Table, res.Metadata); err != nil {
		return err
	}

	if o.db == nil || res.Table == nil || len(res.Table.Columns) == 0 {
		return nil
	}
	n, err := o.db.WriteTable(ctx, table, res.Table, o.mode)
	if err != nil {
		return err
	}
	if res.Query.IsZero() {
		return nil
	}
	run, err := o.db.RecordRun(ctx, table, res.Query, res.Metadata, n)
	if err != nil {
		return err
	}
	logging.Info().
		Str("table", table).
		Str("run_id", run.ID.String()).
		Int("rows", n).
		Msg("Report stored")
	return nil
}
