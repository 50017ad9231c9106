// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/gaquery/internal/query"
)

// cliOptions holds parsed command line flags.
type cliOptions struct {
	configPath string
	queryFile  string
	batchFile  string
	reshape    string

	ids        string
	start      string
	end        string
	metrics    string
	dimensions string
	sort       string
	filters    string
	segment    string
	sampling   string
	startIndex int
	maxResults int

	all         bool
	maxPages    int
	maxPagesSet bool
	namespace   string
	mcf         bool
	raw         bool
	noInfer     bool

	format  string
	duckdb  string
	table   string
	replace bool

	verbose bool
}

func parseFlags(args []string, output io.Writer) (*cliOptions, error) {
	opts := &cliOptions{}

	fs := flag.NewFlagSet("gaquery", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(output, "Usage: gaquery [options]\n\n")
		_, _ = fmt.Fprintf(output, "Fetches a report and writes it as a table.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.configPath, "config", "", "Config file (default: $GAQUERY_CONFIG or ./gaquery.yaml)")
	fs.StringVar(&opts.queryFile, "query", "", "YAML file holding the query description")
	fs.StringVar(&opts.batchFile, "batch", "", "JSON file holding a v4 batchGet request")
	fs.StringVar(&opts.reshape, "reshape", "", "Reshape a saved JSON response instead of fetching")

	fs.StringVar(&opts.ids, "ids", "", "View (profile) ID, with or without the ga: prefix")
	fs.StringVar(&opts.start, "start", "", "Start date: YYYY-MM-DD, today, yesterday or NdaysAgo")
	fs.StringVar(&opts.end, "end", "", "End date (default: today)")
	fs.StringVar(&opts.metrics, "metrics", "", "Comma separated metrics")
	fs.StringVar(&opts.dimensions, "dimensions", "", "Comma separated dimensions")
	fs.StringVar(&opts.sort, "sort", "", "Comma separated sort keys, '-' prefix for descending")
	fs.StringVar(&opts.filters, "filters", "", "Filter expression")
	fs.StringVar(&opts.segment, "segment", "", "Segment ID or definition")
	fs.StringVar(&opts.sampling, "sampling", "", "Sampling level: DEFAULT, FASTER or HIGHER_PRECISION")
	fs.IntVar(&opts.startIndex, "start-index", 0, "1-based index of the first row")
	fs.IntVar(&opts.maxResults, "max-results", 0, "Rows per page")

	fs.BoolVar(&opts.all, "all", false, "Follow continuation markers and fetch every page")
	fs.IntVar(&opts.maxPages, "max-pages", 0, "Page budget for -all, 0 for unlimited (default from config)")
	fs.StringVar(&opts.namespace, "namespace", "", "Name prefix added to dimensions and metrics (default from config)")
	fs.BoolVar(&opts.mcf, "mcf", false, "Query the multi-channel funnels API (namespace mcf:)")
	fs.BoolVar(&opts.raw, "raw", false, "Write the first page as undecoded JSON")
	fs.BoolVar(&opts.noInfer, "no-infer", false, "Keep date columns as strings")

	fs.StringVar(&opts.format, "format", "", "Output format: csv, json or jsonl (default from config)")
	fs.StringVar(&opts.duckdb, "duckdb", "", "Also store the table in this DuckDB file")
	fs.StringVar(&opts.table, "table", "", "DuckDB table name (default from config)")
	fs.BoolVar(&opts.replace, "replace", false, "Replace the DuckDB table instead of appending")

	fs.BoolVar(&opts.verbose, "v", false, "Debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "max-pages" {
			opts.maxPagesSet = true
		}
	})
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *cliOptions) validate() error {
	if o.maxPages < 0 {
		return fmt.Errorf("-max-pages must be non-negative, got %d", o.maxPages)
	}
	if o.mcf && o.namespace != "" && o.namespace != "mcf:" {
		return errors.New("-mcf and -namespace cannot be used together")
	}

	modes := 0
	if o.batchFile != "" {
		modes++
	}
	if o.reshape != "" {
		modes++
	}
	if o.queryFile != "" || o.hasQueryFlags() {
		modes++
	}
	switch {
	case modes == 0:
		return errors.New("no query given: use -query, -batch, -reshape or query flags")
	case modes > 1:
		return errors.New("-batch, -reshape and query input are mutually exclusive")
	}
	return nil
}

func (o *cliOptions) hasQueryFlags() bool {
	return o.ids != "" || o.start != "" || o.end != "" || o.metrics != "" ||
		o.dimensions != "" || o.sort != "" || o.filters != "" || o.segment != "" ||
		o.sampling != "" || o.startIndex != 0 || o.maxResults != 0
}

// effectiveNamespace returns the namespace flag, or "" to keep the configured one.
func (o *cliOptions) effectiveNamespace() string {
	if o.mcf {
		return "mcf:"
	}
	return o.namespace
}

// queryMap builds the loose query description. Flags override keys read
// from the query file.
func (o *cliOptions) queryMap() (map[string]any, error) {
	m := map[string]any{}
	if o.queryFile != "" {
		loaded, err := loadQueryFile(o.queryFile)
		if err != nil {
			return nil, err
		}
		m = loaded
	}

	set := func(f query.Field, v string) {
		if v != "" {
			m[string(f)] = v
		}
	}
	set(query.FieldIDs, o.ids)
	set(query.FieldStartDate, o.start)
	set(query.FieldEndDate, o.end)
	set(query.FieldMetrics, o.metrics)
	set(query.FieldDimensions, o.dimensions)
	set(query.FieldSort, o.sort)
	set(query.FieldFilters, o.filters)
	set(query.FieldSegment, o.segment)
	set(query.FieldSamplingLevel, o.sampling)
	if o.startIndex != 0 {
		m[string(query.FieldStartIndex)] = o.startIndex
	}
	if o.maxResults != 0 {
		m[string(query.FieldMaxResults)] = o.maxResults
	}
	return m, nil
}

// loadQueryFile decodes a YAML query description.
func loadQueryFile(path string) (map[string]any, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load query file %s: %w", path, err)
	}
	return k.Raw(), nil
}
