// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

// Package export writes reshaped report tables to files, streams and DuckDB.
//
// Stream formats:
//   - csv: header row of column names, one record per row; nulls are empty
//   - json: one document with the normalized query, metadata, columns and rows
//   - jsonl: one JSON object per row
//
// DuckDB persists a table with typed columns and records every run in a
// companion <table>_runs table so the normalized query is archived with
// the data it produced.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/gaquery/internal/metrics"
	"github.com/tomtom215/gaquery/internal/query"
	"github.com/tomtom215/gaquery/internal/report"
)

// Format selects a stream encoding.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

// ParseFormat parses a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatJSONL:
		return f, nil
	case "ndjson":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv, json or jsonl)", s)
	}
}

// Write encodes t in format f.
func Write(w io.Writer, f Format, q query.Normalized, t *report.Table, meta report.Metadata) error {
	var (
		n   int
		err error
	)
	switch f {
	case FormatCSV:
		n, err = WriteCSV(w, t)
	case FormatJSON:
		n, err = WriteJSON(w, q, t, meta)
	case FormatJSONL:
		n, err = WriteJSONL(w, t)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
	if err != nil {
		return err
	}
	metrics.RecordExport(string(f), n)
	return nil
}

// formatCell renders a cell as text. Nil renders as "".
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return formatTime(x)
	default:
		return fmt.Sprint(x)
	}
}

// formatTime drops the clock for whole days so date columns stay dates.
func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	if t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02 15:04")
	}
	return t.Format(time.RFC3339)
}
