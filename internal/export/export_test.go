// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/gaquery/internal/metrics"
	"github.com/tomtom215/gaquery/internal/query"
	"github.com/tomtom215/gaquery/internal/report"
)

func sampleTable() *report.Table {
	return &report.Table{
		Columns: []report.Column{
			{Name: "date", Header: "ga:date", ColumnType: "DIMENSION", DataType: report.DataTypeString, Kind: report.KindTime},
			{Name: "country", Header: "ga:country", ColumnType: "DIMENSION", DataType: report.DataTypeString, Kind: report.KindString},
			{Name: "sessions", Header: "ga:sessions", ColumnType: "METRIC", DataType: report.DataTypeInteger, Kind: report.KindInteger},
			{Name: "bounceRate", Header: "ga:bounceRate", ColumnType: "METRIC", DataType: report.DataTypePercent, Kind: report.KindFloat},
		},
		Rows: [][]any{
			{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "United States", int64(10), 41.5},
			{time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), "Côte d'Ivoire, CI", int64(3), nil},
		},
	}
}

func sampleQuery(t *testing.T) query.Normalized {
	t.Helper()
	n := &query.Normalizer{
		Clock:       func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) },
		Diagnostics: func(query.Diagnostic) {},
	}
	q, err := n.NormalizeMap(map[string]any{
		"ids":        1,
		"start_date": "2024-03-01",
		"metrics":    []string{"sessions", "bounceRate"},
		"dimensions": []string{"date", "country"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"JSON", FormatJSON, false},
		{" jsonl ", FormatJSONL, false},
		{"ndjson", FormatJSONL, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := WriteCSV(&buf, sampleTable())
	if err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}

	want := "date,country,sessions,bounceRate\n" +
		"2024-03-01,United States,10,41.5\n" +
		"2024-03-02,\"Côte d'Ivoire, CI\",3,\n"
	if buf.String() != want {
		t.Errorf("WriteCSV() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteCSV_NilTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if n, err := WriteCSV(&buf, nil); err != nil || n != 0 || buf.Len() != 0 {
		t.Errorf("WriteCSV(nil) = %d, %v, %q", n, err, buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	meta := report.Metadata{
		Sampling:     &report.Sampling{SampleSize: 500, SampleSpace: 1000},
		TotalResults: 2,
		Pages:        1,
		Complete:     true,
	}

	var buf bytes.Buffer
	if _, err := WriteJSON(&buf, sampleQuery(t), sampleTable(), meta); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var doc struct {
		Query    map[string]string `json:"query"`
		Metadata struct {
			Sampling struct {
				SampleSize int64 `json:"sampleSize"`
			} `json:"sampling"`
			Complete bool `json:"complete"`
		} `json:"metadata"`
		Columns []ColumnInfo     `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	if doc.Query["metrics"] != "ga:sessions,ga:bounceRate" {
		t.Errorf("query metrics = %q", doc.Query["metrics"])
	}
	if doc.Metadata.Sampling.SampleSize != 500 || !doc.Metadata.Complete {
		t.Errorf("metadata = %+v", doc.Metadata)
	}
	if len(doc.Columns) != 4 || doc.Columns[2].Kind != "integer" || doc.Columns[3].DataType != "PERCENT" {
		t.Errorf("columns = %+v", doc.Columns)
	}
	if len(doc.Rows) != 2 || doc.Rows[0]["country"] != "United States" || doc.Rows[1]["bounceRate"] != nil {
		t.Errorf("rows = %+v", doc.Rows)
	}
}

func TestWriteJSON_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := WriteJSON(&buf, query.Normalized{}, nil, report.Metadata{}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"rows": []`) {
		t.Errorf("empty table should encode rows as [], got %s", buf.String())
	}
	if strings.Contains(buf.String(), `"query"`) {
		t.Errorf("zero query should be omitted, got %s", buf.String())
	}
}

func TestWriteJSONL(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := WriteJSONL(&buf, sampleTable())
	if err != nil {
		t.Fatalf("WriteJSONL() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if n != 2 || len(lines) != 2 {
		t.Fatalf("wrote %d rows in %d lines, want 2", n, len(lines))
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("line 0 is not JSON: %v", err)
	}
	if rec["sessions"] != float64(10) {
		t.Errorf("sessions = %v, want 10", rec["sessions"])
	}
}

func TestWrite_RecordsMetric(t *testing.T) {
	t.Parallel()

	before := testutil.ToFloat64(metrics.ExportRows.WithLabelValues("jsonl"))
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSONL, query.Normalized{}, sampleTable(), report.Metadata{}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	after := testutil.ToFloat64(metrics.ExportRows.WithLabelValues("jsonl"))
	if after-before < 2 {
		t.Errorf("export_rows{jsonl} grew by %v, want at least 2", after-before)
	}

	if err := Write(&buf, Format("xml"), query.Normalized{}, sampleTable(), report.Metadata{}); err == nil {
		t.Error("Write() with unknown format should fail")
	}
}

func TestWriteRaw(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteRaw(&buf, []byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	if err := WriteRaw(&buf, []byte("{\"b\":2}\n")); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\"a\":1}\n{\"b\":2}\n" {
		t.Errorf("WriteRaw() = %q", buf.String())
	}
}

func TestFormatCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{int64(-3), "-3"},
		{0.25, "0.25"},
		{float64(1e21), "1000000000000000000000"},
		{true, "true"},
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-03-01"},
		{time.Date(2024, 3, 1, 13, 45, 0, 0, time.UTC), "2024-03-01 13:45"},
		{time.Date(2024, 3, 1, 13, 45, 7, 0, time.UTC), "2024-03-01T13:45:07Z"},
	}
	for _, tt := range tests {
		if got := formatCell(tt.in); got != tt.want {
			t.Errorf("formatCell(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
