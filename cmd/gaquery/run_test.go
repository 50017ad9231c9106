// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

const testPage = `{
  "kind": "analytics#gaData",
  "columnHeaders": [
    {"name": "ga:country", "columnType": "DIMENSION", "dataType": "STRING"},
    {"name": "ga:sessions", "columnType": "METRIC", "dataType": "INTEGER"}
  ],
  "rows": [["US", "10"], ["CA", "5"]],
  "totalResults": 2,
  "totalsForAllResults": {"ga:sessions": "15"}
}`

// isolateEnv keeps the caller's environment and config files out of run.
func isolateEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("GAQUERY_CONFIG", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Chdir(dir)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func testServer(t *testing.T, seen chan<- string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case seen <- r.URL.RawQuery:
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, testPage)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRun_QueryToCSV(t *testing.T) {
	isolateEnv(t)

	seen := make(chan string, 1)
	server := testServer(t, seen)
	cfgPath := writeFile(t, "gaquery.yaml", `reporting:
  base_url: `+server.URL+`/data/ga
  access_token: test-token
circuit_breaker:
  enabled: false
`)

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-config", cfgPath,
		"-ids", "123",
		"-start", "2024-03-01",
		"-end", "2024-03-02",
		"-metrics", "sessions",
		"-dimensions", "country",
		"-format", "csv",
	}, &out)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if want := "country,sessions\nUS,10\nCA,5\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}

	raw := <-seen
	for _, part := range []string{"ids=ga%3A123", "metrics=ga%3Asessions", "dimensions=ga%3Acountry"} {
		if !strings.Contains(raw, part) {
			t.Errorf("request query %q missing %q", raw, part)
		}
	}
}

func TestRun_DuckDBThroughBreaker(t *testing.T) {
	isolateEnv(t)

	server := testServer(t, nil)
	cfgPath := writeFile(t, "gaquery.yaml", `reporting:
  base_url: `+server.URL+`/data/ga
`)
	dbPath := filepath.Join(t.TempDir(), "reports.duckdb")

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-config", cfgPath,
		"-ids", "123", "-start", "2024-03-01", "-metrics", "sessions", "-dimensions", "country",
		"-all",
		"-format", "jsonl",
		"-duckdb", dbPath,
		"-table", "by_country",
	}, &out)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if lines := strings.Count(out.String(), "\n"); lines != 2 {
		t.Errorf("jsonl output has %d lines, want 2:\n%s", lines, out.String())
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("DuckDB file not created: %v", err)
	}
}

func TestLoadConfig_MaxPagesFlag(t *testing.T) {
	isolateEnv(t)

	cfgPath := writeFile(t, "gaquery.yaml", "reporting:\n  max_pages: 5\n")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"config value", []string{"-config", cfgPath, "-ids", "1"}, 5},
		{"explicit budget", []string{"-config", cfgPath, "-ids", "1", "-max-pages", "2"}, 2},
		{"zero means unlimited", []string{"-config", cfgPath, "-ids", "1", "-max-pages", "0"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFlags(tt.args, io.Discard)
			if err != nil {
				t.Fatal(err)
			}
			cfg, err := loadConfig(opts)
			if err != nil {
				t.Fatalf("loadConfig() error = %v", err)
			}
			if cfg.Reporting.MaxPages != tt.want {
				t.Errorf("MaxPages = %d, want %d", cfg.Reporting.MaxPages, tt.want)
			}
		})
	}
}

const testBatchPage = `{"reports": [{
  "columnHeader": {
    "dimensions": ["ga:country"],
    "metricHeader": {"metricHeaderEntries": [{"name": "ga:users", "type": "INTEGER"}]}
  },
  "data": {"rows": [{"dimensions": ["%s"], "metrics": [{"values": ["1"]}]}]}%s
}]}`

func TestRun_BatchAllPages(t *testing.T) {
	isolateEnv(t)

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(string(body), `"pageToken"`) {
			_, _ = fmt.Fprintf(w, testBatchPage, "CA", "")
			return
		}
		_, _ = fmt.Fprintf(w, testBatchPage, "US", `, "nextPageToken": "1"`)
	}))
	t.Cleanup(server.Close)

	cfgPath := writeFile(t, "gaquery.yaml", `reporting:
  batch_url: `+server.URL+`/v4/reports:batchGet
`)
	reqPath := writeFile(t, "batch.json", `{"reportRequests": [{"viewId": "1", "metrics": [{"expression": "ga:users"}]}]}`)

	var out bytes.Buffer
	err := run(context.Background(), []string{"-config", cfgPath, "-batch", reqPath, "-all", "-format", "csv"}, &out)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("requests = %d, want 2", n)
	}
	if !strings.Contains(out.String(), "US") || !strings.Contains(out.String(), "CA") {
		t.Errorf("output missing a page:\n%s", out.String())
	}
}

func TestRun_Reshape(t *testing.T) {
	isolateEnv(t)

	respPath := writeFile(t, "response.json", testPage)

	var out bytes.Buffer
	if err := run(context.Background(), []string{"-reshape", respPath, "-format", "json"}, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), `"country": "US"`) {
		t.Errorf("output missing reshaped rows:\n%s", out.String())
	}
}

func TestRun_Errors(t *testing.T) {
	isolateEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"invalid query", []string{"-ids", "123", "-metrics", "sessions"}},
		{"missing reshape file", []string{"-reshape", "/nonexistent/response.json"}},
		{"unknown format", []string{"-reshape", "/nonexistent/response.json", "-format", "xml"}},
		{"bad table name", []string{"-ids", "1", "-duckdb", ":memory:", "-table", "bad name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(context.Background(), tt.args, io.Discard); err == nil {
				t.Errorf("run(%v) should fail", tt.args)
			}
		})
	}
}
