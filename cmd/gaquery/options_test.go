// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package main

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "query flags", args: []string{"-ids", "123", "-start", "7daysAgo", "-metrics", "sessions"}},
		{name: "query file", args: []string{"-query", "q.yaml", "-all", "-max-pages", "5"}},
		{name: "reshape", args: []string{"-reshape", "resp.json", "-format", "jsonl"}},
		{name: "batch", args: []string{"-batch", "req.json"}},
		{name: "mcf", args: []string{"-mcf", "-ids", "1"}},
		{name: "nothing to do", args: nil, wantErr: "no query given"},
		{name: "two modes", args: []string{"-batch", "req.json", "-ids", "1"}, wantErr: "mutually exclusive"},
		{name: "negative page budget", args: []string{"-ids", "1", "-max-pages", "-1"}, wantErr: "non-negative"},
		{name: "mcf with other namespace", args: []string{"-mcf", "-namespace", "ga:", "-ids", "1"}, wantErr: "cannot be used together"},
		{name: "positional args", args: []string{"-ids", "1", "extra"}, wantErr: "unexpected arguments"},
		{name: "unknown flag", args: []string{"-bogus"}, wantErr: "not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseFlags(tt.args, io.Discard)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("parseFlags(%v) error = %v", tt.args, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("parseFlags(%v) error = %v, want containing %q", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestParseFlags_MaxPagesSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args    []string
		wantSet bool
	}{
		{args: []string{"-ids", "1"}, wantSet: false},
		{args: []string{"-ids", "1", "-max-pages", "0"}, wantSet: true},
		{args: []string{"-ids", "1", "-max-pages", "3"}, wantSet: true},
	}

	for _, tt := range tests {
		opts, err := parseFlags(tt.args, io.Discard)
		if err != nil {
			t.Fatalf("parseFlags(%v) error = %v", tt.args, err)
		}
		if opts.maxPagesSet != tt.wantSet {
			t.Errorf("parseFlags(%v) maxPagesSet = %v, want %v", tt.args, opts.maxPagesSet, tt.wantSet)
		}
	}
}

func TestParseFlags_Help(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	_, err := parseFlags([]string{"-h"}, &buf)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("parseFlags(-h) error = %v, want flag.ErrHelp", err)
	}
	if !strings.Contains(buf.String(), "Usage: gaquery") {
		t.Errorf("usage output = %q", buf.String())
	}
}

func TestEffectiveNamespace(t *testing.T) {
	t.Parallel()

	if ns := (&cliOptions{mcf: true}).effectiveNamespace(); ns != "mcf:" {
		t.Errorf("-mcf namespace = %q, want mcf:", ns)
	}
	if ns := (&cliOptions{namespace: "rt:"}).effectiveNamespace(); ns != "rt:" {
		t.Errorf("-namespace = %q, want rt:", ns)
	}
	if ns := (&cliOptions{}).effectiveNamespace(); ns != "" {
		t.Errorf("default namespace = %q, want empty", ns)
	}
}

func TestQueryMap_Flags(t *testing.T) {
	t.Parallel()

	opts, err := parseFlags([]string{
		"-ids", "ga:123",
		"-start", "2024-03-01",
		"-metrics", "sessions,pageviews",
		"-filters", "country==Canada,country==Mexico",
		"-start-index", "11",
		"-max-results", "10",
	}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	m, err := opts.queryMap()
	if err != nil {
		t.Fatalf("queryMap() error = %v", err)
	}

	want := map[string]any{
		"ids":         "ga:123",
		"start_date":  "2024-03-01",
		"metrics":     "sessions,pageviews",
		"filters":     "country==Canada,country==Mexico",
		"start_index": 11,
		"max_results": 10,
	}
	if len(m) != len(want) {
		t.Fatalf("queryMap() = %v, want %v", m, want)
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("queryMap()[%q] = %v, want %v", k, m[k], v)
		}
	}
}

func TestQueryMap_FileWithOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "weekly.yaml")
	body := `ids: 12345
start_date: 7daysAgo
metrics:
  - sessions
  - bounceRate
dimensions: [date]
sort: -sessions
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	opts, err := parseFlags([]string{"-query", path, "-start", "30daysAgo"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	m, err := opts.queryMap()
	if err != nil {
		t.Fatalf("queryMap() error = %v", err)
	}

	if m["start_date"] != "30daysAgo" {
		t.Errorf("start_date = %v, want the flag value", m["start_date"])
	}
	if m["sort"] != "-sessions" {
		t.Errorf("sort = %v, want -sessions", m["sort"])
	}
	metrics, ok := m["metrics"].([]any)
	if !ok || len(metrics) != 2 || metrics[1] != "bounceRate" {
		t.Errorf("metrics = %#v, want the YAML list", m["metrics"])
	}
	if _, ok := m["ids"]; !ok {
		t.Error("ids from the file should be kept")
	}
}

func TestQueryMap_MissingFile(t *testing.T) {
	t.Parallel()

	opts := &cliOptions{queryFile: filepath.Join(t.TempDir(), "missing.yaml")}
	if _, err := opts.queryMap(); err == nil {
		t.Error("queryMap() with a missing file should fail")
	}
}
