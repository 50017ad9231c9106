// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type sampleConfig struct {
	BaseURL   string `koanf:"base_url" validate:"required,url"`
	Namespace string `koanf:"namespace" validate:"required,namespace"`
	MaxPages  int    `koanf:"max_pages" validate:"gte=0,lte=100000"`
	Format    string `koanf:"format" validate:"oneof=csv json jsonl"`
	Label     string `validate:"omitempty,min=2,max=8"`
}

func validSample() sampleConfig {
	return sampleConfig{
		BaseURL:   "https://www.googleapis.com/analytics/v3/data/ga",
		Namespace: "ga:",
		MaxPages:  10,
		Format:    "csv",
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*sampleConfig)
	}{
		{name: "defaults", mutate: func(*sampleConfig) {}},
		{name: "mcf namespace", mutate: func(c *sampleConfig) { c.Namespace = "mcf:" }},
		{name: "zero pages", mutate: func(c *sampleConfig) { c.MaxPages = 0 }},
		{name: "label at bounds", mutate: func(c *sampleConfig) { c.Label = "ab" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validSample()
			tt.mutate(&cfg)
			if err := ValidateStruct(&cfg); err != nil {
				t.Errorf("ValidateStruct() returned unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*sampleConfig)
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{
			name:      "missing base url",
			mutate:    func(c *sampleConfig) { c.BaseURL = "" },
			wantField: "base_url",
			wantTag:   "required",
			wantMsg:   "base_url is required",
		},
		{
			name:      "namespace without colon",
			mutate:    func(c *sampleConfig) { c.Namespace = "ga" },
			wantField: "namespace",
			wantTag:   "namespace",
			wantMsg:   "namespace must be a lowercase namespace",
		},
		{
			name:      "negative pages",
			mutate:    func(c *sampleConfig) { c.MaxPages = -1 },
			wantField: "max_pages",
			wantTag:   "gte",
			wantMsg:   "max_pages must be greater than or equal to 0",
		},
		{
			name:      "unknown format",
			mutate:    func(c *sampleConfig) { c.Format = "xml" },
			wantField: "format",
			wantTag:   "oneof",
			wantMsg:   "format must be one of: csv json jsonl",
		},
		{
			name:      "label too long falls back to struct name",
			mutate:    func(c *sampleConfig) { c.Label = "abcdefghij" },
			wantField: "Label",
			wantTag:   "max",
			wantMsg:   "Label must be at most 8 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validSample()
			tt.mutate(&cfg)

			var verr Errors
			if err := ValidateStruct(&cfg); !errors.As(err, &verr) {
				t.Fatalf("ValidateStruct() = %v, want Errors", err)
			}
			if !verr.HasField(tt.wantField) {
				t.Fatalf("expected error on field %s, got %v", tt.wantField, verr)
			}

			for _, e := range verr {
				if e.Field != tt.wantField {
					continue
				}
				if e.Tag != tt.wantTag {
					t.Errorf("Tag = %q, want %q", e.Tag, tt.wantTag)
				}
				if !strings.Contains(e.Error(), tt.wantMsg) {
					t.Errorf("Error() = %q, want it to contain %q", e.Error(), tt.wantMsg)
				}
			}
		})
	}
}

func TestErrors_JoinsMessages(t *testing.T) {
	t.Parallel()

	cfg := sampleConfig{Namespace: "ga:", Format: "csv"}
	cfg.MaxPages = -5

	var verr Errors
	if err := ValidateStruct(&cfg); !errors.As(err, &verr) {
		t.Fatalf("ValidateStruct() = %v, want Errors", err)
	}
	if len(verr) != 2 {
		t.Fatalf("len(Errors) = %d, want 2: %v", len(verr), verr)
	}
	msg := verr.Error()
	if !strings.Contains(msg, "base_url is required") || !strings.Contains(msg, "; ") {
		t.Errorf("Error() = %q, want joined messages", msg)
	}
}

func TestErrors_Empty(t *testing.T) {
	t.Parallel()

	var verr Errors
	if verr.Error() != "validation failed" {
		t.Errorf("Error() = %q, want %q", verr.Error(), "validation failed")
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	t.Parallel()

	var verr Errors
	if err := ValidateStruct("not a struct"); !errors.As(err, &verr) {
		t.Fatalf("ValidateStruct() = %v, want Errors", err)
	}
	if verr[0].Field != "unknown" {
		t.Errorf("Field = %q, want unknown", verr[0].Field)
	}
}

type outer struct {
	Reporting sampleConfig `koanf:"reporting"`
}

func TestValidateStruct_NestedPath(t *testing.T) {
	t.Parallel()

	cfg := outer{Reporting: validSample()}
	cfg.Reporting.MaxPages = -1

	var verr Errors
	if err := ValidateStruct(&cfg); !errors.As(err, &verr) {
		t.Fatalf("ValidateStruct() = %v, want Errors", err)
	}
	if verr[0].Path != "reporting.max_pages" || verr[0].Field != "max_pages" {
		t.Errorf("Path = %q Field = %q", verr[0].Path, verr[0].Field)
	}
	if !verr.HasField("reporting.max_pages") {
		t.Error("HasField should match the full path")
	}
	if !strings.HasPrefix(verr.Error(), "reporting.max_pages must be") {
		t.Errorf("Error() = %q", verr.Error())
	}
}
