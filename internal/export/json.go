// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package export

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gaquery/internal/query"
	"github.com/tomtom215/gaquery/internal/report"
)

// ColumnInfo describes a column in JSON output.
type ColumnInfo struct {
	Name       string `json:"name"`
	Header     string `json:"header"`
	ColumnType string `json:"columnType,omitempty"`
	DataType   string `json:"dataType"`
	Kind       string `json:"kind"`
}

// Document is the JSON export envelope.
type Document struct {
	Query    map[string]string `json:"query,omitempty"`
	Metadata report.Metadata   `json:"metadata"`
	Columns  []ColumnInfo      `json:"columns"`
	Rows     []map[string]any  `json:"rows"`
}

// NewDocument builds the JSON envelope for a table.
func NewDocument(q query.Normalized, t *report.Table, meta report.Metadata) Document {
	doc := Document{
		Metadata: meta,
		Columns:  []ColumnInfo{},
		Rows:     []map[string]any{},
	}
	if !q.IsZero() {
		doc.Query = q.Map()
	}
	if t == nil {
		return doc
	}
	for _, c := range t.Columns {
		doc.Columns = append(doc.Columns, ColumnInfo{
			Name:       c.Name,
			Header:     c.Header,
			ColumnType: c.ColumnType,
			DataType:   c.DataType.String(),
			Kind:       c.Kind.String(),
		})
	}
	doc.Rows = t.Records()
	return doc
}

// WriteJSON writes the table as one indented JSON document.
func WriteJSON(w io.Writer, q query.Normalized, t *report.Table, meta report.Metadata) (int, error) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(q, t, meta)); err != nil {
		return 0, fmt.Errorf("encode json: %w", err)
	}
	return t.Len(), nil
}

// WriteJSONL writes one JSON object per row.
func WriteJSONL(w io.Writer, t *report.Table) (int, error) {
	if t == nil {
		return 0, nil
	}
	enc := json.NewEncoder(w)
	for i, rec := range t.Records() {
		if err := enc.Encode(rec); err != nil {
			return i, fmt.Errorf("encode jsonl row %d: %w", i, err)
		}
	}
	return t.Len(), nil
}

// WriteRaw writes an undecoded API response followed by a newline.
func WriteRaw(w io.Writer, raw []byte) error {
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("write raw response: %w", err)
	}
	if len(raw) > 0 && raw[len(raw)-1] == '\n' {
		return nil
	}
	_, err := io.WriteString(w, "\n")
	return err
}
