// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package report

import (
	"fmt"
)

// Column describes one table column.
type Column struct {
	Name       string   // namespace prefix stripped, e.g. "sessions"
	Header     string   // name as returned by the API, e.g. "ga:sessions"
	ColumnType string   // DIMENSION or METRIC, when known
	DataType   DataType // declared type tag
	Kind       Kind     // Go type of the cells
}

// Table is a reshaped report: ordered columns and rows of cast cells.
// A nil cell stands for a null value in the response.
type Table struct {
	Columns []Column
	Rows    [][]any
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ColumnValues returns the cells of the named column.
func (t *Table) ColumnValues(name string) ([]any, bool) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// Records returns each row as a map keyed by column name.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(map[string]any, len(t.Columns))
		for j, c := range t.Columns {
			rec[c.Name] = row[j]
		}
		out[i] = rec
	}
	return out
}

// sameColumns reports whether two column sets describe the same layout.
func sameColumns(a, b []Column) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Header != b[i].Header || a[i].DataType != b[i].DataType {
			return false
		}
	}
	return true
}

// appendPage adds the rows of next to t. Both must share a column layout.
func (t *Table) appendPage(next *Table) error {
	if !sameColumns(t.Columns, next.Columns) {
		return fmt.Errorf("column headers changed between pages: %v != %v", headerNames(t.Columns), headerNames(next.Columns))
	}
	t.Rows = append(t.Rows, next.Rows...)
	return nil
}

func headerNames(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Header
	}
	return out
}
