// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package report

import (
	"time"
)

// dateColumns maps date-like dimension names to their API layout.
var dateColumns = map[string]string{
	"date":           "20060102",
	"dateHour":       "2006010215",
	"dateHourMinute": "200601021504",
	"yearMonth":      "200601",
	"conversionDate": "20060102",
}

// inferTypes converts string columns with a known date layout into
// time.Time. A column is converted only if every non-null value parses;
// otherwise it is left untouched.
func inferTypes(t *Table) {
	for j, c := range t.Columns {
		layout, ok := dateColumns[c.Name]
		if !ok || c.Kind != KindString {
			continue
		}
		parsed, ok := parseColumn(t.Rows, j, layout)
		if !ok {
			continue
		}
		for i := range t.Rows {
			t.Rows[i][j] = parsed[i]
		}
		t.Columns[j].Kind = KindTime
	}
}

func parseColumn(rows [][]any, j int, layout string) ([]any, bool) {
	parsed := make([]any, len(rows))
	for i, row := range rows {
		if row[j] == nil {
			continue
		}
		s, ok := row[j].(string)
		if !ok {
			return nil, false
		}
		ts, err := time.Parse(layout, s)
		if err != nil {
			return nil, false
		}
		parsed[i] = ts
	}
	return parsed, true
}
