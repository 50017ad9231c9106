// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/tomtom215/gaquery/internal/report"
)

// WriteCSV writes a header row and one record per table row. It returns
// the number of data rows written.
func WriteCSV(w io.Writer, t *report.Table) (int, error) {
	if t == nil {
		return 0, nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		for j := range record {
			record[j] = formatCell(row[j])
		}
		if err := cw.Write(record); err != nil {
			return i, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return len(t.Rows), fmt.Errorf("flush csv: %w", err)
	}
	return len(t.Rows), nil
}
