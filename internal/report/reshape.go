// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package report

import (
	"strconv"
	"strings"

	"github.com/tomtom215/gaquery/internal/models/reporting"
)

// Sampling describes a sampled report.
type Sampling struct {
	SampleSize  int64 `json:"sampleSize"`
	SampleSpace int64 `json:"sampleSpace"`
}

// Metadata accompanies a reshaped table.
type Metadata struct {
	// Sampling is nil unless the response flags sampled data.
	Sampling *Sampling `json:"sampling,omitempty"`

	// Totals holds totals for all results keyed by stripped column name.
	Totals map[string]any `json:"totals,omitempty"`

	// Query is the query echoed by the API.
	Query map[string]any `json:"query,omitempty"`

	TotalResults int64 `json:"totalResults"`
	ItemsPerPage int64 `json:"itemsPerPage,omitempty"`

	// Pages is the number of pages reshaped into the table.
	Pages int `json:"pages"`

	// Complete is false when more pages were available but not fetched.
	Complete bool `json:"complete"`
}

// Reshaper converts responses into tables. The zero value is ready to use.
type Reshaper struct {
	// SkipInference disables the date inference pass.
	SkipInference bool
}

// Reshape converts a Core Reporting or Multi-Channel Funnels page using the
// default Reshaper.
func Reshape(resp *reporting.Response) (*Table, Metadata, error) {
	return Reshaper{}.Reshape(resp)
}

// ReshapeReport converts a Reporting v4 report using the default Reshaper.
func ReshapeReport(r *reporting.Report) (*Table, Metadata, error) {
	return Reshaper{}.ReshapeReport(r)
}

// StripPrefix removes the namespace token ("ga:", "mcf:", ...) from a
// column name. Names without a namespace are returned unchanged.
func StripPrefix(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Reshape converts a Core Reporting or Multi-Channel Funnels page.
func (r Reshaper) Reshape(resp *reporting.Response) (*Table, Metadata, error) {
	t, meta, err := r.reshapePage(resp)
	if err != nil {
		return nil, Metadata{}, err
	}
	r.finish(t)
	return t, meta, nil
}

func (r Reshaper) finish(t *Table) {
	if !r.SkipInference {
		inferTypes(t)
	}
}

func (r Reshaper) reshapePage(resp *reporting.Response) (*Table, Metadata, error) {
	if resp == nil {
		return nil, Metadata{}, malformed(nil, nil, "empty response")
	}
	if len(resp.ColumnHeaders) == 0 && len(resp.Rows) > 0 {
		return nil, Metadata{}, malformed(resp, nil, "%d rows but no column headers", len(resp.Rows))
	}

	cols := make([]Column, len(resp.ColumnHeaders))
	for i, h := range resp.ColumnHeaders {
		dt := ParseDataType(h.DataType)
		cols[i] = Column{
			Name:       StripPrefix(h.Name),
			Header:     h.Name,
			ColumnType: h.ColumnType,
			DataType:   dt,
			Kind:       dt.Kind(),
		}
	}

	rows := make([][]any, 0, len(resp.Rows))
	for i, row := range resp.Rows {
		if len(row) != len(cols) {
			return nil, Metadata{}, malformed(row, nil, "row %d has %d cells, expected %d", i, len(row), len(cols))
		}
		out := make([]any, len(cols))
		for j, cell := range row {
			if cell.Null {
				continue
			}
			v, err := Cast(cols[j].DataType, cell.Value)
			if err != nil {
				return nil, Metadata{}, malformed(row, &CastError{
					Column:   cols[j].Name,
					Row:      i,
					Value:    cell.Value,
					DataType: cols[j].DataType,
					Err:      err,
				}, "cell does not match declared type")
			}
			out[j] = v
		}
		rows = append(rows, out)
	}

	meta := Metadata{
		Query:        resp.Query,
		TotalResults: resp.TotalResults,
		ItemsPerPage: resp.ItemsPerPage,
		Pages:        1,
		Complete:     resp.NextLink == "" && resp.NextPageToken == "",
	}

	if resp.ContainsSampledData {
		s, err := sampling(resp.SampleSize, resp.SampleSpace)
		if err != nil {
			return nil, Metadata{}, malformed(map[string]any{
				"sampleSize":  resp.SampleSize,
				"sampleSpace": resp.SampleSpace,
			}, err, "invalid sampling counters")
		}
		meta.Sampling = s
	}

	if len(resp.TotalsForAllResults) > 0 {
		totals, err := castTotals(cols, resp.TotalsForAllResults)
		if err != nil {
			return nil, Metadata{}, malformed(resp.TotalsForAllResults, err, "invalid totals")
		}
		meta.Totals = totals
	}

	return &Table{Columns: cols, Rows: rows}, meta, nil
}

func sampling(size, space reporting.Scalar) (*Sampling, error) {
	n, err := size.Int64()
	if err != nil {
		return nil, err
	}
	m, err := space.Int64()
	if err != nil {
		return nil, err
	}
	return &Sampling{SampleSize: n, SampleSpace: m}, nil
}

func castTotals(cols []Column, totals map[string]reporting.Scalar) (map[string]any, error) {
	out := make(map[string]any, len(totals))
	for header, raw := range totals {
		dt := DataTypeString
		for _, c := range cols {
			if c.Header == header {
				dt = c.DataType
				break
			}
		}
		v, err := Cast(dt, raw.String())
		if err != nil {
			return nil, &CastError{Column: StripPrefix(header), Row: -1, Value: raw.String(), DataType: dt, Err: err}
		}
		out[StripPrefix(header)] = v
	}
	return out, nil
}

// ReshapeReport converts a Reporting v4 report. Each row's dimension values
// and metric groups (one per date range) are concatenated positionally.
// Metric columns for the second and later date ranges carry a "_<n>"
// suffix.
func (r Reshaper) ReshapeReport(rep *reporting.Report) (*Table, Metadata, error) {
	t, meta, err := r.reshapeReport(rep)
	if err != nil {
		return nil, Metadata{}, err
	}
	r.finish(t)
	return t, meta, nil
}

func (r Reshaper) reshapeReport(rep *reporting.Report) (*Table, Metadata, error) {
	if rep == nil {
		return nil, Metadata{}, malformed(nil, nil, "empty report")
	}
	dims := rep.ColumnHeader.Dimensions
	entries := rep.ColumnHeader.MetricHeader.MetricHeaderEntries
	if len(dims)+len(entries) == 0 && len(rep.Data.Rows) > 0 {
		return nil, Metadata{}, malformed(rep.ColumnHeader, nil, "%d rows but no column headers", len(rep.Data.Rows))
	}

	ranges := len(rep.Data.Totals)
	for _, row := range rep.Data.Rows {
		if len(row.Metrics) > ranges {
			ranges = len(row.Metrics)
		}
	}
	if ranges == 0 && len(entries) > 0 {
		ranges = 1
	}

	cols := make([]Column, 0, len(dims)+ranges*len(entries))
	for _, d := range dims {
		cols = append(cols, Column{
			Name:       StripPrefix(d),
			Header:     d,
			ColumnType: "DIMENSION",
			DataType:   DataTypeString,
			Kind:       KindString,
		})
	}
	for dr := 0; dr < ranges; dr++ {
		for _, e := range entries {
			name, header := StripPrefix(e.Name), e.Name
			if dr > 0 {
				suffix := "_" + strconv.Itoa(dr)
				name, header = name+suffix, header+suffix
			}
			dt := ParseDataType(e.Type)
			cols = append(cols, Column{
				Name:       name,
				Header:     header,
				ColumnType: "METRIC",
				DataType:   dt,
				Kind:       dt.Kind(),
			})
		}
	}

	rows := make([][]any, 0, len(rep.Data.Rows))
	for i, row := range rep.Data.Rows {
		flat, err := flattenRow(row, len(dims), len(entries), ranges)
		if err != nil {
			return nil, Metadata{}, malformed(row, err, "row %d", i)
		}
		out := make([]any, len(cols))
		for j, raw := range flat {
			v, err := Cast(cols[j].DataType, raw)
			if err != nil {
				return nil, Metadata{}, malformed(row, &CastError{
					Column:   cols[j].Name,
					Row:      i,
					Value:    raw,
					DataType: cols[j].DataType,
					Err:      err,
				}, "cell does not match declared type")
			}
			out[j] = v
		}
		rows = append(rows, out)
	}

	meta := Metadata{
		TotalResults: rep.Data.RowCount,
		Pages:        1,
		Complete:     rep.NextPageToken == "",
	}

	if len(rep.Data.SamplesReadCounts) > 0 || len(rep.Data.SamplingSpaceSizes) > 0 {
		if len(rep.Data.SamplesReadCounts) == 0 || len(rep.Data.SamplingSpaceSizes) == 0 {
			return nil, Metadata{}, malformed(rep.Data, nil, "incomplete sampling counters")
		}
		s, err := sampling(rep.Data.SamplesReadCounts[0], rep.Data.SamplingSpaceSizes[0])
		if err != nil {
			return nil, Metadata{}, malformed(rep.Data.SamplesReadCounts, err, "invalid sampling counters")
		}
		meta.Sampling = s
	}

	if len(rep.Data.Totals) > 0 {
		totals := make(map[string]any, len(rep.Data.Totals)*len(entries))
		for dr, group := range rep.Data.Totals {
			if len(group.Values) != len(entries) {
				return nil, Metadata{}, malformed(rep.Data.Totals, nil, "totals for date range %d have %d values, expected %d", dr, len(group.Values), len(entries))
			}
			for k, raw := range group.Values {
				col := cols[len(dims)+dr*len(entries)+k]
				v, err := Cast(col.DataType, raw)
				if err != nil {
					return nil, Metadata{}, malformed(rep.Data.Totals, err, "invalid totals")
				}
				totals[col.Name] = v
			}
		}
		meta.Totals = totals
	}

	return &Table{Columns: cols, Rows: rows}, meta, nil
}

// flattenRow concatenates a nested v4 row into one value per column.
func flattenRow(row reporting.ReportRow, dims, metricsPerRange, ranges int) ([]string, error) {
	if len(row.Dimensions) != dims {
		return nil, &shapeError{what: "dimension values", got: len(row.Dimensions), want: dims}
	}
	if len(row.Metrics) != ranges {
		return nil, &shapeError{what: "metric groups", got: len(row.Metrics), want: ranges}
	}
	flat := make([]string, 0, dims+ranges*metricsPerRange)
	flat = append(flat, row.Dimensions...)
	for _, group := range row.Metrics {
		if len(group.Values) != metricsPerRange {
			return nil, &shapeError{what: "metric values", got: len(group.Values), want: metricsPerRange}
		}
		flat = append(flat, group.Values...)
	}
	return flat, nil
}

type shapeError struct {
	what      string
	got, want int
}

func (e *shapeError) Error() string {
	return "has " + strconv.Itoa(e.got) + " " + e.what + ", expected " + strconv.Itoa(e.want)
}
