// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package reporting

// BatchResponse is the Reporting v4 reports:batchGet payload.
type BatchResponse struct {
	Reports        []Report       `json:"reports"`
	QueryCost      int64          `json:"queryCost,omitempty"`
	ResourceQuotas map[string]any `json:"resourceQuotasRemaining,omitempty"`
}

// Report is one report of a batch.
type Report struct {
	ColumnHeader  ReportColumnHeader `json:"columnHeader"`
	Data          ReportData         `json:"data"`
	NextPageToken string             `json:"nextPageToken,omitempty"`
}

// ReportColumnHeader lists dimension names and metric header entries.
type ReportColumnHeader struct {
	Dimensions   []string     `json:"dimensions,omitempty"`
	MetricHeader MetricHeader `json:"metricHeader"`
}

// MetricHeader holds the metric column definitions.
type MetricHeader struct {
	MetricHeaderEntries []MetricHeaderEntry `json:"metricHeaderEntries,omitempty"`
}

// MetricHeaderEntry names a metric and its type (INTEGER, FLOAT, CURRENCY,
// PERCENT, TIME).
type MetricHeaderEntry struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// ReportData carries rows, totals and sampling counters.
type ReportData struct {
	Rows               []ReportRow       `json:"rows,omitempty"`
	Totals             []DateRangeValues `json:"totals,omitempty"`
	Minimums           []DateRangeValues `json:"minimums,omitempty"`
	Maximums           []DateRangeValues `json:"maximums,omitempty"`
	RowCount           int64             `json:"rowCount,omitempty"`
	SamplesReadCounts  []Scalar          `json:"samplesReadCounts,omitempty"`
	SamplingSpaceSizes []Scalar          `json:"samplingSpaceSizes,omitempty"`
	IsDataGolden       bool              `json:"isDataGolden,omitempty"`
}

// ReportRow nests one row's dimension values and per-date-range metrics.
type ReportRow struct {
	Dimensions []string          `json:"dimensions,omitempty"`
	Metrics    []DateRangeValues `json:"metrics,omitempty"`
}

// DateRangeValues holds metric values for one date range.
type DateRangeValues struct {
	Values []string `json:"values,omitempty"`
}
