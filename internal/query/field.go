// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package query

// Field names a recognized query field.
type Field string

// Recognized query fields.
const (
	FieldIDs           Field = "ids"
	FieldStartDate     Field = "start_date"
	FieldEndDate       Field = "end_date"
	FieldMetrics       Field = "metrics"
	FieldDimensions    Field = "dimensions"
	FieldSort          Field = "sort"
	FieldFilters       Field = "filters"
	FieldSegment       Field = "segment"
	FieldSamplingLevel Field = "samplingLevel"
	FieldStartIndex    Field = "start_index"
	FieldMaxResults    Field = "max_results"
	FieldOutput        Field = "output"
	FieldFields        Field = "fields"
	FieldUserIP        Field = "userIp"
	FieldQuotaUser     Field = "quotaUser"
)

// fieldOrder is the canonical field order used for iteration and encoding.
var fieldOrder = []Field{
	FieldIDs,
	FieldStartDate,
	FieldEndDate,
	FieldMetrics,
	FieldDimensions,
	FieldSort,
	FieldFilters,
	FieldSegment,
	FieldSamplingLevel,
	FieldStartIndex,
	FieldMaxResults,
	FieldOutput,
	FieldFields,
	FieldUserIP,
	FieldQuotaUser,
}

// paramNames maps fields whose request parameter differs from the field name.
var paramNames = map[Field]string{
	FieldStartDate:  "start-date",
	FieldEndDate:    "end-date",
	FieldStartIndex: "start-index",
	FieldMaxResults: "max-results",
}

// Fields returns all recognized fields in canonical order.
func Fields() []Field {
	out := make([]Field, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

// ParseField returns the Field named s and whether it is recognized.
func ParseField(s string) (Field, bool) {
	for _, f := range fieldOrder {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Param returns the request parameter name for the field.
func (f Field) Param() string {
	if p, ok := paramNames[f]; ok {
		return p
	}
	return string(f)
}

// Sampling levels accepted by the reporting API.
const (
	SamplingDefault         = "DEFAULT"
	SamplingFaster          = "FASTER"
	SamplingHigherPrecision = "HIGHER_PRECISION"
)

// IDPrefix is the namespace always applied to view identifiers.
const IDPrefix = "ga:"

// DefaultPrefix is the namespace applied to dimensions, metrics, sort and
// filters when none is configured.
const DefaultPrefix = "ga:"
