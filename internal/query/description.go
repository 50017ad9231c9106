// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package query

import (
	"sort"
)

// Description is a loosely specified report query. Every field is optional
// at construction; the Normalizer enforces which ones are required.
type Description struct {
	IDs           Value
	StartDate     Value
	EndDate       Value
	Metrics       Value
	Dimensions    Value
	Sort          Value
	Filters       Value
	Segment       Value
	SamplingLevel Value
	StartIndex    Value
	MaxResults    Value
	Output        Value
	Fields        Value
	UserIP        Value
	QuotaUser     Value

	// Unknown lists field names that are not recognized. They are dropped
	// during normalization.
	Unknown []string
}

// FromMap builds a Description from a loosely typed mapping. Unrecognized
// keys are kept in Unknown so normalization can report them.
func FromMap(m map[string]any) (Description, error) {
	var d Description
	for key, raw := range m {
		f, ok := ParseField(key)
		if !ok {
			d.Unknown = append(d.Unknown, key)
			continue
		}
		v, err := Of(raw)
		if err != nil {
			return Description{}, &InvalidQueryError{
				Field:  f,
				Value:  truncateValue(raw),
				Reason: err.Error(),
			}
		}
		d.Set(f, v)
	}
	sort.Strings(d.Unknown)
	return d, nil
}

// Get returns the value of a recognized field.
func (d *Description) Get(f Field) Value {
	if p := d.field(f); p != nil {
		return *p
	}
	return Value{}
}

// Set assigns the value of a recognized field. Unrecognized fields are
// recorded in Unknown.
func (d *Description) Set(f Field, v Value) {
	if p := d.field(f); p != nil {
		*p = v
		return
	}
	d.Unknown = append(d.Unknown, string(f))
}

func (d *Description) field(f Field) *Value {
	switch f {
	case FieldIDs:
		return &d.IDs
	case FieldStartDate:
		return &d.StartDate
	case FieldEndDate:
		return &d.EndDate
	case FieldMetrics:
		return &d.Metrics
	case FieldDimensions:
		return &d.Dimensions
	case FieldSort:
		return &d.Sort
	case FieldFilters:
		return &d.Filters
	case FieldSegment:
		return &d.Segment
	case FieldSamplingLevel:
		return &d.SamplingLevel
	case FieldStartIndex:
		return &d.StartIndex
	case FieldMaxResults:
		return &d.MaxResults
	case FieldOutput:
		return &d.Output
	case FieldFields:
		return &d.Fields
	case FieldUserIP:
		return &d.UserIP
	case FieldQuotaUser:
		return &d.QuotaUser
	default:
		return nil
	}
}
