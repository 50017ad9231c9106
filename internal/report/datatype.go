// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package report

import (
	"fmt"
	"strconv"
	"strings"
)

// DataType is a column's declared type tag.
type DataType int

const (
	DataTypeString DataType = iota
	DataTypeInteger
	DataTypeFloat
	DataTypeCurrency
	DataTypePercent
	DataTypeBoolean
	DataTypeTime
)

var dataTypeNames = map[DataType]string{
	DataTypeString:   "STRING",
	DataTypeInteger:  "INTEGER",
	DataTypeFloat:    "FLOAT",
	DataTypeCurrency: "CURRENCY",
	DataTypePercent:  "PERCENT",
	DataTypeBoolean:  "BOOLEAN",
	DataTypeTime:     "TIME",
}

// ParseDataType maps an API type tag to a DataType. Unknown tags are
// treated as STRING.
func ParseDataType(tag string) DataType {
	upper := strings.ToUpper(strings.TrimSpace(tag))
	for dt, name := range dataTypeNames {
		if name == upper {
			return dt
		}
	}
	return DataTypeString
}

// String returns the API type tag.
func (d DataType) String() string {
	if name, ok := dataTypeNames[d]; ok {
		return name
	}
	return "STRING"
}

// Kind returns the Go representation produced when casting the type.
func (d DataType) Kind() Kind {
	switch d {
	case DataTypeInteger:
		return KindInteger
	case DataTypeFloat, DataTypeCurrency, DataTypePercent, DataTypeTime:
		return KindFloat
	case DataTypeBoolean:
		return KindBool
	default:
		return KindString
	}
}

// Kind is the Go type held by a column's cells.
type Kind int

const (
	KindString  Kind = iota // string
	KindInteger             // int64
	KindFloat               // float64
	KindBool                // bool
	KindTime                // time.Time
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "string"
	}
}

type caster func(string) (any, error)

// casters dispatches on the declared data type.
var casters = map[DataType]caster{
	DataTypeString:   castString,
	DataTypeInteger:  castInteger,
	DataTypeFloat:    castFloat,
	DataTypeCurrency: castFloat,
	DataTypePercent:  castFloat,
	DataTypeBoolean:  castBoolean,
	DataTypeTime:     castDuration,
}

// Cast converts a raw cell value according to d.
func Cast(d DataType, raw string) (any, error) {
	c, ok := casters[d]
	if !ok {
		c = castString
	}
	return c(raw)
}

func castString(s string) (any, error) {
	return s, nil
}

func castInteger(s string) (any, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("not an integer: %w", err)
	}
	return n, nil
}

func castFloat(s string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %w", err)
	}
	return f, nil
}

func castBoolean(s string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes":
		return true, nil
	case "false", "no":
		return false, nil
	}
	return nil, fmt.Errorf("not a boolean")
}

// castDuration accepts seconds ("123.4") or a clock value ("01:02:03") and
// returns seconds.
func castDuration(s string) (any, error) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("not a duration")
	}
	var total float64
	for i, p := range parts {
		var v float64
		var err error
		if i < 2 {
			var n int64
			n, err = strconv.ParseInt(p, 10, 64)
			v = float64(n)
		} else {
			v, err = strconv.ParseFloat(p, 64)
		}
		if err != nil || v < 0 {
			return nil, fmt.Errorf("not a duration")
		}
		total = total*60 + v
	}
	return total, nil
}
