// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is an optional query field value: a string, an integer, or an
// ordered list of strings and integers. The zero Value is unset.
type Value struct {
	items []string
	list  bool
	set   bool
}

// String returns a scalar string value.
func String(s string) Value {
	return Value{items: []string{s}, set: true}
}

// Int returns a scalar integer value.
func Int(n int) Value {
	return Value{items: []string{strconv.Itoa(n)}, set: true}
}

// Strings returns a list value. An empty list is unset.
func Strings(items ...string) Value {
	if len(items) == 0 {
		return Value{}
	}
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{items: cp, list: true, set: true}
}

// Of converts a loosely typed value, as produced by YAML or JSON decoding,
// into a Value. nil and empty lists are unset.
func Of(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case []string:
		return Strings(x...), nil
	case []int:
		items := make([]string, len(x))
		for i, n := range x {
			items[i] = strconv.Itoa(n)
		}
		return Strings(items...), nil
	case []any:
		items := make([]string, 0, len(x))
		for _, e := range x {
			s, err := scalarString(e)
			if err != nil {
				return Value{}, err
			}
			items = append(items, s)
		}
		return Strings(items...), nil
	default:
		s, err := scalarString(v)
		if err != nil {
			return Value{}, err
		}
		return String(s), nil
	}
}

// scalarString formats a string or integer element.
func scalarString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case int:
		return strconv.Itoa(x), nil
	case int8:
		return strconv.FormatInt(int64(x), 10), nil
	case int16:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		// JSON decoders hand back every number as float64.
		// Integral values beyond the int64 range keep all their digits.
		if x == 0 {
			return "0", nil
		}
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return strconv.FormatFloat(x, 'f', -1, 64), nil
		}
		return "", fmt.Errorf("non-integer number %v", x)
	case fmt.Stringer:
		return x.String(), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// IsSet reports whether the value is present.
func (v Value) IsSet() bool {
	return v.set
}

// IsList reports whether the value was given as a list.
func (v Value) IsList() bool {
	return v.list
}

// Items returns the elements of the value; a scalar yields one element.
func (v Value) Items() []string {
	out := make([]string, len(v.items))
	copy(out, v.items)
	return out
}

// String implements fmt.Stringer for diagnostics and error messages.
func (v Value) String() string {
	if !v.set {
		return ""
	}
	if v.list {
		return "[" + strings.Join(v.items, " ") + "]"
	}
	return v.items[0]
}
