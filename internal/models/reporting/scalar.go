// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package reporting

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// Scalar is a JSON string, number or boolean kept as its textual form.
// The API encodes 64-bit counters as strings; Scalar accepts either.
type Scalar string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	text, err := scalarText(data)
	if err != nil {
		return err
	}
	*s = Scalar(text)
	return nil
}

// String returns the textual value.
func (s Scalar) String() string {
	return string(s)
}

// Int64 parses the value as a base-10 integer.
func (s Scalar) Int64() (int64, error) {
	return strconv.ParseInt(string(s), 10, 64)
}

// scalarText decodes a JSON primitive into its text. null yields "".
func scalarText(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil
	case '{', '[':
		return "", fmt.Errorf("expected a JSON primitive, got %.40s", data)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return "", err
		}
		return n.String(), nil
	}
}
