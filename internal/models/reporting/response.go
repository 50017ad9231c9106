// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package reporting

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Response is a Core Reporting v3 or Multi-Channel Funnels feed page.
type Response struct {
	Kind                string            `json:"kind,omitempty"`
	ID                  string            `json:"id,omitempty"`
	Query               map[string]any    `json:"query,omitempty"`
	ItemsPerPage        int64             `json:"itemsPerPage,omitempty"`
	TotalResults        int64             `json:"totalResults,omitempty"`
	SelfLink            string            `json:"selfLink,omitempty"`
	PreviousLink        string            `json:"previousLink,omitempty"`
	NextLink            string            `json:"nextLink,omitempty"`
	NextPageToken       string            `json:"nextPageToken,omitempty"`
	ColumnHeaders       []ColumnHeader    `json:"columnHeaders"`
	Rows                [][]Cell          `json:"rows,omitempty"`
	ContainsSampledData bool              `json:"containsSampledData,omitempty"`
	SampleSize          Scalar            `json:"sampleSize,omitempty"`
	SampleSpace         Scalar            `json:"sampleSpace,omitempty"`
	TotalsForAllResults map[string]Scalar `json:"totalsForAllResults,omitempty"`
	ProfileInfo         *ProfileInfo      `json:"profileInfo,omitempty"`
}

// ColumnHeader describes one response column.
type ColumnHeader struct {
	Name       string `json:"name"`                 // e.g. "ga:sessions"
	ColumnType string `json:"columnType,omitempty"` // DIMENSION or METRIC
	DataType   string `json:"dataType,omitempty"`   // INTEGER, FLOAT, STRING, ...
}

// ProfileInfo identifies the view the report was run against.
type ProfileInfo struct {
	ProfileID   string `json:"profileId,omitempty"`
	AccountID   string `json:"accountId,omitempty"`
	ProfileName string `json:"profileName,omitempty"`
	TableID     string `json:"tableId,omitempty"`
}

// Cell is a single row value. Core Reporting rows carry plain strings;
// Multi-Channel Funnels rows carry objects holding either a primitive
// value or a conversion path, which is flattened to "node > node".
type Cell struct {
	Value string
	Null  bool
}

// pathSeparator joins conversion path nodes.
const pathSeparator = " > "

type mcfCell struct {
	PrimitiveValue      *string `json:"primitiveValue"`
	ConversionPathValue []struct {
		InteractionType string `json:"interactionType"`
		NodeValue       string `json:"nodeValue"`
	} `json:"conversionPathValue"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = Cell{Null: true}
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var m mcfCell
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("decode cell: %w", err)
		}
		if m.PrimitiveValue != nil {
			*c = Cell{Value: *m.PrimitiveValue}
			return nil
		}
		if m.ConversionPathValue != nil {
			nodes := make([]string, len(m.ConversionPathValue))
			for i, n := range m.ConversionPathValue {
				nodes[i] = n.NodeValue
			}
			*c = Cell{Value: strings.Join(nodes, pathSeparator)}
			return nil
		}
		return fmt.Errorf("decode cell: object has neither primitiveValue nor conversionPathValue")
	}
	text, err := scalarText(data)
	if err != nil {
		return fmt.Errorf("decode cell: %w", err)
	}
	*c = Cell{Value: text}
	return nil
}

// MarshalJSON implements json.Marshaler. Cells always encode as strings.
func (c Cell) MarshalJSON() ([]byte, error) {
	if c.Null {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// StringCells converts plain string rows into cells. Tests and callers
// that assemble responses by hand use it.
func StringCells(rows ...[]string) [][]Cell {
	out := make([][]Cell, len(rows))
	for i, row := range rows {
		cells := make([]Cell, len(row))
		for j, v := range row {
			cells[j] = Cell{Value: v}
		}
		out[i] = cells
	}
	return out
}

// ErrorResponse is the error envelope returned with non-2xx statuses.
type ErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status,omitempty"`
		Errors  []struct {
			Domain  string `json:"domain"`
			Reason  string `json:"reason"`
			Message string `json:"message"`
		} `json:"errors,omitempty"`
	} `json:"error"`
}
