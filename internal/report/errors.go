// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package report

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gaquery/internal/metrics"
)

// ErrMalformedResponse is matched by every *MalformedResponseError.
var ErrMalformedResponse = errors.New("malformed response")

// maxPayloadLen bounds the raw payload kept for diagnosis.
const maxPayloadLen = 1024

// MalformedResponseError reports a response that does not match the
// expected shape. Payload holds the start of the offending response.
type MalformedResponseError struct {
	Reason  string
	Payload string
	Err     error
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	msg := "malformed response: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Payload != "" {
		msg += " (payload: " + e.Payload + ")"
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformedResponse.
func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// CastError reports a cell that does not parse as its column's type.
type CastError struct {
	Column   string
	Row      int
	Value    string
	DataType DataType
	Err      error
}

// Error implements the error interface.
func (e *CastError) Error() string {
	return fmt.Sprintf("column %q row %d: cannot cast %q to %s: %v", e.Column, e.Row, e.Value, e.DataType, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *CastError) Unwrap() error {
	return e.Err
}

// malformed builds a MalformedResponseError carrying a truncated encoding
// of payload.
func malformed(payload any, cause error, format string, args ...any) error {
	metrics.MalformedResponses.Inc()
	return &MalformedResponseError{
		Reason:  fmt.Sprintf(format, args...),
		Payload: truncatePayload(payload),
		Err:     cause,
	}
}

func truncatePayload(payload any) string {
	if payload == nil {
		return ""
	}
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte(fmt.Sprint(payload))
	}
	if len(data) > maxPayloadLen {
		return string(data[:maxPayloadLen]) + "...(truncated)"
	}
	return string(data)
}
