// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package query

import (
	"errors"
	"fmt"
)

// ErrInvalidQuery is matched by every *InvalidQueryError via errors.Is.
var ErrInvalidQuery = errors.New("invalid query")

// InvalidQueryError reports a structurally invalid query description.
type InvalidQueryError struct {
	Field  Field
	Value  string
	Reason string
}

// Error implements the error interface.
func (e *InvalidQueryError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid query: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid query: %s=%q: %s", e.Field, e.Value, e.Reason)
}

// Is reports whether target is ErrInvalidQuery.
func (e *InvalidQueryError) Is(target error) bool {
	return target == ErrInvalidQuery
}

func invalid(f Field, v, reason string) error {
	return &InvalidQueryError{Field: f, Value: v, Reason: reason}
}

const maxErrorValueLen = 200

func truncateValue(v any) string {
	s := fmt.Sprint(v)
	if len(s) > maxErrorValueLen {
		return s[:maxErrorValueLen] + "..."
	}
	return s
}
