// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package query

import (
	"maps"
	"net/url"
)

// PageTokenParam is the request parameter carrying a continuation token.
const PageTokenParam = "pageToken"

// Normalized is a validated, request-ready query. It is immutable: the
// With methods return modified copies.
type Normalized struct {
	values    map[Field]string
	pageToken string
}

// Get returns the normalized value of f and whether it is present.
func (q Normalized) Get(f Field) (string, bool) {
	v, ok := q.values[f]
	return v, ok
}

// Fields returns the present fields in canonical order.
func (q Normalized) Fields() []Field {
	out := make([]Field, 0, len(q.values))
	for _, f := range fieldOrder {
		if _, ok := q.values[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// IsZero reports whether q is the zero value.
func (q Normalized) IsZero() bool {
	return len(q.values) == 0
}

// Map returns the query keyed by field name.
func (q Normalized) Map() map[string]string {
	out := make(map[string]string, len(q.values))
	for f, v := range q.values {
		out[string(f)] = v
	}
	return out
}

// Values returns the query as request parameters.
func (q Normalized) Values() url.Values {
	params := make(url.Values, len(q.values)+1)
	for _, f := range q.Fields() {
		params.Set(f.Param(), q.values[f])
	}
	if q.pageToken != "" {
		params.Set(PageTokenParam, q.pageToken)
	}
	return params
}

// Encode returns the URL-encoded request parameters.
func (q Normalized) Encode() string {
	return q.Values().Encode()
}

// With returns a copy of q with f set to value. The value is not
// re-normalized; callers use it for pagination fields.
func (q Normalized) With(f Field, value string) Normalized {
	values := maps.Clone(q.values)
	if values == nil {
		values = make(map[Field]string, 1)
	}
	values[f] = value
	return Normalized{values: values, pageToken: q.pageToken}
}

// WithPageToken returns a copy of q carrying a continuation token.
func (q Normalized) WithPageToken(token string) Normalized {
	return Normalized{values: q.values, pageToken: token}
}

// PageToken returns the continuation token, if any.
func (q Normalized) PageToken() string {
	return q.pageToken
}

// Description converts q back into a Description. Normalizing the result
// yields q again.
func (q Normalized) Description() Description {
	var d Description
	for f, v := range q.values {
		d.Set(f, String(v))
	}
	return d
}

// Equal reports whether two normalized queries carry the same fields and
// continuation token.
func (q Normalized) Equal(other Normalized) bool {
	return q.pageToken == other.pageToken && maps.Equal(q.values, other.values)
}
