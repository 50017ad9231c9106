// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gaquery/internal/models/reporting"
)

// ErrRateLimited is wrapped by the error returned once HTTP 429 retries are exhausted.
var ErrRateLimited = errors.New("rate limited")

// APIError is a non-200 response from the reporting API.
type APIError struct {
	StatusCode int
	// Code is the first error reason (e.g. "invalidParameter") or the
	// envelope status when no reason is given.
	Code    string
	Message string
	// Body is the raw response body, truncated for large responses.
	Body string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		if e.Code != "" {
			return fmt.Sprintf("reporting API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
		}
		return fmt.Sprintf("reporting API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Body)
}

// ClientError reports whether the request itself was rejected (4xx other than 429).
func (e *APIError) ClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests
}

// newAPIError builds an APIError, decoding the error envelope when present.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: string(body)}

	var envelope reporting.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return apiErr
	}

	apiErr.Message = envelope.Error.Message
	apiErr.Code = envelope.Error.Status
	if len(envelope.Error.Errors) > 0 && envelope.Error.Errors[0].Reason != "" {
		apiErr.Code = envelope.Error.Errors[0].Reason
	}
	return apiErr
}
