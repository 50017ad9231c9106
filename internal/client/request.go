// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package client

import (
	"net/http"
	"net/url"
	"strings"
)

// Endpoint labels used in logs and metrics.
const (
	endpointCore  = "ga"
	endpointMCF   = "mcf"
	endpointBatch = "batch"
)

// apiRequest holds one reporting API request.
type apiRequest struct {
	endpoint string
	method   string
	baseURL  string
	params   url.Values
	body     []byte
}

func newGetRequest(endpoint, baseURL string, params url.Values) *apiRequest {
	return &apiRequest{
		endpoint: endpoint,
		method:   http.MethodGet,
		baseURL:  baseURL,
		params:   params,
	}
}

func newPostRequest(endpoint, baseURL string, body []byte) *apiRequest {
	return &apiRequest{
		endpoint: endpoint,
		method:   http.MethodPost,
		baseURL:  baseURL,
		body:     body,
	}
}

// buildURL constructs the full URL with all parameters.
func (r *apiRequest) buildURL() string {
	if len(r.params) == 0 {
		return r.baseURL
	}
	sep := "?"
	if strings.Contains(r.baseURL, "?") {
		sep = "&"
	}
	return r.baseURL + sep + r.params.Encode()
}

// cacheKey identifies the request for the response cache. Only GET
// requests are cacheable.
func (r *apiRequest) cacheKey() (string, bool) {
	if r.method != http.MethodGet {
		return "", false
	}
	return r.buildURL(), true
}
