// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package logging

import (
	"net/url"
	"strings"
)

// sensitiveParams are query parameters whose values must never be logged.
var sensitiveParams = map[string]bool{
	"access_token": true,
	"key":          true,
	"token":        true,
	"api_key":      true,
	"apikey":       true,
}

// SanitizeToken masks a token, showing only the first and last 4 characters.
// Tokens of 12 characters or fewer are fully masked.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeURL masks credential-bearing query parameters in rawURL. Values
// that do not parse as URLs are returned unchanged.
func SanitizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.RawQuery == "" {
		return rawURL
	}
	params := u.Query()
	changed := false
	for k, vs := range params {
		if !sensitiveParams[strings.ToLower(k)] {
			continue
		}
		for i := range vs {
			vs[i] = SanitizeToken(vs[i])
		}
		changed = true
	}
	if !changed {
		return rawURL
	}
	u.RawQuery = params.Encode()
	return u.String()
}
