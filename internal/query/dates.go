// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package query

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the date format accepted by the reporting API.
const DateLayout = "2006-01-02"

// Clock provides the current date for relative date resolution.
type Clock func() time.Time

// endDateLayouts are tried in order for literal end dates.
var endDateLayouts = []string{
	DateLayout,
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"20060102",
	time.RFC3339,
}

// resolveRelative handles today, yesterday and NdaysAgo.
func resolveRelative(s string, now time.Time) (time.Time, bool) {
	switch s {
	case "today":
		return now, true
	case "yesterday":
		return now.AddDate(0, 0, -1), true
	}
	n, ok := strings.CutSuffix(s, "daysAgo")
	if !ok || n == "" {
		return time.Time{}, false
	}
	days, err := strconv.Atoi(n)
	if err != nil || days < 0 || n[0] == '+' || n[0] == '-' {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -days), true
}

func resolveStartDate(v Value, now time.Time) (string, error) {
	if !v.IsSet() {
		return "", invalid(FieldStartDate, "", "start_date is required")
	}
	s, err := scalar(FieldStartDate, v)
	if err != nil {
		return "", err
	}
	if t, ok := resolveRelative(s, now); ok {
		return t.Format(DateLayout), nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", invalid(FieldStartDate, s, "expected YYYY-MM-DD, today, yesterday or NdaysAgo")
	}
	return t.Format(DateLayout), nil
}

func resolveEndDate(v Value, now time.Time) (string, error) {
	if !v.IsSet() {
		return now.Format(DateLayout), nil
	}
	s, err := scalar(FieldEndDate, v)
	if err != nil {
		return "", err
	}
	if t, ok := resolveRelative(s, now); ok {
		return t.Format(DateLayout), nil
	}
	for _, layout := range endDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", invalid(FieldEndDate, s, "unparseable date")
}
