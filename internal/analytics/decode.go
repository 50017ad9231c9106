// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package analytics

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gaquery/internal/models/reporting"
	"github.com/tomtom215/gaquery/internal/report"
)

// ReshapeJSON reshapes a saved API response without fetching anything.
// Reporting v4 batch documents (a top-level "reports" array) yield one
// Result per report; core and MCF pages yield a single Result.
func ReshapeJSON(data []byte, opts Options) ([]*Result, error) {
	reshaper := report.Reshaper{SkipInference: opts.SkipInference}

	var probe struct {
		Reports json.RawMessage `json:"reports"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", report.ErrMalformedResponse, err)
	}

	if len(probe.Reports) > 0 {
		var batch reporting.BatchResponse
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("%w: batch response: %v", report.ErrMalformedResponse, err)
		}
		return reshapeBatch(&batch, reshaper)
	}

	var resp reporting.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", report.ErrMalformedResponse, err)
	}
	table, meta, err := reshaper.Reshape(&resp)
	if err != nil {
		return nil, err
	}
	return []*Result{{Table: table, Metadata: meta}}, nil
}
