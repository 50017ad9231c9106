// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

// Package analytics ties query normalization, fetching and reshaping into
// a single execution.
//
//	svc := analytics.NewService(client, query.NewNormalizer("ga:"), cfg.Reporting.MaxPages)
//	res, err := svc.ExecuteMap(ctx, map[string]any{
//	    "ids":        12345,
//	    "start_date": "30daysAgo",
//	    "metrics":    []string{"sessions", "users"},
//	    "dimensions": "date",
//	}, analytics.Options{AllPages: true})
//
// Each execution carries its own correlation ID in the context so the log
// lines of one report can be grouped.
package analytics

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gaquery/internal/logging"
	"github.com/tomtom215/gaquery/internal/metrics"
	"github.com/tomtom215/gaquery/internal/models/reporting"
	"github.com/tomtom215/gaquery/internal/query"
	"github.com/tomtom215/gaquery/internal/report"
	"github.com/tomtom215/gaquery/internal/validation"
)

// Fetcher retrieves report pages. client.Client and
// client.CircuitBreakerClient implement it.
type Fetcher interface {
	Fetch(ctx context.Context, q query.Normalized) (*reporting.Response, error)
	FetchRaw(ctx context.Context, q query.Normalized) ([]byte, error)
}

// BatchFetcher posts Reporting v4 batch requests.
type BatchFetcher interface {
	BatchGet(ctx context.Context, request any) (*reporting.BatchResponse, error)
}

// ErrBatchUnsupported is returned by ExecuteBatch when the fetcher cannot post batches.
var ErrBatchUnsupported = errors.New("analytics: fetcher does not support batch requests")

// Options controls one execution.
type Options struct {
	// AllPages follows continuation markers until the last page.
	AllPages bool

	// MaxPages overrides the service page budget when positive.
	MaxPages int `validate:"gte=0"`

	// RawJSON returns the first page undecoded instead of a table. A query
	// carrying the output field always runs in this mode.
	RawJSON bool

	// SkipInference keeps date columns as strings.
	SkipInference bool
}

// Result is the outcome of one execution.
type Result struct {
	// Query is the normalized query that was sent, suitable for archiving.
	Query query.Normalized

	Table    *report.Table
	Metadata report.Metadata

	// Raw is set instead of Table in raw JSON mode.
	Raw json.RawMessage
}

// Service executes report queries.
type Service struct {
	fetcher    Fetcher
	normalizer *query.Normalizer
	maxPages   int
}

// NewService creates a service. maxPages is the default page budget for
// AllPages executions (0 means unlimited).
func NewService(fetcher Fetcher, normalizer *query.Normalizer, maxPages int) *Service {
	if normalizer == nil {
		normalizer = query.NewNormalizer(query.DefaultPrefix)
	}
	return &Service{
		fetcher:    fetcher,
		normalizer: normalizer,
		maxPages:   maxPages,
	}
}

// ExecuteMap decodes a loose query description and executes it.
func (s *Service) ExecuteMap(ctx context.Context, m map[string]any, opts Options) (*Result, error) {
	d, err := query.FromMap(m)
	if err != nil {
		metrics.QueriesNormalized.WithLabelValues("invalid").Inc()
		return nil, err
	}
	return s.Execute(ctx, d, opts)
}

// Execute normalizes d, fetches one or all pages and reshapes them.
//
// When pagination stops on an error after at least one page, the partial
// Result is returned together with the error.
func (s *Service) Execute(ctx context.Context, d query.Description, opts Options) (*Result, error) {
	if verr := validation.ValidateStruct(&opts); verr != nil {
		return nil, fmt.Errorf("invalid options: %w", verr)
	}

	ctx = logging.ContextWithNewCorrelationID(ctx)
	log := logging.Ctx(ctx)

	q, err := s.normalizer.Normalize(d)
	if err != nil {
		return nil, err
	}

	ids, _ := q.Get(query.FieldIDs)
	log.Debug().Str("ids", ids).Str("query", q.Encode()).Msg("Executing report query")

	if _, ok := q.Get(query.FieldOutput); ok || opts.RawJSON {
		return s.executeRaw(ctx, q)
	}

	reshaper := report.Reshaper{SkipInference: opts.SkipInference}

	if !opts.AllPages {
		resp, err := s.fetcher.Fetch(ctx, q)
		if err != nil {
			return nil, err
		}
		table, meta, err := reshaper.Reshape(resp)
		if err != nil {
			return nil, err
		}
		metrics.RecordPage(table.Len())
		return &Result{Query: q, Table: table, Metadata: meta}, nil
	}

	collector := report.Collector{
		Fetch:    s.fetcher.Fetch,
		MaxPages: s.pageBudget(opts),
		Reshaper: reshaper,
	}

	table, meta, err := collector.Collect(ctx, q)
	if err != nil {
		if table == nil {
			return nil, err
		}
		log.Warn().Err(err).Int("pages", meta.Pages).Int("rows", table.Len()).Msg("Returning partial report")
		return &Result{Query: q, Table: table, Metadata: meta}, err
	}

	log.Info().
		Int("pages", meta.Pages).
		Int("rows", table.Len()).
		Bool("complete", meta.Complete).
		Bool("sampled", meta.Sampling != nil).
		Msg("Report collected")

	return &Result{Query: q, Table: table, Metadata: meta}, nil
}

func (s *Service) executeRaw(ctx context.Context, q query.Normalized) (*Result, error) {
	body, err := s.fetcher.FetchRaw(ctx, q)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: response is not valid JSON", report.ErrMalformedResponse)
	}
	return &Result{Query: q, Raw: json.RawMessage(body)}, nil
}

// ExecuteBatch posts a Reporting v4 batch request and reshapes every report.
// The request document is sent unchanged, so Result.Query is empty.
//
// With AllPages set, each report whose page carries a nextPageToken is
// followed by re-posting its own request with pageToken set, under the same
// page budget as Execute. When a report stops on an error, the results up to
// and including its partial table are returned together with the error.
func (s *Service) ExecuteBatch(ctx context.Context, request any, opts Options) ([]*Result, error) {
	if verr := validation.ValidateStruct(&opts); verr != nil {
		return nil, fmt.Errorf("invalid options: %w", verr)
	}
	bf, ok := s.fetcher.(BatchFetcher)
	if !ok {
		return nil, ErrBatchUnsupported
	}

	ctx = logging.ContextWithNewCorrelationID(ctx)
	log := logging.Ctx(ctx)

	resp, err := bf.BatchGet(ctx, request)
	if err != nil {
		return nil, err
	}

	reshaper := report.Reshaper{SkipInference: opts.SkipInference}
	if !opts.AllPages {
		results, err := reshapeBatch(resp, reshaper)
		if err != nil {
			return nil, err
		}
		log.Info().Int("reports", len(results)).Msg("Batch collected")
		return results, nil
	}

	requests, decodeErr := batchRequests(request)
	collector := report.Collector{MaxPages: s.pageBudget(opts), Reshaper: reshaper}

	results := make([]*Result, 0, len(resp.Reports))
	for i := range resp.Reports {
		fetch := func(ctx context.Context, token string) (*reporting.Report, error) {
			if decodeErr != nil {
				return nil, decodeErr
			}
			if i >= len(requests) {
				return nil, fmt.Errorf("%w: %d reports for %d requests",
					report.ErrMalformedResponse, len(resp.Reports), len(requests))
			}
			return fetchReportPage(ctx, bf, requests[i], token)
		}

		table, meta, err := collector.CollectReport(ctx, &resp.Reports[i], fetch)
		if table != nil {
			results = append(results, &Result{Table: table, Metadata: meta})
		}
		if err != nil {
			log.Warn().Err(err).Int("report", i).Int("pages", meta.Pages).Msg("Returning partial batch")
			return results, fmt.Errorf("report %d: %w", i, err)
		}
	}

	log.Info().Int("reports", len(results)).Msg("Batch collected")
	return results, nil
}

// pageBudget resolves the page budget for one execution.
func (s *Service) pageBudget(opts Options) int {
	if opts.MaxPages > 0 {
		return opts.MaxPages
	}
	return s.maxPages
}

// batchRequests re-decodes the caller's batch document into its individual
// report requests so one of them can be re-posted with a page token.
func batchRequests(request any) ([]map[string]json.RawMessage, error) {
	raw, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encode batch request: %w", err)
	}
	var doc struct {
		ReportRequests []map[string]json.RawMessage `json:"reportRequests"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode batch request: %w", err)
	}
	return doc.ReportRequests, nil
}

// fetchReportPage posts a single-report batch for the page after token.
func fetchReportPage(ctx context.Context, bf BatchFetcher, base map[string]json.RawMessage, token string) (*reporting.Report, error) {
	follow := make(map[string]json.RawMessage, len(base)+1)
	for k, v := range base {
		follow[k] = v
	}
	tok, err := json.Marshal(token)
	if err != nil {
		return nil, err
	}
	follow["pageToken"] = tok

	resp, err := bf.BatchGet(ctx, map[string]any{"reportRequests": []map[string]json.RawMessage{follow}})
	if err != nil {
		return nil, err
	}
	if len(resp.Reports) != 1 {
		return nil, fmt.Errorf("%w: page request returned %d reports, expected 1",
			report.ErrMalformedResponse, len(resp.Reports))
	}
	return &resp.Reports[0], nil
}

func reshapeBatch(resp *reporting.BatchResponse, reshaper report.Reshaper) ([]*Result, error) {
	results := make([]*Result, 0, len(resp.Reports))
	for i := range resp.Reports {
		table, meta, err := reshaper.ReshapeReport(&resp.Reports[i])
		if err != nil {
			return nil, fmt.Errorf("report %d: %w", i, err)
		}
		metrics.RecordPage(table.Len())
		results = append(results, &Result{Table: table, Metadata: meta})
	}
	return results, nil
}
