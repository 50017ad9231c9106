// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/gaquery/internal/cache"
	"github.com/tomtom215/gaquery/internal/config"
	"github.com/tomtom215/gaquery/internal/logging"
	"github.com/tomtom215/gaquery/internal/metrics"
	"github.com/tomtom215/gaquery/internal/models/reporting"
	"github.com/tomtom215/gaquery/internal/query"
)

// maxErrorBodySize limits how much of an error response body is kept.
const maxErrorBodySize = 64 * 1024

// maxResponseSize bounds a single decoded page.
const maxResponseSize = 256 << 20

// readBodyForError reads the response body for error reporting (max 64KB).
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// Client handles communication with the reporting API.
//
// Thread Safety: safe for concurrent use. The limiter and cache are
// internally synchronized and each call builds its own request.
type Client struct {
	baseURL        string
	mcfURL         string
	batchURL       string
	accessToken    string
	client         *http.Client
	maxRetries     int           // Maximum retries for HTTP 429
	retryBaseDelay time.Duration // Base delay for exponential backoff
	limiter        *rate.Limiter // nil when throttling is disabled
	cache          *cache.LRU[[]byte]
	maxBodySize    int64
}

// NewClient creates a reporting API client from configuration.
func NewClient(cfg *config.ReportingConfig) *Client {
	c := &Client{
		baseURL:     cfg.BaseURL,
		mcfURL:      cfg.MCFURL,
		batchURL:    cfg.BatchURL,
		accessToken: cfg.AccessToken,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		maxBodySize:    maxResponseSize,
	}
	if c.client.Timeout <= 0 {
		c.client.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	if cfg.CacheSize > 0 {
		c.cache = cache.NewLRU[[]byte](cfg.CacheSize, cfg.CacheTTL)
	}
	return c
}

// Fetch retrieves one page of a core or MCF report. It implements report.FetchFunc.
func (c *Client) Fetch(ctx context.Context, q query.Normalized) (*reporting.Response, error) {
	endpoint, _ := c.endpointFor(q)

	body, err := c.FetchRaw(ctx, q)
	if err != nil {
		return nil, err
	}

	var resp reporting.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return &resp, nil
}

// FetchRaw retrieves one page and returns the undecoded JSON body.
// The returned slice is owned by the caller.
func (c *Client) FetchRaw(ctx context.Context, q query.Normalized) ([]byte, error) {
	endpoint, baseURL := c.endpointFor(q)
	if baseURL == "" {
		return nil, fmt.Errorf("no URL configured for the %s endpoint", endpoint)
	}

	req := newGetRequest(endpoint, baseURL, q.Values())

	key, cacheable := req.cacheKey()
	if cacheable && c.cache != nil {
		if body, ok := c.cache.Get(key); ok {
			metrics.RecordCacheLookup(true)
			logging.Ctx(ctx).Debug().Str("endpoint", endpoint).Msg("Serving report page from cache")
			return slices.Clone(body), nil
		}
		metrics.RecordCacheLookup(false)
	}

	body, err := c.makeRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	if cacheable && c.cache != nil {
		c.cache.Add(key, body)
	}
	return slices.Clone(body), nil
}

// BatchGet posts a Reporting v4 reports:batchGet request document.
// request is encoded as JSON as-is.
func (c *Client) BatchGet(ctx context.Context, request any) (*reporting.BatchResponse, error) {
	if c.batchURL == "" {
		return nil, fmt.Errorf("no URL configured for the %s endpoint", endpointBatch)
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", endpointBatch, err)
	}

	body, err := c.makeRequest(ctx, newPostRequest(endpointBatch, c.batchURL, payload))
	if err != nil {
		return nil, err
	}

	var resp reporting.BatchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpointBatch, err)
	}
	return &resp, nil
}

// endpointFor routes MCF queries (metrics in the mcf: namespace) to the
// MCF endpoint and everything else to the core endpoint.
func (c *Client) endpointFor(q query.Normalized) (name, baseURL string) {
	if m, ok := q.Get(query.FieldMetrics); ok && strings.HasPrefix(m, "mcf:") {
		return endpointMCF, c.mcfURL
	}
	return endpointCore, c.baseURL
}

// makeRequest sends req and returns the body of a 200 response.
func (c *Client) makeRequest(ctx context.Context, req *apiRequest) ([]byte, error) {
	start := time.Now()
	reqURL := req.buildURL()

	logging.Ctx(ctx).Debug().
		Str("endpoint", req.endpoint).
		Str("url", logging.SanitizeURL(reqURL)).
		Msg("Requesting report page")

	resp, err := c.doRequestWithRateLimit(ctx, req.method, reqURL, req.body)
	if err != nil {
		metrics.RecordFetch(req.endpoint, time.Since(start), err)
		return nil, fmt.Errorf("failed to make %s request: %w", req.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := newAPIError(resp.StatusCode, readBodyForError(resp.Body))
		metrics.RecordFetch(req.endpoint, time.Since(start), apiErr)
		return nil, apiErr
	}

	// One byte past the limit tells an oversized body from one that fits exactly.
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err == nil && int64(len(body)) > c.maxBodySize {
		err = fmt.Errorf("%s response exceeds %d bytes", req.endpoint, c.maxBodySize)
	}
	metrics.RecordFetch(req.endpoint, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", req.endpoint, err)
	}
	return body, nil
}

// doRequestWithRateLimit performs an HTTP request with client-side throttling
// and automatic HTTP 429 handling (exponential backoff: 1s, 2s, 4s, ...).
// The context is used for cancellation during limiter and backoff waits.
func (c *Client) doRequestWithRateLimit(ctx context.Context, method, reqURL string, body []byte) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter wait: %w", err)
			}
		}

		req, err := c.newHTTPRequest(ctx, method, reqURL, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			lastErr = fmt.Errorf("rate limit exceeded after %d retries (HTTP 429): %w", c.maxRetries, ErrRateLimited)
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))

		// Retry-After in seconds (RFC 6585)
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = seconds
			}
		}

		metrics.RateLimitWaits.Inc()
		logging.Ctx(ctx).Warn().
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Reporting API rate limited, backing off")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

func (c *Client) newHTTPRequest(ctx context.Context, method, reqURL string, body []byte) (*http.Request, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	return req, nil
}
