// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package report

import (
	"context"
	"errors"
	"net/url"

	"github.com/tomtom215/gaquery/internal/logging"
	"github.com/tomtom215/gaquery/internal/metrics"
	"github.com/tomtom215/gaquery/internal/models/reporting"
	"github.com/tomtom215/gaquery/internal/query"
)

// FetchFunc retrieves one page of results for a normalized query.
type FetchFunc func(ctx context.Context, q query.Normalized) (*reporting.Response, error)

// ReportFetchFunc retrieves the page of a Reporting v4 report that starts
// at pageToken.
type ReportFetchFunc func(ctx context.Context, pageToken string) (*reporting.Report, error)

// Collector fetches every page of a report and accumulates the rows.
type Collector struct {
	// Fetch retrieves a single page. Required by Collect.
	Fetch FetchFunc

	// MaxPages caps the number of pages fetched. Zero means no limit, in
	// which case termination depends on the API omitting the
	// continuation marker.
	MaxPages int

	// Reshaper converts each page.
	Reshaper Reshaper
}

// errNoFetch is returned when Collect is called without a FetchFunc.
var errNoFetch = errors.New("report: collector has no fetch function")

// pageFunc fetches and reshapes the next page. It returns the continuation
// marker of the following page, or "" when the page is the last one.
type pageFunc func(ctx context.Context) (*Table, Metadata, string, error)

// Collect fetches q and every following page, returning the combined table.
//
// When the page budget is exhausted the rows collected so far are returned
// with Metadata.Complete set to false and a nil error. When the context is
// cancelled or a fetch fails, the rows collected so far are returned along
// with the error, which is passed through unwrapped. The table is nil only
// if no page was reshaped.
func (c *Collector) Collect(ctx context.Context, q query.Normalized) (*Table, Metadata, error) {
	if c.Fetch == nil {
		return nil, Metadata{}, errNoFetch
	}

	current := q
	return c.collect(ctx, func(ctx context.Context) (*Table, Metadata, string, error) {
		resp, err := c.Fetch(ctx, current)
		if err != nil {
			return nil, Metadata{}, "", err
		}
		page, meta, err := c.Reshaper.reshapePage(resp)
		if err != nil {
			return nil, Metadata{}, "", err
		}
		next, more, err := nextPage(current, resp)
		if err != nil {
			return nil, Metadata{}, "", err
		}
		if !more {
			return page, meta, "", nil
		}
		current = next

		marker := next.PageToken()
		if v, ok := next.Get(query.FieldStartIndex); ok && marker == "" {
			marker = "start-index=" + v
		}
		return page, meta, marker, nil
	})
}

// CollectReport follows the nextPageToken of a Reporting v4 report. first
// is the page already returned by the batch call; fetch is only invoked for
// the pages after it. Budget and partial-result behavior match Collect.
func (c *Collector) CollectReport(ctx context.Context, first *reporting.Report, fetch ReportFetchFunc) (*Table, Metadata, error) {
	pending := first
	token := ""
	return c.collect(ctx, func(ctx context.Context) (*Table, Metadata, string, error) {
		rep := pending
		pending = nil
		if rep == nil {
			if fetch == nil {
				return nil, Metadata{}, "", errNoFetch
			}
			var err error
			if rep, err = fetch(ctx, token); err != nil {
				return nil, Metadata{}, "", err
			}
		}
		page, meta, err := c.Reshaper.reshapeReport(rep)
		if err != nil {
			return nil, Metadata{}, "", err
		}
		token = rep.NextPageToken
		return page, meta, token, nil
	})
}

// collect runs the page loop shared by both report families.
func (c *Collector) collect(ctx context.Context, next pageFunc) (*Table, Metadata, error) {
	log := logging.Ctx(ctx)

	var (
		table *Table
		meta  Metadata
		seen  = map[string]bool{}
	)

	for {
		if err := ctx.Err(); err != nil {
			return c.partial(table, meta, err)
		}

		page, pageMeta, marker, err := next(ctx)
		if err != nil {
			return c.partial(table, meta, err)
		}
		metrics.RecordPage(page.Len())

		if table == nil {
			table = page
			meta = pageMeta
		} else {
			if err := table.appendPage(page); err != nil {
				return c.partial(table, meta, malformed(headerNames(page.Columns), err, "page %d", meta.Pages+1))
			}
			meta.Pages++
		}

		log.Debug().
			Int("page", meta.Pages).
			Int("rows", page.Len()).
			Int("total_rows", table.Len()).
			Msg("Reshaped report page")

		if marker == "" {
			meta.Complete = true
			break
		}
		if seen[marker] {
			return c.partial(table, meta, malformed(marker, nil, "continuation marker %q repeated", marker))
		}
		seen[marker] = true

		if c.MaxPages > 0 && meta.Pages >= c.MaxPages {
			meta.Complete = false
			log.Warn().
				Int("max_pages", c.MaxPages).
				Int("rows", table.Len()).
				Msg("Page budget exhausted; returning partial result")
			break
		}
	}

	c.finish(table)
	return table, meta, nil
}

// partial finishes whatever was collected and returns it with err.
func (c *Collector) partial(t *Table, meta Metadata, err error) (*Table, Metadata, error) {
	meta.Complete = false
	c.finish(t)
	return t, meta, err
}

func (c *Collector) finish(t *Table) {
	if t != nil {
		c.Reshaper.finish(t)
	}
}

// nextPage derives the follow-up query from a response's continuation
// marker. Only the pagination field of q changes.
func nextPage(q query.Normalized, resp *reporting.Response) (query.Normalized, bool, error) {
	if resp.NextPageToken != "" {
		return q.WithPageToken(resp.NextPageToken), true, nil
	}
	if resp.NextLink == "" {
		return q, false, nil
	}
	u, err := url.Parse(resp.NextLink)
	if err != nil {
		return q, false, malformed(resp.NextLink, err, "unparseable nextLink")
	}
	idx := u.Query().Get("start-index")
	if idx == "" {
		return q, false, malformed(resp.NextLink, nil, "nextLink has no start-index")
	}
	return q.With(query.FieldStartIndex, idx), true, nil
}
