// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package ingest

import (
	"context"
	"fmt"
)

// Page is one slice of a paginated Tautulli history result set.
type Page struct {
	Items     []HistoryRecord
	TotalSize int // records matching the query across all pages
	Start     int // offset of the first item in this page
}

// FetchFunc retrieves one page of at most pageSize items starting at the
// given offset.
type FetchFunc func(ctx context.Context, start, pageSize int) (Page, error)

// Paginator walks a paginated result set page by page. Iteration is lazy
// (each page is fetched on demand) and every Each call starts over from
// offset zero, so a paginator can be reused across sync runs.
type Paginator struct {
	fetch    FetchFunc
	pageSize int
}

// NewPaginator creates a paginator. pageSize must be positive; the error
// is returned before any fetch happens.
func NewPaginator(fetch FetchFunc, pageSize int) (*Paginator, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	return &Paginator{fetch: fetch, pageSize: pageSize}, nil
}

// Each invokes fn for every page in order. Iteration stops when the
// cumulative item count reaches the reported total, when a page comes
// back shorter than the page size, or when fn returns an error.
func (p *Paginator) Each(ctx context.Context, fn func(Page) error) error {
	start := 0
	fetched := 0

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		page, err := p.fetch(ctx, start, p.pageSize)
		if err != nil {
			return fmt.Errorf("failed to fetch page at offset %d: %w", start, err)
		}
		if len(page.Items) == 0 {
			return nil
		}

		if err := fn(page); err != nil {
			return err
		}

		fetched += len(page.Items)
		if page.TotalSize > 0 && fetched >= page.TotalSize {
			return nil
		}
		if len(page.Items) < p.pageSize {
			return nil
		}
		start += p.pageSize
	}
}

// CalculateExpectedPages returns how many pages a result set of the given
// size spans. Zero for empty result sets and invalid page sizes.
func CalculateExpectedPages(totalRecords, pageSize int) int {
	if totalRecords <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalRecords + pageSize - 1) / pageSize
}
