package search

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/usestring/propsearch-mcp/internal/store"
	"github.com/usestring/propsearch-mcp/pkg/export"
)

const dateLayout = "2006-01-02"

// BulkResult combines the results of every search in a date range.
type BulkResult struct {
	// Results holds copies of each stored result tagged with search_id,
	// search_date and search_address.
	Results  []any
	Searches []SearchSummary
	Metadata export.Metadata
}

// SearchSummary describes one search included in a bulk export.
type SearchSummary struct {
	SearchID   string `json:"search_id"`
	Address    string `json:"address"`
	Date       string `json:"date"`
	Properties int    `json:"properties"`
}

// Bulk combines the user's searches made between from and to, inclusive by
// calendar day (UTC). Only the most recent Config.BulkLimit searches are
// considered.
func (s *Service) Bulk(ctx context.Context, userID string, from, to time.Time) (*BulkResult, error) {
	from, to = day(from), day(to)
	if to.Before(from) {
		return nil, fmt.Errorf("invalid date range: %s is after %s", from.Format(dateLayout), to.Format(dateLayout))
	}

	recent, err := s.repo.ListSearches(ctx, userID, store.ListOptions{Limit: s.cfg.BulkLimit})
	if err != nil {
		return nil, fmt.Errorf("listing searches: %w", err)
	}
	var ids []string
	for _, r := range recent {
		d := day(r.SearchDate)
		if !d.Before(from) && !d.After(to) {
			ids = append(ids, r.ID)
		}
	}

	searches, err := s.loadSearches(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	out := &BulkResult{
		Results:  []any{},
		Searches: make([]SearchSummary, 0, len(searches)),
		Metadata: export.Metadata{
			{Key: "export_type", Value: "bulk_download"},
			{Key: "date_range", Value: fmt.Sprintf("%s to %s", from.Format(dateLayout), to.Format(dateLayout))},
			{Key: "total_searches", Value: len(searches)},
			{Key: "export_date", Value: s.now().Format(time.RFC3339)},
		},
	}
	for _, search := range searches {
		data := search.Map()
		pd, _ := data["property_data"].(map[string]any)
		address := SearchAddress(pd)
		searchDate := data["search_date"]
		results := PropertyResults(pd)

		for _, r := range results {
			out.Results = append(out.Results, tagResult(r, search.ID, searchDate, address))
		}
		out.Searches = append(out.Searches, SearchSummary{
			SearchID:   search.ID,
			Address:    address,
			Date:       search.SearchDate.Format("2006-01-02 15:04"),
			Properties: len(results),
		})
	}
	return out, nil
}

// loadSearches fetches full search documents concurrently, preserving the
// order of ids. Searches deleted in the meantime are dropped.
func (s *Service) loadSearches(ctx context.Context, userID string, ids []string) ([]*store.PropertySearch, error) {
	loaded := make([]*store.PropertySearch, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BulkWorkers)
	for i, id := range ids {
		g.Go(func() error {
			search, err := s.repo.GetSearch(gctx, id, userID)
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("loading search %s: %w", id, err)
			}
			loaded[i] = search
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*store.PropertySearch, 0, len(loaded))
	for _, search := range loaded {
		if search != nil {
			out = append(out, search)
		}
	}
	return out, nil
}

// tagResult returns a copy of a result record annotated with the search it
// came from. Non-object results are passed through unchanged.
func tagResult(r any, searchID string, searchDate any, address string) any {
	m, ok := r.(map[string]any)
	if !ok {
		return r
	}
	tagged := maps.Clone(m)
	tagged["search_id"] = searchID
	tagged["search_date"] = searchDate
	tagged["search_address"] = address
	return tagged
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
