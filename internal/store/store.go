// Package store persists property searches, named saved searches and
// per-user usage counters.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a search does not exist or belongs to another
// user.
var ErrNotFound = errors.New("not found")

// DefaultListLimit is used when ListOptions.Limit is zero.
const DefaultListLimit = 50

// PropertyData is the stored document for one search.
type PropertyData struct {
	Address         string         `json:"address"`
	Results         []any          `json:"results"`
	SearchParams    map[string]any `json:"search_params"`
	SearchTimestamp time.Time      `json:"search_timestamp"`
}

// PropertySearch is one executed search and its results.
type PropertySearch struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	PropertyData PropertyData `json:"property_data"`
	SearchDate   time.Time    `json:"search_date"`
}

// SavedSearch is a named set of search criteria a user can re-run.
type SavedSearch struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Name         string         `json:"search_name"`
	Criteria     map[string]any `json:"search_criteria"`
	AutoNotify   bool           `json:"auto_notify"`
	ResultsCount int            `json:"results_count"`
	LastRun      *time.Time     `json:"last_run,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Statistics summarizes a user's stored data.
type Statistics struct {
	TotalSearches int `json:"total_searches"`
	SavedSearches int `json:"saved_searches"`
}

// ListOptions pages and filters ListSearches.
type ListOptions struct {
	Limit  int
	Offset int
	// AddressFilter keeps searches whose address contains every token.
	AddressFilter string
}

func (o ListOptions) limit() int {
	if o.Limit <= 0 {
		return DefaultListLimit
	}
	return o.Limit
}

// Repository is the persistence contract shared by the memory and Postgres
// stores. User IDs are opaque strings in every table.
type Repository interface {
	SaveSearch(ctx context.Context, userID, address string, results []any, params map[string]any) (string, error)
	ListSearches(ctx context.Context, userID string, opts ListOptions) ([]PropertySearch, error)
	GetSearch(ctx context.Context, id, userID string) (*PropertySearch, error)
	DeleteSearch(ctx context.Context, id, userID string) error

	SaveNamedSearch(ctx context.Context, userID, name string, criteria map[string]any, autoNotify bool) (string, error)
	ListSavedSearches(ctx context.Context, userID string) ([]SavedSearch, error)
	UpdateSavedSearchResults(ctx context.Context, id string, resultsCount int) error

	Statistics(ctx context.Context, userID string) (Statistics, error)

	Usage(ctx context.Context, userID string) (int, error)
	IncrementUsage(ctx context.Context, userID string) (int, error)

	Close() error
}

// Map returns the search as a generic document, the shape exports and
// summaries consume.
func (s *PropertySearch) Map() map[string]any {
	params := s.PropertyData.SearchParams
	if params == nil {
		params = map[string]any{}
	}
	results := s.PropertyData.Results
	if results == nil {
		results = []any{}
	}
	return map[string]any{
		"id":      s.ID,
		"user_id": s.UserID,
		"property_data": map[string]any{
			"address":          s.PropertyData.Address,
			"results":          results,
			"search_params":    params,
			"search_timestamp": s.PropertyData.SearchTimestamp.Format(time.RFC3339),
		},
		"search_date": s.SearchDate.Format(time.RFC3339),
	}
}
