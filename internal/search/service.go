// Package search runs property lookups against RentCast and derives bulk
// exports and analytics from a user's stored searches.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/usestring/propsearch-mcp/internal/cache"
	"github.com/usestring/propsearch-mcp/internal/store"
	"github.com/usestring/propsearch-mcp/pkg/client"
	"github.com/usestring/propsearch-mcp/pkg/property"
)

// Defaults applied when Config fields are zero.
const (
	DefaultMaxQueries     = 30
	DefaultBulkLimit      = 100
	DefaultAnalyticsLimit = 200
	DefaultBulkWorkers    = 8
)

var (
	// ErrQuotaExceeded is returned when a user has used all API queries.
	ErrQuotaExceeded = errors.New("API query limit reached")
	// ErrEmptyAddress is returned when a search has no address.
	ErrEmptyAddress = errors.New("address is required")
)

// PropertyAPI is the subset of the RentCast client the service needs.
type PropertyAPI interface {
	GetProperties(ctx context.Context, q client.PropertyQuery) ([]any, error)
	GetMarket(ctx context.Context, q client.MarketQuery) (map[string]any, error)
}

// Config bounds quota and bulk work.
type Config struct {
	MaxQueries     int
	BulkLimit      int
	AnalyticsLimit int
	BulkWorkers    int
}

func (c Config) withDefaults() Config {
	if c.MaxQueries <= 0 {
		c.MaxQueries = DefaultMaxQueries
	}
	if c.BulkLimit <= 0 {
		c.BulkLimit = DefaultBulkLimit
	}
	if c.AnalyticsLimit <= 0 {
		c.AnalyticsLimit = DefaultAnalyticsLimit
	}
	if c.BulkWorkers <= 0 {
		c.BulkWorkers = DefaultBulkWorkers
	}
	return c
}

// Result is the outcome of one property search.
type Result struct {
	SearchID  string
	Address   string
	Records   []any
	FromCache bool
	// SaveWarning is set when the lookup succeeded but could not be stored.
	SaveWarning string
}

// Quota reports a user's API usage.
type Quota struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

// Remaining returns the number of queries left, never negative.
func (q Quota) Remaining() int {
	if q.Used >= q.Limit {
		return 0
	}
	return q.Limit - q.Used
}

// Service coordinates the API client, lookup cache and repository.
type Service struct {
	api   PropertyAPI
	repo  store.Repository
	cache *cache.LookupCache
	cfg   Config
	now   func() time.Time

	lookups singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source used for bulk and analytics metadata.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a Service. lookups may be nil to disable caching.
func New(api PropertyAPI, repo store.Repository, lookups *cache.LookupCache, cfg Config, opts ...Option) *Service {
	s := &Service{
		api:   api,
		repo:  repo,
		cache: lookups,
		cfg:   cfg.withDefaults(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Quota returns the user's current API usage.
func (s *Service) Quota(ctx context.Context, userID string) (Quota, error) {
	used, err := s.repo.Usage(ctx, userID)
	if err != nil {
		return Quota{}, fmt.Errorf("reading usage: %w", err)
	}
	return Quota{Used: used, Limit: s.cfg.MaxQueries}, nil
}

func (s *Service) checkQuota(ctx context.Context, userID string) error {
	q, err := s.Quota(ctx, userID)
	if err != nil {
		return err
	}
	if q.Remaining() == 0 {
		return fmt.Errorf("%w: %d of %d queries used", ErrQuotaExceeded, q.Used, q.Limit)
	}
	return nil
}

// Search looks up properties at address and stores the search. Cached
// lookups do not count against the user's quota. A failed save does not
// fail the search; it is reported in Result.SaveWarning.
func (s *Service) Search(ctx context.Context, userID, address string) (*Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrEmptyAddress
	}

	res := &Result{Address: address}
	if lookup, ok := s.cachedLookup(address); ok {
		slog.Debug("property lookup cache hit", slog.String("address", address))
		res.Records = lookup.Records
		res.FromCache = true
	} else {
		if err := s.checkQuota(ctx, userID); err != nil {
			return nil, err
		}
		records, err := s.fetch(ctx, userID, address)
		if err != nil {
			return nil, err
		}
		res.Records = records
	}

	id, err := s.repo.SaveSearch(ctx, userID, address, res.Records, map[string]any{"address": address})
	if err != nil {
		slog.Warn("search completed but not saved",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		res.SaveWarning = fmt.Sprintf("search completed but not saved: %v", err)
		return res, nil
	}
	res.SearchID = id
	return res, nil
}

func (s *Service) cachedLookup(address string) (*cache.Lookup, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(address)
}

// fetch calls the API once per normalized address at a time; concurrent
// callers for the same address share the response. Usage is charged to the
// caller whose request reached the API. The shared lookup is detached from
// the leader's cancellation so one caller giving up does not fail the
// others; each caller still stops waiting when its own ctx is done.
func (s *Service) fetch(ctx context.Context, userID, address string) ([]any, error) {
	key := property.NormalizeAddress(address)
	lookupCtx := context.WithoutCancel(ctx)
	ch := s.lookups.DoChan(key, func() (any, error) {
		start := time.Now()
		records, err := s.api.GetProperties(lookupCtx, client.PropertyQuery{Address: address})
		if err != nil {
			return nil, err
		}
		slog.Info("property lookup",
			slog.String("address", address),
			slog.Int("records", len(records)),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		if _, err := s.repo.IncrementUsage(lookupCtx, userID); err != nil {
			slog.Warn("failed to record API usage",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
		if s.cache != nil {
			s.cache.Put(&cache.Lookup{Address: address, Records: records, FetchedAt: time.Now()})
		}
		return records, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			slog.Debug("property lookup shared", slog.String("address", address))
		}
		return res.Val.([]any), nil
	}
}

// Market returns market statistics for a ZIP code.
func (s *Service) Market(ctx context.Context, userID, zipCode string) (map[string]any, error) {
	zipCode = strings.TrimSpace(zipCode)
	if zipCode == "" {
		return nil, fmt.Errorf("zip code is required")
	}
	if err := s.checkQuota(ctx, userID); err != nil {
		return nil, err
	}
	market, err := s.api.GetMarket(ctx, client.MarketQuery{ZipCode: zipCode})
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.IncrementUsage(ctx, userID); err != nil {
		slog.Warn("failed to record API usage",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
	return market, nil
}
