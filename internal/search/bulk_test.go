package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/propsearch-mcp/internal/store"
	"github.com/usestring/propsearch-mcp/pkg/export"
)

var exportNow = time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

// seededService returns a service over a store holding one search per seed.
func seededService(t *testing.T, searches []seed) (*Service, []string) {
	t.Helper()
	var current time.Time
	repo := store.NewMemoryStore(store.WithMemoryClock(func() time.Time { return current }))
	ctx := context.Background()

	ids := make([]string, 0, len(searches))
	for _, s := range searches {
		current = s.at
		results := make([]any, 0, s.results)
		for i := range s.results {
			results = append(results, map[string]any{"formattedAddress": s.address, "n": i})
		}
		id, err := repo.SaveSearch(ctx, "u1", s.address, results, nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	svc := New(&fakeAPI{}, repo, nil, Config{BulkWorkers: 2}, WithClock(func() time.Time { return exportNow }))
	return svc, ids
}

type seed struct {
	address string
	at      time.Time
	results int
}

func at(day, hour int) time.Time {
	return time.Date(2025, 3, day, hour, 0, 0, 0, time.UTC)
}

func TestBulk_DateRangeInclusive(t *testing.T) {
	svc, ids := seededService(t, []seed{
		{"1 Early St", at(1, 10), 1},
		{"2 First Day St", at(10, 0), 2},
		{"3 Middle St", at(12, 10), 0},
		{"4 Last Day St", at(14, 23), 1},
		{"5 Late St", at(15, 10), 3},
	})

	got, err := svc.Bulk(context.Background(), "u1", at(10, 15), at(14, 0))
	require.NoError(t, err)

	require.Len(t, got.Searches, 3)
	assert.Equal(t, ids[3], got.Searches[0].SearchID)
	assert.Equal(t, ids[1], got.Searches[2].SearchID)
	assert.Equal(t, 0, got.Searches[1].Properties)
	require.Len(t, got.Results, 3)

	first := got.Results[0].(map[string]any)
	assert.Equal(t, ids[3], first["search_id"])
	assert.Equal(t, "4 Last Day St", first["search_address"])
	assert.Equal(t, "2025-03-14T23:00:00Z", first["search_date"])

	assert.Equal(t, export.Metadata{
		{Key: "export_type", Value: "bulk_download"},
		{Key: "date_range", Value: "2025-03-10 to 2025-03-14"},
		{Key: "total_searches", Value: 3},
		{Key: "export_date", Value: "2025-03-20T12:00:00Z"},
	}, got.Metadata)
}

func TestBulk_DoesNotMutateStoredResults(t *testing.T) {
	svc, ids := seededService(t, []seed{{"1 Main St", at(10, 10), 1}})

	_, err := svc.Bulk(context.Background(), "u1", at(10, 0), at(10, 0))
	require.NoError(t, err)

	stored, err := svc.repo.GetSearch(context.Background(), ids[0], "u1")
	require.NoError(t, err)
	rec := stored.PropertyData.Results[0].(map[string]any)
	assert.NotContains(t, rec, "search_id")
}

func TestBulk_EmptyAndInvalidRanges(t *testing.T) {
	svc, _ := seededService(t, []seed{{"1 Main St", at(10, 10), 1}})
	ctx := context.Background()

	got, err := svc.Bulk(ctx, "u1", at(1, 0), at(2, 0))
	require.NoError(t, err)
	assert.Empty(t, got.Results)
	assert.NotNil(t, got.Results)
	total, _ := got.Metadata.Get("total_searches")
	assert.Equal(t, 0, total)

	_, err = svc.Bulk(ctx, "u1", at(5, 0), at(4, 0))
	assert.ErrorContains(t, err, "invalid date range")
}

func TestBulk_NonObjectResultsPassThrough(t *testing.T) {
	repo := store.NewMemoryStore()
	_, err := repo.SaveSearch(context.Background(), "u1", "1 Main St", []any{"oops", map[string]any{}}, nil)
	require.NoError(t, err)
	svc := New(&fakeAPI{}, repo, nil, Config{})

	now := time.Now()
	got, err := svc.Bulk(context.Background(), "u1", now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "oops", got.Results[0])
	assert.Equal(t, "1 Main St", got.Results[1].(map[string]any)["search_address"])
}

func TestAnalytics(t *testing.T) {
	svc, ids := seededService(t, []seed{
		{"1 A St", at(10, 9), 2},
		{"2 B St", at(10, 11), 0},
		{"3 C St", at(12, 10), 5},
		{"4 D St", at(14, 10), 2},
	})

	got, err := svc.Analytics(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 4, got.TotalSearches)
	assert.Equal(t, 3, got.SearchesWithResults)
	assert.Equal(t, 9, got.TotalProperties)
	assert.Equal(t, 3.0, got.AveragePerSearch)
	assert.Equal(t, []DayCount{
		{Date: "2025-03-10", Searches: 2},
		{Date: "2025-03-12", Searches: 1},
		{Date: "2025-03-14", Searches: 1},
	}, got.Activity)

	require.Len(t, got.TopSearches, 3)
	assert.Equal(t, ids[2], got.TopSearches[0].SearchID)
	// Ties keep newest-first order.
	assert.Equal(t, ids[3], got.TopSearches[1].SearchID)
	assert.Equal(t, ids[0], got.TopSearches[2].SearchID)
	assert.Equal(t, "2025-03-12 10:00", got.TopSearches[0].Date)
}

func TestAnalytics_AverageRoundsToOneDecimal(t *testing.T) {
	svc, _ := seededService(t, []seed{
		{"1 A St", at(10, 9), 1},
		{"2 B St", at(10, 10), 1},
		{"3 C St", at(10, 11), 2},
	})

	got, err := svc.Analytics(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1.3, got.AveragePerSearch)
}

func TestAnalytics_TopSearchesCapped(t *testing.T) {
	seeds := make([]seed, 0, 12)
	for i := range 12 {
		seeds = append(seeds, seed{"1 A St", at(1+i, 10), i + 1})
	}
	svc, _ := seededService(t, seeds)

	got, err := svc.Analytics(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, got.TopSearches, topSearchCount)
	assert.Equal(t, 12, got.TopSearches[0].PropertiesFound)
}

func TestAnalytics_NoSearches(t *testing.T) {
	svc := New(&fakeAPI{}, store.NewMemoryStore(), nil, Config{})
	got, err := svc.Analytics(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalSearches)
	assert.Equal(t, 0.0, got.AveragePerSearch)
	assert.Empty(t, got.Activity)
}
