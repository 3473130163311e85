package tools

import (
	"context"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/propsearch-mcp/internal/config"
	"github.com/usestring/propsearch-mcp/internal/query"
	"github.com/usestring/propsearch-mcp/internal/schema"
	"github.com/usestring/propsearch-mcp/internal/search"
	"github.com/usestring/propsearch-mcp/internal/store"
	"github.com/usestring/propsearch-mcp/pkg/client"
	"github.com/usestring/propsearch-mcp/pkg/export"
)

var testNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

type fakeAPI struct {
	calls   int
	records []any
	market  map[string]any
	err     error
}

func (f *fakeAPI) GetProperties(_ context.Context, q client.PropertyQuery) ([]any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeAPI) GetMarket(_ context.Context, q client.MarketQuery) (map[string]any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.market, nil
}

func sampleRecords() []any {
	return []any{
		map[string]any{
			"formattedAddress": "1 Main St, Austin, TX 78701",
			"city":             "Austin",
			"bedrooms":         3.0,
			"lastSalePrice":    450000.0,
		},
		map[string]any{
			"formattedAddress": "2 Oak Ave, Austin, TX 78701",
			"city":             "Austin",
			"bedrooms":         2.0,
			"lastSalePrice":    320000.0,
		},
	}
}

func newTestDeps(t *testing.T, api *fakeAPI) *Deps {
	t.Helper()
	clock := func() time.Time { return testNow }
	repo := store.NewMemoryStore(store.WithMemoryClock(clock))
	validator, err := schema.NewRecordValidator()
	require.NoError(t, err)

	return &Deps{
		Search:    search.New(api, repo, nil, search.Config{MaxQueries: 5}, search.WithClock(clock)),
		Store:     repo,
		Exporter:  export.New(export.WithClock(clock)),
		Query:     query.NewEngine(),
		Validator: validator,
		Config:    &config.Config{DefaultUserID: "tester"},
		Clock:     clock,
	}
}

// runSearch stores one search and returns its ID.
func runSearch(t *testing.T, d *Deps, address string) string {
	t.Helper()
	_, out, err := ToolPropertySearch(d)(context.Background(), nil, PropertySearchInput{Address: address})
	require.NoError(t, err)
	require.NotEmpty(t, out.SearchID)
	return out.SearchID
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var coded *CodedError
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, code, coded.Code)
}

func TestPropertySearch(t *testing.T) {
	api := &fakeAPI{records: sampleRecords()}
	d := newTestDeps(t, api)

	_, out, err := ToolPropertySearch(d)(context.Background(), nil, PropertySearchInput{Address: "1 Main St, Austin, TX"})
	require.NoError(t, err)

	assert.NotEmpty(t, out.SearchID)
	assert.Equal(t, 2, out.PropertiesFound)
	assert.False(t, out.FromCache)
	assert.Equal(t, "1 Main St, Austin, TX 78701", out.Preview["Address"])
	assert.Equal(t, search.Quota{Used: 1, Limit: 5}, out.Quota)
}

func TestPropertySearch_Errors(t *testing.T) {
	t.Run("empty address", func(t *testing.T) {
		d := newTestDeps(t, &fakeAPI{})
		_, _, err := ToolPropertySearch(d)(context.Background(), nil, PropertySearchInput{Address: "  "})
		requireCode(t, err, ErrCodeInvalidInput)
	})

	t.Run("quota exhausted", func(t *testing.T) {
		d := newTestDeps(t, &fakeAPI{records: sampleRecords()})
		for range 5 {
			_, err := d.Store.IncrementUsage(context.Background(), d.UserID())
			require.NoError(t, err)
		}
		_, _, err := ToolPropertySearch(d)(context.Background(), nil, PropertySearchInput{Address: "1 Main St"})
		requireCode(t, err, ErrCodeQuotaExceeded)
	})

	t.Run("api not found", func(t *testing.T) {
		d := newTestDeps(t, &fakeAPI{err: &client.APIError{StatusCode: 404, Message: "no property"}})
		_, _, err := ToolPropertySearch(d)(context.Background(), nil, PropertySearchInput{Address: "1 Main St"})
		requireCode(t, err, ErrCodeNotFound)
	})

	t.Run("api failure", func(t *testing.T) {
		d := newTestDeps(t, &fakeAPI{err: &client.APIError{StatusCode: 500, Message: "boom"}})
		_, _, err := ToolPropertySearch(d)(context.Background(), nil, PropertySearchInput{Address: "1 Main St"})
		requireCode(t, err, ErrCodeRentCastError)
	})
}

func TestMarketData(t *testing.T) {
	api := &fakeAPI{market: map[string]any{"zipCode": "78701", "saleData": map[string]any{"averagePrice": 500000.0}}}
	d := newTestDeps(t, api)

	_, out, err := ToolMarketData(d)(context.Background(), nil, MarketDataInput{ZipCode: "78701"})
	require.NoError(t, err)
	assert.Equal(t, "78701", out.Market["zipCode"])
	assert.Equal(t, 1, out.Quota.Used)

	_, _, err = ToolMarketData(d)(context.Background(), nil, MarketDataInput{})
	requireCode(t, err, ErrCodeInvalidInput)
}

func TestSearchesListGetDelete(t *testing.T) {
	d := newTestDeps(t, &fakeAPI{records: sampleRecords()})
	ctx := context.Background()
	austin := runSearch(t, d, "1 Main St, Austin, TX")
	runSearch(t, d, "9 Elm Rd, Dallas, TX")

	_, list, err := ToolSearchesList(d)(ctx, nil, SearchesListInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, store.DefaultListLimit, list.Limit)

	_, filtered, err := ToolSearchesList(d)(ctx, nil, SearchesListInput{Filter: "austin"})
	require.NoError(t, err)
	require.Len(t, filtered.Searches, 1)
	assert.Equal(t, austin, filtered.Searches[0].SearchID)
	assert.Equal(t, 2, filtered.Searches[0].PropertiesFound)
	assert.Equal(t, "2026-03-14T15:09:26Z", filtered.Searches[0].SearchDate)

	_, got, err := ToolSearchGet(d)(ctx, nil, SearchGetInput{SearchID: austin})
	require.NoError(t, err)
	assert.Equal(t, "1 Main St, Austin, TX", got.Address)
	assert.Len(t, got.PropertyData["results"], 2)

	_, del, err := ToolSearchDelete(d)(ctx, nil, SearchDeleteInput{SearchID: austin})
	require.NoError(t, err)
	assert.True(t, del.Deleted)

	_, _, err = ToolSearchGet(d)(ctx, nil, SearchGetInput{SearchID: austin})
	requireCode(t, err, ErrCodeNotFound)
	_, _, err = ToolSearchDelete(d)(ctx, nil, SearchDeleteInput{SearchID: austin})
	requireCode(t, err, ErrCodeNotFound)

	_, _, err = ToolSearchesList(d)(ctx, nil, SearchesListInput{Limit: -1})
	requireCode(t, err, ErrCodeInvalidInput)
}

func TestSearchStatistics(t *testing.T) {
	d := newTestDeps(t, &fakeAPI{records: sampleRecords()})
	ctx := context.Background()
	runSearch(t, d, "1 Main St")
	_, _, err := ToolSavedSearchCreate(d)(ctx, nil, SavedSearchCreateInput{Name: "downtown"})
	require.NoError(t, err)

	_, out, err := ToolSearchStatistics(d)(ctx, nil, SearchStatisticsInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.TotalSearches)
	assert.Equal(t, 1, out.SavedSearches)
	assert.Equal(t, search.Quota{Used: 1, Limit: 5}, out.Quota)
}

func TestSavedSearches(t *testing.T) {
	d := newTestDeps(t, &fakeAPI{})
	ctx := context.Background()

	_, _, err := ToolSavedSearchCreate(d)(ctx, nil, SavedSearchCreateInput{Name: " "})
	requireCode(t, err, ErrCodeInvalidInput)

	_, created, err := ToolSavedSearchCreate(d)(ctx, nil, SavedSearchCreateInput{
		Name:       "downtown",
		Criteria:   map[string]any{"address": "1 Main St"},
		AutoNotify: true,
	})
	require.NoError(t, err)

	_, updated, err := ToolSavedSearchUpdateResults(d)(ctx, nil, SavedSearchUpdateResultsInput{SavedSearchID: created.SavedSearchID, ResultsCount: 4})
	require.NoError(t, err)
	assert.True(t, updated.Updated)

	_, list, err := ToolSavedSearchesList(d)(ctx, nil, SavedSearchesListInput{})
	require.NoError(t, err)
	require.Len(t, list.SavedSearches, 1)
	ss := list.SavedSearches[0]
	assert.Equal(t, "downtown", ss.Name)
	assert.Equal(t, 4, ss.ResultsCount)
	assert.True(t, ss.AutoNotify)
	assert.Equal(t, "2026-03-14T15:09:26Z", ss.LastRun)

	_, _, err = ToolSavedSearchUpdateResults(d)(ctx, nil, SavedSearchUpdateResultsInput{SavedSearchID: "missing", ResultsCount: 1})
	requireCode(t, err, ErrCodeNotFound)
}

func TestRegister_OutputSchemas(t *testing.T) {
	srv := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "test", Version: "0.0.0"}, nil)
	assert.NotPanics(t, func() {
		Register(srv, newTestDeps(t, &fakeAPI{}))
	})
}
