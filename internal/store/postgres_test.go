package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	s := NewPostgresStore(mock)
	s.now = func() time.Time { return testNow }
	return s, mock
}

func propertyDataJSON(t *testing.T, address string) []byte {
	t.Helper()
	data, err := json.Marshal(PropertyData{
		Address:         address,
		Results:         []any{map[string]any{"formattedAddress": address}},
		SearchParams:    map[string]any{"address": address},
		SearchTimestamp: testNow,
	})
	require.NoError(t, err)
	return data
}

func TestPostgresStore_SaveSearch(t *testing.T) {
	t.Run("Should insert search document", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec("INSERT INTO property_searches").
			WithArgs(pgxmock.AnyArg(), "u1", pgxmock.AnyArg(), testNow).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		id, err := s.SaveSearch(context.Background(), "u1", "1 Main St", nil, nil)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should wrap insert errors", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec("INSERT INTO property_searches").
			WillReturnError(errors.New("connection reset"))

		_, err := s.SaveSearch(context.Background(), "u1", "1 Main St", nil, nil)
		assert.ErrorContains(t, err, "insert search")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_ListSearches(t *testing.T) {
	t.Run("Should filter by address tokens", func(t *testing.T) {
		s, mock := newMockStore(t)
		rows := mock.NewRows(searchColumns).
			AddRow("s2", "u1", propertyDataJSON(t, "1 Main St, Austin"), testNow)
		mock.ExpectQuery(`SELECT (.+) FROM property_searches WHERE user_id = \$1 AND (.+) ILIKE \$2 AND (.+) ILIKE \$3 ORDER BY search_date DESC LIMIT 10 OFFSET 5`).
			WithArgs("u1", "%main%", "%austin%").
			WillReturnRows(rows)

		got, err := s.ListSearches(context.Background(), "u1", ListOptions{Limit: 10, Offset: 5, AddressFilter: "Main, Austin"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "s2", got[0].ID)
		assert.Equal(t, "1 Main St, Austin", got[0].PropertyData.Address)
		assert.Equal(t, testNow, got[0].PropertyData.SearchTimestamp)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should default the limit", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT (.+) FROM property_searches WHERE user_id = \$1 ORDER BY search_date DESC LIMIT 50`).
			WithArgs("u1").
			WillReturnRows(mock.NewRows(searchColumns))

		got, err := s.ListSearches(context.Background(), "u1", ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NotNil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_GetSearch(t *testing.T) {
	t.Run("Should return the search", func(t *testing.T) {
		s, mock := newMockStore(t)
		rows := mock.NewRows(searchColumns).
			AddRow("s1", "u1", propertyDataJSON(t, "1 Main St"), testNow)
		mock.ExpectQuery(`SELECT (.+) FROM property_searches WHERE id = \$1 AND user_id = \$2`).
			WithArgs("s1", "u1").
			WillReturnRows(rows)

		got, err := s.GetSearch(context.Background(), "s1", "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1", got.UserID)
		assert.Len(t, got.PropertyData.Results, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should map missing rows to ErrNotFound", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT (.+) FROM property_searches WHERE id = \$1 AND user_id = \$2`).
			WithArgs("s1", "u2").
			WillReturnError(pgx.ErrNoRows)

		_, err := s.GetSearch(context.Background(), "s1", "u2")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_DeleteSearch(t *testing.T) {
	t.Run("Should delete owned search", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`DELETE FROM property_searches WHERE id = \$1 AND user_id = \$2`).
			WithArgs("s1", "u1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, s.DeleteSearch(context.Background(), "s1", "u1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should report ErrNotFound when nothing was deleted", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`DELETE FROM property_searches`).
			WithArgs("s1", "u2").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, s.DeleteSearch(context.Background(), "s1", "u2"), ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_SavedSearches(t *testing.T) {
	t.Run("Should insert named search", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec("INSERT INTO saved_searches").
			WithArgs(pgxmock.AnyArg(), "u1", "Austin", []byte(`{"city":"Austin"}`), true, testNow).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		id, err := s.SaveNamedSearch(context.Background(), "u1", "Austin", map[string]any{"city": "Austin"}, true)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should list saved searches", func(t *testing.T) {
		s, mock := newMockStore(t)
		var never *time.Time
		rows := mock.NewRows(savedSearchColumns).
			AddRow("n1", "u1", "Austin", []byte(`{"city":"Austin"}`), true, 4, never, testNow)
		mock.ExpectQuery(`SELECT (.+) FROM saved_searches WHERE user_id = \$1 ORDER BY created_at DESC`).
			WithArgs("u1").
			WillReturnRows(rows)

		got, err := s.ListSavedSearches(context.Background(), "u1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Austin", got[0].Name)
		assert.Equal(t, map[string]any{"city": "Austin"}, got[0].Criteria)
		assert.Equal(t, 4, got[0].ResultsCount)
		assert.Nil(t, got[0].LastRun)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should update results count and last run", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE saved_searches SET results_count = \$1, last_run = \$2 WHERE id = \$3`).
			WithArgs(9, testNow, "n1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, s.UpdateSavedSearchResults(context.Background(), "n1", 9))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should report ErrNotFound for unknown saved search", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE saved_searches`).
			WithArgs(9, testNow, "missing").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, s.UpdateSavedSearchResults(context.Background(), "missing", 9), ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_Statistics(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM property_searches WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM saved_searches WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(3))

	st, err := s.Statistics(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, Statistics{TotalSearches: 12, SavedSearches: 3}, st)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Usage(t *testing.T) {
	t.Run("Should treat missing usage row as zero", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT query_count FROM user_usage WHERE user_id = \$1`).
			WithArgs("u1").
			WillReturnError(pgx.ErrNoRows)

		n, err := s.Usage(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should upsert and return the new count", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`INSERT INTO user_usage (.+) ON CONFLICT \(user_id\) DO UPDATE`).
			WithArgs("u1", 1, testNow).
			WillReturnRows(mock.NewRows([]string{"query_count"}).AddRow(4))

		n, err := s.IncrementUsage(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	body, err := fs.ReadFile(migrationsFS, entries[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS property_searches")
}
