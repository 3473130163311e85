package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgx used by PostgresStore. Both *pgxpool.Pool and
// pgxmock pools satisfy it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var searchColumns = []string{"id", "user_id", "property_data", "search_date"}

var savedSearchColumns = []string{
	"id",
	"user_id",
	"search_name",
	"search_criteria",
	"auto_notify",
	"results_count",
	"last_run",
	"created_at",
}

func selectSearchBuilder() squirrel.SelectBuilder {
	return squirrel.
		Select(searchColumns...).
		From("property_searches").
		PlaceholderFormat(squirrel.Dollar)
}

// PostgresStore is a Repository backed by Postgres.
type PostgresStore struct {
	db    DB
	close func()
	now   func() time.Time
}

// NewPostgresStore wraps an existing connection. Close does not close db.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db, close: func() {}, now: time.Now}
}

// OpenPostgres migrates the database at dsn and returns a pooled store.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if err := ApplyMigrations(ctx, dsn); err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := NewPostgresStore(pool)
	s.close = pool.Close
	return s, nil
}

// SaveSearch stores a search and its results, returning the new search ID.
func (s *PostgresStore) SaveSearch(ctx context.Context, userID, address string, results []any, params map[string]any) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("saving search: user id is required")
	}
	now := s.now().UTC()
	if results == nil {
		results = []any{}
	}
	data, err := json.Marshal(PropertyData{
		Address:         address,
		Results:         results,
		SearchParams:    params,
		SearchTimestamp: now,
	})
	if err != nil {
		return "", fmt.Errorf("encode property data: %w", err)
	}

	id := uuid.NewString()
	sql, args, err := squirrel.
		Insert("property_searches").
		Columns(searchColumns...).
		Values(id, userID, data, now).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build search insert: %w", err)
	}
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return "", fmt.Errorf("insert search: %w", err)
	}
	return id, nil
}

// ListSearches returns the user's searches, newest first.
func (s *PostgresStore) ListSearches(ctx context.Context, userID string, opts ListOptions) ([]PropertySearch, error) {
	builder := selectSearchBuilder().
		Where(squirrel.Eq{"user_id": userID})
	for _, tok := range tokenizeAddress(opts.AddressFilter) {
		builder = builder.Where(squirrel.ILike{"property_data->>'address'": "%" + tok + "%"})
	}
	builder = builder.OrderBy("search_date DESC").Limit(uint64(opts.limit()))
	if opts.Offset > 0 {
		builder = builder.Offset(uint64(opts.Offset))
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search select: %w", err)
	}
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query searches: %w", err)
	}
	defer rows.Close()

	out := []PropertySearch{}
	for rows.Next() {
		search, err := scanSearch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *search)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate searches: %w", err)
	}
	return out, nil
}

// GetSearch returns one of the user's searches.
func (s *PostgresStore) GetSearch(ctx context.Context, id, userID string) (*PropertySearch, error) {
	sql, args, err := selectSearchBuilder().
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search select: %w", err)
	}
	search, err := scanSearch(s.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("search %q: %w", id, ErrNotFound)
	}
	return search, err
}

// DeleteSearch removes one of the user's searches.
func (s *PostgresStore) DeleteSearch(ctx context.Context, id, userID string) error {
	sql, args, err := squirrel.
		Delete("property_searches").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build search delete: %w", err)
	}
	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete search: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("search %q: %w", id, ErrNotFound)
	}
	return nil
}

// SaveNamedSearch stores reusable search criteria.
func (s *PostgresStore) SaveNamedSearch(ctx context.Context, userID, name string, criteria map[string]any, autoNotify bool) (string, error) {
	if userID == "" || name == "" {
		return "", fmt.Errorf("saving named search: user id and name are required")
	}
	if criteria == nil {
		criteria = map[string]any{}
	}
	data, err := json.Marshal(criteria)
	if err != nil {
		return "", fmt.Errorf("encode search criteria: %w", err)
	}

	id := uuid.NewString()
	sql, args, err := squirrel.
		Insert("saved_searches").
		Columns("id", "user_id", "search_name", "search_criteria", "auto_notify", "created_at").
		Values(id, userID, name, data, autoNotify, s.now().UTC()).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build saved search insert: %w", err)
	}
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return "", fmt.Errorf("insert saved search: %w", err)
	}
	return id, nil
}

// ListSavedSearches returns the user's saved searches, newest first.
func (s *PostgresStore) ListSavedSearches(ctx context.Context, userID string) ([]SavedSearch, error) {
	sql, args, err := squirrel.
		Select(savedSearchColumns...).
		From("saved_searches").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build saved search select: %w", err)
	}
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query saved searches: %w", err)
	}
	defer rows.Close()

	out := []SavedSearch{}
	for rows.Next() {
		var (
			ss       SavedSearch
			criteria []byte
		)
		if err := rows.Scan(&ss.ID, &ss.UserID, &ss.Name, &criteria, &ss.AutoNotify, &ss.ResultsCount, &ss.LastRun, &ss.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan saved search: %w", err)
		}
		if len(criteria) > 0 {
			if err := json.Unmarshal(criteria, &ss.Criteria); err != nil {
				return nil, fmt.Errorf("decode search criteria: %w", err)
			}
		}
		out = append(out, ss)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved searches: %w", err)
	}
	return out, nil
}

// UpdateSavedSearchResults records the result count of a re-run.
func (s *PostgresStore) UpdateSavedSearchResults(ctx context.Context, id string, resultsCount int) error {
	sql, args, err := squirrel.
		Update("saved_searches").
		Set("results_count", resultsCount).
		Set("last_run", s.now().UTC()).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build saved search update: %w", err)
	}
	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update saved search: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("saved search %q: %w", id, ErrNotFound)
	}
	return nil
}

// Statistics counts the user's searches and saved searches.
func (s *PostgresStore) Statistics(ctx context.Context, userID string) (Statistics, error) {
	var st Statistics
	var err error
	if st.TotalSearches, err = s.count(ctx, "property_searches", userID); err != nil {
		return Statistics{}, err
	}
	if st.SavedSearches, err = s.count(ctx, "saved_searches", userID); err != nil {
		return Statistics{}, err
	}
	return st, nil
}

func (s *PostgresStore) count(ctx context.Context, table, userID string) (int, error) {
	sql, args, err := squirrel.
		Select("COUNT(*)").
		From(table).
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s count: %w", table, err)
	}
	var n int
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Usage returns the number of API queries the user has made.
func (s *PostgresStore) Usage(ctx context.Context, userID string) (int, error) {
	sql, args, err := squirrel.
		Select("query_count").
		From("user_usage").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build usage select: %w", err)
	}
	var n int
	err = s.db.QueryRow(ctx, sql, args...).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query usage: %w", err)
	}
	return n, nil
}

// IncrementUsage records one API query and returns the new count.
func (s *PostgresStore) IncrementUsage(ctx context.Context, userID string) (int, error) {
	sql, args, err := squirrel.
		Insert("user_usage").
		Columns("user_id", "query_count", "updated_at").
		Values(userID, 1, s.now().UTC()).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
    query_count = user_usage.query_count + 1,
    updated_at = EXCLUDED.updated_at
RETURNING query_count`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build usage upsert: %w", err)
	}
	var n int
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("increment usage: %w", err)
	}
	return n, nil
}

// Close releases the pool opened by OpenPostgres.
func (s *PostgresStore) Close() error {
	s.close()
	return nil
}

func scanSearch(row pgx.Row) (*PropertySearch, error) {
	var (
		search PropertySearch
		data   []byte
	)
	if err := row.Scan(&search.ID, &search.UserID, &data, &search.SearchDate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan search: %w", err)
	}
	if err := json.Unmarshal(data, &search.PropertyData); err != nil {
		return nil, fmt.Errorf("decode property data: %w", err)
	}
	return &search, nil
}

var _ Repository = (*PostgresStore)(nil)
