package tools

import (
	"context"
	"errors"
	"time"

	"github.com/usestring/propsearch-mcp/internal/config"
	"github.com/usestring/propsearch-mcp/internal/publish"
	"github.com/usestring/propsearch-mcp/internal/query"
	"github.com/usestring/propsearch-mcp/internal/schema"
	"github.com/usestring/propsearch-mcp/internal/search"
	"github.com/usestring/propsearch-mcp/internal/store"
	"github.com/usestring/propsearch-mcp/pkg/export"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Search    *search.Service
	Store     store.Repository
	Exporter  *export.Exporter
	Query     *query.Engine
	Validator *schema.Validator
	Publisher *publish.Publisher // nil when publishing is disabled
	Config    *config.Config
	// Clock supplies the current time for default date ranges. Nil means
	// time.Now.
	Clock func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}

// UserID returns the identity tool calls act on behalf of.
func (d *Deps) UserID() string {
	if d.Config != nil && d.Config.DefaultUserID != "" {
		return d.Config.DefaultUserID
	}
	return "local"
}

// LoadSearch fetches one of the current user's stored searches.
func (d *Deps) LoadSearch(ctx context.Context, searchID string) (*store.PropertySearch, error) {
	if searchID == "" {
		return nil, ErrInvalidInput("search_id is required")
	}
	s, err := d.Store.GetSearch(ctx, searchID, d.UserID())
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound("search", searchID)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
