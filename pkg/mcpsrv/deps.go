package mcpsrv

import (
	"github.com/usestring/propsearch-mcp/internal/cache"
	"github.com/usestring/propsearch-mcp/internal/config"
	"github.com/usestring/propsearch-mcp/internal/publish"
	"github.com/usestring/propsearch-mcp/internal/query"
	"github.com/usestring/propsearch-mcp/internal/schema"
	"github.com/usestring/propsearch-mcp/internal/search"
	"github.com/usestring/propsearch-mcp/internal/store"
	"github.com/usestring/propsearch-mcp/pkg/client"
	"github.com/usestring/propsearch-mcp/pkg/export"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same infrastructure as builtin tools.
type Deps struct {
	Client    *client.Client
	Store     store.Repository
	Cache     *cache.LookupCache
	Config    *config.Config
	Search    *search.Service
	Exporter  *export.Exporter
	Query     *query.Engine
	Validator *schema.Validator
	Publisher *publish.Publisher // nil unless EXPORT_S3_BUCKET is set
}

// UserID returns the identity tools act on behalf of.
func (d *Deps) UserID() string {
	return d.Config.DefaultUserID
}
