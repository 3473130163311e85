package mcpsrv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/propsearch-mcp/internal/cache"
	"github.com/usestring/propsearch-mcp/internal/config"
	"github.com/usestring/propsearch-mcp/internal/logging"
	"github.com/usestring/propsearch-mcp/internal/mcp"
	"github.com/usestring/propsearch-mcp/internal/mcp/tools"
	"github.com/usestring/propsearch-mcp/internal/publish"
	"github.com/usestring/propsearch-mcp/internal/query"
	"github.com/usestring/propsearch-mcp/internal/schema"
	"github.com/usestring/propsearch-mcp/internal/search"
	"github.com/usestring/propsearch-mcp/internal/store"
	"github.com/usestring/propsearch-mcp/pkg/client"
	"github.com/usestring/propsearch-mcp/pkg/export"
)

// Server is the property search MCP server.
// It wraps the internal implementation and provides extension points.
type Server struct {
	internal   *mcp.Server
	deps       *Deps
	closeStore func() error
	logCleanup func() error
}

// NewServer creates a new MCP server with builtin property tools.
//
// The client parameter provides access to the RentCast API; when nil, one is
// built from RENTCAST_BASE_URL, RENTCAST_API_KEY and HTTP_CLIENT_TIMEOUT_MS.
// Use functional options to configure logging, storage, custom tools, etc.
func NewServer(c *client.Client, opts ...Option) (*Server, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// Build configuration from options
	cfg := &serverConfig{
		config: config.Load(), // Load defaults from environment
	}
	for _, opt := range opts {
		opt(cfg)
	}

	// Setup logging
	logCfg := logging.Config{
		Level:      cfg.config.LogLevel,
		Format:     cfg.config.LogFormat,
		FilePath:   cfg.config.LogFile,
		MaxSizeMB:  cfg.config.LogMaxSizeMB,
		MaxBackups: cfg.config.LogMaxBackups,
		MaxAgeDays: cfg.config.LogMaxAgeDays,
		Compress:   cfg.config.LogCompress,
	}
	if cfg.logLevel != "" {
		logCfg.Level = cfg.logLevel
	}
	if cfg.logFile != "" {
		logCfg.FilePath = cfg.logFile
	}
	logCleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	if c == nil {
		c = newClient(cfg)
	}
	if !c.HasAPIKey() {
		slog.Warn("RENTCAST_API_KEY is not set; property lookups will fail")
	}

	// Create infrastructure
	ctx := context.Background()
	repo, closeStore, err := openRepository(ctx, cfg)
	if err != nil {
		_ = logCleanup()
		return nil, err
	}

	var publisher *publish.Publisher
	if cfg.config.PublishEnabled() {
		publisher, err = publish.NewFromEnv(ctx, publish.Config{
			Bucket: cfg.config.ExportS3Bucket,
			Prefix: cfg.config.ExportS3Prefix,
			Region: cfg.config.AWSRegion,
		})
		if err != nil {
			_ = closeStore()
			_ = logCleanup()
			return nil, fmt.Errorf("failed to create publisher: %w", err)
		}
	}

	validator, err := schema.NewRecordValidator()
	if err != nil {
		_ = closeStore()
		_ = logCleanup()
		return nil, fmt.Errorf("failed to compile record schema: %w", err)
	}

	lookups := cache.NewLookupCache(cfg.config.LookupCacheMaxItems, cfg.config.LookupCacheTTL)

	// Create engines
	searchService := search.New(c, repo, lookups, search.Config{
		MaxQueries:     cfg.config.MaxQueries,
		BulkLimit:      cfg.config.BulkSearchLimit,
		AnalyticsLimit: cfg.config.AnalyticsSearchLimit,
		BulkWorkers:    cfg.config.BulkFetchWorkers,
	})
	exporter := export.New()
	queryEngine := query.NewEngine()

	// Create deps for internal tools and custom tools
	toolDeps := &tools.Deps{
		Search:    searchService,
		Store:     repo,
		Exporter:  exporter,
		Query:     queryEngine,
		Validator: validator,
		Publisher: publisher,
		Config:    cfg.config,
	}

	// Create public deps (same values, different type for public API)
	deps := &Deps{
		Client:    c,
		Store:     repo,
		Cache:     lookups,
		Config:    cfg.config,
		Search:    searchService,
		Exporter:  exporter,
		Query:     queryEngine,
		Validator: validator,
		Publisher: publisher,
	}

	// Build internal server options
	var internalOpts []mcp.ServerOption
	if !cfg.disableBuiltinTools {
		internalOpts = append(internalOpts, mcp.WithBuiltinTools())
	}
	if !cfg.disableBuiltinPrompts {
		internalOpts = append(internalOpts, mcp.WithBuiltinPrompts())
	}

	// Add custom extension registration callbacks
	for _, fn := range cfg.toolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.promptRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.resourceRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}

	// Add deferred tool registrations (tools that need Deps access)
	for _, fn := range cfg.deferredToolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(func(srv *sdkmcp.Server) {
			fn(srv, deps)
		}))
	}

	// Create internal server
	internal, err := mcp.NewServer(toolDeps, internalOpts...)
	if err != nil {
		_ = closeStore()
		_ = logCleanup()
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return &Server{
		internal:   internal,
		deps:       deps,
		closeStore: closeStore,
		logCleanup: logCleanup,
	}, nil
}

func newClient(cfg *serverConfig) *client.Client {
	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.config.HTTPClientTimeout}
	}
	return client.New(
		client.WithBaseURL(cfg.config.RentCastBaseURL),
		client.WithAPIKey(cfg.config.RentCastAPIKey),
		client.WithHTTPClient(httpClient),
	)
}

// openRepository returns the configured store and a func that releases it.
func openRepository(ctx context.Context, cfg *serverConfig) (store.Repository, func() error, error) {
	if cfg.repo != nil {
		return cfg.repo, func() error { return nil }, nil
	}
	if cfg.config.DatabaseURL == "" {
		slog.Info("using in-memory search store")
		repo := store.NewMemoryStore()
		return repo, repo.Close, nil
	}
	repo, err := store.OpenPostgres(ctx, cfg.config.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	slog.Info("using postgres search store")
	return repo, repo.Close, nil
}

// Run starts the MCP server with stdio transport.
// The server runs until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.internal.Run(ctx)
}

// Close releases the store and flushes logs.
func (s *Server) Close() error {
	var errs []error
	if s.closeStore != nil {
		errs = append(errs, s.closeStore())
	}
	if s.logCleanup != nil {
		errs = append(errs, s.logCleanup())
	}
	return errors.Join(errs...)
}

// Deps returns the dependencies for building custom tools.
func (s *Server) Deps() *Deps {
	return s.deps
}

// MCPServer returns the underlying MCP server, for in-process transports and
// tests.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.internal.MCPServer()
}
