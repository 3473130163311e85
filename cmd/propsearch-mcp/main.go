package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/usestring/propsearch-mcp/pkg/mcpsrv"
)

func main() {
	// Set up context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create MCP server with all builtin tools
	// Configuration is loaded from environment variables (and .env):
	// - RENTCAST_API_KEY: RentCast API key (required for lookups)
	// - DATABASE_URL: Postgres DSN (default: in-memory store)
	// - EXPORT_S3_BUCKET: enables publishing exports to S3
	// - LOG_LEVEL, LOG_FORMAT, LOG_FILE: logging
	// - etc. (see internal/config for all options)
	server, err := mcpsrv.NewServer(nil)
	if err != nil {
		slog.Error("failed to create MCP server", "error", err)
		os.Exit(1)
	}
	defer server.Close()

	// Run the server with stdio transport
	slog.Info("starting propsearch MCP server on stdio")
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
