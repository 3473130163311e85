// Package mcpsrv provides an extensible MCP server for RentCast property
// search and export.
//
// This package exposes a high-level API for creating and running an MCP server
// with all builtin property tools, prompts, and resources. Users can extend the
// server with custom tools, prompts, and resources using functional options.
//
// # Basic Usage
//
// Create a server configured from the environment (RENTCAST_API_KEY,
// DATABASE_URL, EXPORT_S3_BUCKET, ...):
//
//	server, err := mcpsrv.NewServer(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// # Extension
//
// Add custom tools using MCP SDK types directly:
//
//	import mcp "github.com/modelcontextprotocol/go-sdk/mcp"
//
//	type MyInput struct {
//	    SearchID string `json:"search_id"`
//	}
//
//	type MyOutput struct {
//	    Count int `json:"count"`
//	}
//
//	server, err := mcpsrv.NewServer(
//	    nil,
//	    mcpsrv.WithDepsTool(&mcp.Tool{Name: "my_tool", Description: "My tool"},
//	        func(d *mcpsrv.Deps) func(context.Context, *mcp.CallToolRequest, MyInput) (*mcp.CallToolResult, MyOutput, error) {
//	            ...
//	        }),
//	)
//
// # Configuration
//
// Configure logging and storage with options:
//
//	server, err := mcpsrv.NewServer(
//	    nil,
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/propsearch-mcp.log"),
//	    mcpsrv.WithDatabaseURL("postgres://localhost/propsearch"),
//	)
package mcpsrv
