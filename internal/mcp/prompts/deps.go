// Package prompts contains MCP prompt implementations for property research
// workflows.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	MaxQueries     int
	PublishEnabled bool
	BulkLimit      int
}
