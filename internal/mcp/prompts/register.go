package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "property_report",
		Description: "RECOMMENDED: Research a property and produce a report file. Start here - walks through search, review, validation and export with the right tools in order.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "address",
				Description: "Property address to research (e.g., '123 Main St, Austin, TX 78701')",
				Required:    false,
			},
			{
				Name:        "format",
				Description: "Report format: pdf, xlsx, csv or json (default: pdf)",
				Required:    false,
			},
		},
	}, HandlePropertyReport(cfg))

	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "search_history_review",
		Description: "Review past searches over a date range: activity analytics, then a combined bulk export.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "from",
				Description: "First day, YYYY-MM-DD (default: 30 days ago)",
				Required:    false,
			},
			{
				Name:        "to",
				Description: "Last day, YYYY-MM-DD (default: today)",
				Required:    false,
			},
		},
	}, HandleSearchHistoryReview(cfg))
}
