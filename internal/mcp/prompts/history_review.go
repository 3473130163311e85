package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleSearchHistoryReview implements the search history workflow.
func HandleSearchHistoryReview(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		args := req.Params.Arguments

		var rangeArgs []string
		if args != nil {
			if v := strings.TrimSpace(args["from"]); v != "" {
				rangeArgs = append(rangeArgs, fmt.Sprintf("from: %q", v))
			}
			if v := strings.TrimSpace(args["to"]); v != "" {
				rangeArgs = append(rangeArgs, fmt.Sprintf("to: %q", v))
			}
		}

		var sb strings.Builder
		sb.WriteString("# Search History Review\n\n")
		sb.WriteString("Summarize what the user has searched and deliver every result from the period in one file.\n\n")

		sb.WriteString("## Workflow Steps\n\n")
		sb.WriteString("1. `search_statistics` - totals and remaining quota\n")
		sb.WriteString("2. `export_analytics` - searches per day and the most productive addresses\n")
		sb.WriteString("3. `export_bulk` - one csv or xlsx with every result, each row tagged with its search_id, search_date and search_address\n")
		if cfg.BulkLimit > 0 {
			sb.WriteString(fmt.Sprintf("   - Only the %d most recent searches are considered\n", cfg.BulkLimit))
		}
		if cfg.PublishEnabled {
			sb.WriteString("   - Set `publish: true` for a shareable URL\n")
		}
		sb.WriteString("\n")

		sb.WriteString("## Suggested Tools\n\n")
		sb.WriteString("```\n")
		sb.WriteString("search_statistics()\n")
		sb.WriteString("export_analytics()\n")
		rangeArgs = append(rangeArgs, `format: "xlsx"`)
		sb.WriteString(fmt.Sprintf("export_bulk(%s)\n", strings.Join(rangeArgs, ", ")))
		sb.WriteString("```\n")

		return &sdkmcp.GetPromptResult{
			Description: "Search history review workflow",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
