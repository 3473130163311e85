package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandlePropertyReport implements the single-property report workflow.
func HandlePropertyReport(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		args := req.Params.Arguments

		address := ""
		format := "pdf"
		if args != nil {
			if v, ok := args["address"]; ok {
				address = strings.TrimSpace(v)
			}
			if v, ok := args["format"]; ok && strings.TrimSpace(v) != "" {
				format = strings.ToLower(strings.TrimSpace(v))
			}
		}

		var sb strings.Builder

		sb.WriteString("# Property Report\n\n")
		sb.WriteString("You are a real estate research assistant. Your goal is to look up a property, check the data, ")
		sb.WriteString("and hand the user a report file they can keep.\n\n")

		sb.WriteString("## Context Usage Guide\n\n")
		sb.WriteString("- `property_search` returns a preview of the first property only - enough to confirm the right address\n")
		sb.WriteString("- `search_query` pulls single fields across all results without loading full records\n")
		sb.WriteString("- The `propsearch://search/{search_id}` resource returns every record - high context cost, fetch only when needed\n")
		if cfg.MaxQueries > 0 {
			sb.WriteString(fmt.Sprintf("- Each new address uses one of %d API queries; repeated addresses are served from cache\n", cfg.MaxQueries))
		}
		sb.WriteString("\n")

		sb.WriteString("## Workflow Steps\n\n")
		sb.WriteString("1. **Check history** - avoid spending quota on an address already searched\n")
		sb.WriteString("   - `searches_list(filter: ...)` with a distinctive part of the address\n")
		sb.WriteString("   - Reuse an existing search_id when the address matches\n\n")
		sb.WriteString("2. **Search** - look up the property\n")
		sb.WriteString("   - Confirm `preview.Address` is the property the user meant\n")
		sb.WriteString("   - `properties_found: 0` means RentCast has no record; ask the user to check the address\n\n")
		sb.WriteString("3. **Review** - pull the fields the user cares about\n")
		sb.WriteString("   - e.g. `.lastSalePrice`, `.features`, `.taxAssessments`\n\n")
		sb.WriteString("4. **Validate** - `validate_records` flags records with malformed fields before they reach a report\n\n")
		sb.WriteString("5. **Export** - produce the file\n")
		sb.WriteString("   - pdf: one page section per property; xlsx: sheets for properties, tax history and search info\n")
		sb.WriteString("   - csv: flat table; json: the stored document as-is\n")
		if cfg.PublishEnabled {
			sb.WriteString("   - Set `publish: true` to upload the file and return a shareable URL\n")
		}
		sb.WriteString("\n")

		sb.WriteString("## Suggested Tools\n\n")
		sb.WriteString("```\n")
		if address != "" {
			sb.WriteString(fmt.Sprintf("searches_list(filter: %q)\n", address))
			sb.WriteString(fmt.Sprintf("property_search(address: %q)\n", address))
		} else {
			sb.WriteString("searches_list(filter: \"<street name>\")\n")
			sb.WriteString("property_search(address: \"<full address>\")\n")
		}
		sb.WriteString("search_query(search_id: \"...\", expression: \".lastSalePrice\")\n")
		sb.WriteString("validate_records(search_id: \"...\")\n")
		sb.WriteString(fmt.Sprintf("export_search(search_id: \"...\", format: %q)\n", format))
		sb.WriteString("```\n")

		return &sdkmcp.GetPromptResult{
			Description: "Property report workflow",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
