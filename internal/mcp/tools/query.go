package tools

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/propsearch-mcp/internal/search"
)

// Query defaults.
const (
	DefaultQueryMaxResults = 100
	MaxQueryMaxResults     = 1000
)

// SearchQueryInput is the input for search_query.
type SearchQueryInput struct {
	SearchID    string `json:"search_id" jsonschema:"Search ID whose results to query"`
	Expression  string `json:"expression" jsonschema:"jq expression run against each result, e.g. .lastSalePrice or select(.bedrooms > 2) | .formattedAddress"`
	Deduplicate bool   `json:"deduplicate,omitempty" jsonschema:"Drop repeated values"`
	MaxResults  int    `json:"max_results,omitempty" jsonschema:"Max values to return (default: 100, max: 1000)"`
}

// SearchQueryOutput is the output for search_query.
type SearchQueryOutput struct {
	SearchID       string   `json:"search_id"`
	Expression     string   `json:"expression"`
	Values         []any    `json:"values,omitzero"`
	RawCount       int      `json:"raw_count"`
	RecordsChecked int      `json:"records_checked"`
	MatchedIndices []int    `json:"matched_indices,omitzero"`
	Errors         []string `json:"errors,omitzero"`
	Truncated      bool     `json:"truncated,omitempty"`
}

// ToolSearchQuery extracts values from a stored search's results with jq.
func ToolSearchQuery(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchQueryInput) (*sdkmcp.CallToolResult, SearchQueryOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchQueryInput) (*sdkmcp.CallToolResult, SearchQueryOutput, error) {
		expr := strings.TrimSpace(input.Expression)
		if expr == "" {
			return nil, SearchQueryOutput{}, ErrInvalidInput("expression is required")
		}
		if err := d.Query.ValidateExpression(expr); err != nil {
			return nil, SearchQueryOutput{}, ErrInvalidInput(err.Error())
		}
		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = DefaultQueryMaxResults
		}
		if maxResults > MaxQueryMaxResults {
			maxResults = MaxQueryMaxResults
		}

		s, err := d.LoadSearch(ctx, input.SearchID)
		if err != nil {
			return nil, SearchQueryOutput{}, toolError("search_query", err)
		}
		pd, _ := s.Map()["property_data"].(map[string]any)
		records := search.PropertyResults(pd)

		res, err := d.Query.Extract(records, expr, input.Deduplicate, maxResults)
		if err != nil {
			return nil, SearchQueryOutput{}, ErrInvalidInput(err.Error())
		}

		return nil, SearchQueryOutput{
			SearchID:       s.ID,
			Expression:     expr,
			Values:         res.Values,
			RawCount:       res.RawCount,
			RecordsChecked: len(records),
			MatchedIndices: res.MatchedIndices,
			Errors:         res.Errors,
			Truncated:      len(res.Values) >= maxResults,
		}, nil
	}
}
