package tools

import (
	"context"
	"errors"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/propsearch-mcp/internal/search"
	"github.com/usestring/propsearch-mcp/internal/store"
)

// SearchesListInput is the input for searches_list.
type SearchesListInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"Only searches whose address contains every word of this text"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Max searches to return (default: 50)"`
	Offset int    `json:"offset,omitempty" jsonschema:"Searches to skip, for paging"`
}

// SearchesListOutput is the output for searches_list.
type SearchesListOutput struct {
	Searches []SearchItem `json:"searches,omitzero"`
	Count    int          `json:"count"`
	Limit    int          `json:"limit"`
	Offset   int          `json:"offset"`
}

// SearchGetInput is the input for search_get.
type SearchGetInput struct {
	SearchID string `json:"search_id" jsonschema:"Search ID returned by property_search or searches_list"`
}

// SearchGetOutput is the output for search_get.
type SearchGetOutput struct {
	SearchID     string         `json:"search_id"`
	Address      string         `json:"address"`
	SearchDate   string         `json:"search_date"`
	PropertyData map[string]any `json:"property_data,omitempty"`
}

// SearchDeleteInput is the input for search_delete.
type SearchDeleteInput struct {
	SearchID string `json:"search_id" jsonschema:"Search ID to delete"`
}

// SearchDeleteOutput is the output for search_delete.
type SearchDeleteOutput struct {
	SearchID string `json:"search_id"`
	Deleted  bool   `json:"deleted"`
}

// SearchStatisticsInput is the input for search_statistics.
type SearchStatisticsInput struct{}

// SearchStatisticsOutput is the output for search_statistics.
type SearchStatisticsOutput struct {
	TotalSearches int          `json:"total_searches"`
	SavedSearches int          `json:"saved_searches"`
	Quota         search.Quota `json:"quota"`
}

// ToolSearchesList lists the user's stored searches, newest first.
func ToolSearchesList(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchesListInput) (*sdkmcp.CallToolResult, SearchesListOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchesListInput) (*sdkmcp.CallToolResult, SearchesListOutput, error) {
		if input.Limit < 0 || input.Offset < 0 {
			return nil, SearchesListOutput{}, ErrInvalidInput("limit and offset must not be negative")
		}
		limit := input.Limit
		if limit == 0 {
			limit = store.DefaultListLimit
		}

		searches, err := d.Store.ListSearches(ctx, d.UserID(), store.ListOptions{
			Limit:         limit,
			Offset:        input.Offset,
			AddressFilter: input.Filter,
		})
		if err != nil {
			return nil, SearchesListOutput{}, toolError("searches_list", err)
		}

		output := SearchesListOutput{
			Searches: make([]SearchItem, len(searches)),
			Count:    len(searches),
			Limit:    limit,
			Offset:   input.Offset,
		}
		for i := range searches {
			output.Searches[i] = toSearchItem(&searches[i])
		}
		return nil, output, nil
	}
}

// ToolSearchGet returns one stored search with its full results.
func ToolSearchGet(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchGetInput) (*sdkmcp.CallToolResult, SearchGetOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchGetInput) (*sdkmcp.CallToolResult, SearchGetOutput, error) {
		s, err := d.LoadSearch(ctx, input.SearchID)
		if err != nil {
			return nil, SearchGetOutput{}, toolError("search_get", err)
		}

		pd, _ := s.Map()["property_data"].(map[string]any)
		return nil, SearchGetOutput{
			SearchID:     s.ID,
			Address:      search.SearchAddress(pd),
			SearchDate:   s.SearchDate.Format(time.RFC3339),
			PropertyData: pd,
		}, nil
	}
}

// ToolSearchDelete deletes one stored search.
func ToolSearchDelete(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchDeleteInput) (*sdkmcp.CallToolResult, SearchDeleteOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchDeleteInput) (*sdkmcp.CallToolResult, SearchDeleteOutput, error) {
		if input.SearchID == "" {
			return nil, SearchDeleteOutput{}, ErrInvalidInput("search_id is required")
		}
		if err := d.Store.DeleteSearch(ctx, input.SearchID, d.UserID()); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, SearchDeleteOutput{}, ErrNotFound("search", input.SearchID)
			}
			return nil, SearchDeleteOutput{}, toolError("search_delete", err)
		}
		return nil, SearchDeleteOutput{SearchID: input.SearchID, Deleted: true}, nil
	}
}

// ToolSearchStatistics reports how much the user has stored and queried.
func ToolSearchStatistics(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchStatisticsInput) (*sdkmcp.CallToolResult, SearchStatisticsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchStatisticsInput) (*sdkmcp.CallToolResult, SearchStatisticsOutput, error) {
		st, err := d.Store.Statistics(ctx, d.UserID())
		if err != nil {
			return nil, SearchStatisticsOutput{}, toolError("search_statistics", err)
		}
		q, err := d.Search.Quota(ctx, d.UserID())
		if err != nil {
			return nil, SearchStatisticsOutput{}, toolError("search_statistics", err)
		}
		return nil, SearchStatisticsOutput{
			TotalSearches: st.TotalSearches,
			SavedSearches: st.SavedSearches,
			Quota:         q,
		}, nil
	}
}
