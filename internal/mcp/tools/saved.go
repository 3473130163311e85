package tools

import (
	"context"
	"errors"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/propsearch-mcp/internal/store"
)

// SavedSearchCreateInput is the input for saved_search_create.
type SavedSearchCreateInput struct {
	Name       string         `json:"name" jsonschema:"Display name for the saved search"`
	Criteria   map[string]any `json:"criteria,omitempty" jsonschema:"Search criteria to re-run later, e.g. {\"address\": \"...\"}"`
	AutoNotify bool           `json:"auto_notify,omitempty" jsonschema:"Notify when a re-run finds new results"`
}

// SavedSearchCreateOutput is the output for saved_search_create.
type SavedSearchCreateOutput struct {
	SavedSearchID string `json:"saved_search_id"`
	Name          string `json:"name"`
}

// SavedSearchesListInput is the input for saved_searches_list.
type SavedSearchesListInput struct{}

// SavedSearchesListOutput is the output for saved_searches_list.
type SavedSearchesListOutput struct {
	SavedSearches []SavedSearchInfo `json:"saved_searches,omitzero"`
	Count         int               `json:"count"`
}

// SavedSearchInfo describes one saved search.
type SavedSearchInfo struct {
	SavedSearchID string         `json:"saved_search_id"`
	Name          string         `json:"name"`
	Criteria      map[string]any `json:"criteria,omitempty"`
	AutoNotify    bool           `json:"auto_notify"`
	ResultsCount  int            `json:"results_count"`
	LastRun       string         `json:"last_run,omitempty"`
	CreatedAt     string         `json:"created_at"`
}

// SavedSearchUpdateResultsInput is the input for saved_search_update_results.
type SavedSearchUpdateResultsInput struct {
	SavedSearchID string `json:"saved_search_id" jsonschema:"Saved search ID"`
	ResultsCount  int    `json:"results_count" jsonschema:"Number of results found by the latest run"`
}

// SavedSearchUpdateResultsOutput is the output for saved_search_update_results.
type SavedSearchUpdateResultsOutput struct {
	SavedSearchID string `json:"saved_search_id"`
	ResultsCount  int    `json:"results_count"`
	Updated       bool   `json:"updated"`
}

// ToolSavedSearchCreate stores named search criteria.
func ToolSavedSearchCreate(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SavedSearchCreateInput) (*sdkmcp.CallToolResult, SavedSearchCreateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SavedSearchCreateInput) (*sdkmcp.CallToolResult, SavedSearchCreateOutput, error) {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			return nil, SavedSearchCreateOutput{}, ErrInvalidInput("name is required")
		}
		criteria := input.Criteria
		if criteria == nil {
			criteria = map[string]any{}
		}

		id, err := d.Store.SaveNamedSearch(ctx, d.UserID(), name, criteria, input.AutoNotify)
		if err != nil {
			return nil, SavedSearchCreateOutput{}, toolError("saved_search_create", err)
		}
		return nil, SavedSearchCreateOutput{SavedSearchID: id, Name: name}, nil
	}
}

// ToolSavedSearchesList lists the user's saved searches, newest first.
func ToolSavedSearchesList(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SavedSearchesListInput) (*sdkmcp.CallToolResult, SavedSearchesListOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SavedSearchesListInput) (*sdkmcp.CallToolResult, SavedSearchesListOutput, error) {
		saved, err := d.Store.ListSavedSearches(ctx, d.UserID())
		if err != nil {
			return nil, SavedSearchesListOutput{}, toolError("saved_searches_list", err)
		}

		output := SavedSearchesListOutput{
			SavedSearches: make([]SavedSearchInfo, len(saved)),
			Count:         len(saved),
		}
		for i, ss := range saved {
			info := SavedSearchInfo{
				SavedSearchID: ss.ID,
				Name:          ss.Name,
				Criteria:      ss.Criteria,
				AutoNotify:    ss.AutoNotify,
				ResultsCount:  ss.ResultsCount,
				CreatedAt:     ss.CreatedAt.Format(time.RFC3339),
			}
			if ss.LastRun != nil {
				info.LastRun = ss.LastRun.Format(time.RFC3339)
			}
			output.SavedSearches[i] = info
		}
		return nil, output, nil
	}
}

// ToolSavedSearchUpdateResults records the result count of a re-run.
func ToolSavedSearchUpdateResults(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SavedSearchUpdateResultsInput) (*sdkmcp.CallToolResult, SavedSearchUpdateResultsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SavedSearchUpdateResultsInput) (*sdkmcp.CallToolResult, SavedSearchUpdateResultsOutput, error) {
		if input.SavedSearchID == "" {
			return nil, SavedSearchUpdateResultsOutput{}, ErrInvalidInput("saved_search_id is required")
		}
		if input.ResultsCount < 0 {
			return nil, SavedSearchUpdateResultsOutput{}, ErrInvalidInput("results_count must not be negative")
		}

		err := d.Store.UpdateSavedSearchResults(ctx, input.SavedSearchID, input.ResultsCount)
		if errors.Is(err, store.ErrNotFound) {
			return nil, SavedSearchUpdateResultsOutput{}, ErrNotFound("saved search", input.SavedSearchID)
		}
		if err != nil {
			return nil, SavedSearchUpdateResultsOutput{}, toolError("saved_search_update_results", err)
		}
		return nil, SavedSearchUpdateResultsOutput{
			SavedSearchID: input.SavedSearchID,
			ResultsCount:  input.ResultsCount,
			Updated:       true,
		}, nil
	}
}
