package tools

import (
	"context"
	"sort"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/propsearch-mcp/internal/schema"
	"github.com/usestring/propsearch-mcp/internal/search"
)

// ValidateRecordsInput is the input for validate_records.
type ValidateRecordsInput struct {
	SearchID string `json:"search_id" jsonschema:"Search ID whose results to validate"`
	Schema   string `json:"schema,omitempty" jsonschema:"JSON Schema to validate against (default: the property record schema)"`
}

// ValidateRecordsOutput is the output for validate_records.
type ValidateRecordsOutput struct {
	SearchID       string               `json:"search_id"`
	RecordsChecked int                  `json:"records_checked"`
	InvalidRecords int                  `json:"invalid_records"`
	AllValid       bool                 `json:"all_valid"`
	Issues         []schema.RecordIssue `json:"issues,omitzero"`
	CommonErrors   []CommonError        `json:"common_errors,omitzero"`
}

// CommonError is a validation error shared by several records.
type CommonError struct {
	Error     string `json:"error"`
	Frequency int    `json:"frequency"`
}

const maxCommonErrors = 10

// ToolValidateRecords checks a stored search's results against a schema.
func ToolValidateRecords(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateRecordsInput) (*sdkmcp.CallToolResult, ValidateRecordsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateRecordsInput) (*sdkmcp.CallToolResult, ValidateRecordsOutput, error) {
		validator := d.Validator
		if strings.TrimSpace(input.Schema) != "" {
			v, err := schema.NewValidator([]byte(input.Schema))
			if err != nil {
				return nil, ValidateRecordsOutput{}, ErrInvalidInput("invalid schema: " + err.Error())
			}
			validator = v
		}

		s, err := d.LoadSearch(ctx, input.SearchID)
		if err != nil {
			return nil, ValidateRecordsOutput{}, toolError("validate_records", err)
		}
		pd, _ := s.Map()["property_data"].(map[string]any)
		records := search.PropertyResults(pd)

		issues := validator.Check(records)
		return nil, ValidateRecordsOutput{
			SearchID:       s.ID,
			RecordsChecked: len(records),
			InvalidRecords: len(issues),
			AllValid:       len(issues) == 0,
			Issues:         issues,
			CommonErrors:   commonErrors(issues),
		}, nil
	}
}

// commonErrors counts messages that occur in more than one record, most
// frequent first.
func commonErrors(issues []schema.RecordIssue) []CommonError {
	counts := make(map[string]int)
	var order []string
	for _, issue := range issues {
		for _, msg := range issue.Errors {
			if counts[msg] == 0 {
				order = append(order, msg)
			}
			counts[msg]++
		}
	}

	var out []CommonError
	for _, msg := range order {
		if counts[msg] > 1 {
			out = append(out, CommonError{Error: msg, Frequency: counts[msg]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Frequency > out[j].Frequency
	})
	if len(out) > maxCommonErrors {
		out = out[:maxCommonErrors]
	}
	return out
}
