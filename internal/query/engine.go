// Package query runs jq expressions over property records.
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/itchyny/gojq"
)

// Engine executes jq expressions against property records.
type Engine struct{}

// NewEngine creates a new query engine.
func NewEngine() *Engine {
	return &Engine{}
}

// FilterResult is the outcome of filtering records with a predicate.
type FilterResult struct {
	Records []any    `json:"records"`          // Kept records, input order
	Indices []int    `json:"indices"`          // Input positions of kept records
	Errors  []string `json:"errors,omitempty"` // Per-record evaluation errors
}

// QueryResult contains the values extracted from a set of records.
type QueryResult struct {
	Values         []any    `json:"values"`                    // Extracted values
	Errors         []string `json:"errors,omitempty"`          // Per-record errors (e.g., type mismatch)
	RawCount       int      `json:"raw_count"`                 // Count before deduplication
	MatchedIndices []int    `json:"matched_indices,omitempty"` // Records that produced values
}

// Filter keeps the records for which expression yields a truthy value
// (anything but false or null). A record whose evaluation fails is dropped
// and its error reported.
func (e *Engine) Filter(records []any, expression string) (*FilterResult, error) {
	code, err := compile(expression)
	if err != nil {
		return nil, err
	}
	inputs, err := normalizeInputs(records)
	if err != nil {
		return nil, err
	}

	result := &FilterResult{
		Records: make([]any, 0, len(records)),
		Indices: make([]int, 0, len(records)),
	}
	seenErrors := make(map[string]bool)
	for i, input := range inputs {
		keep := false
		iter := code.Run(input)
		for {
			v, ok := iter.Next()
			if !ok {
				break
			}
			if err, isErr := v.(error); isErr {
				msg := formatJQError(recordLabel(i), err)
				if !seenErrors[msg] {
					result.Errors = append(result.Errors, msg)
					seenErrors[msg] = true
				}
				keep = false
				break
			}
			if truthy(v) {
				keep = true
			}
		}
		if keep {
			result.Records = append(result.Records, records[i])
			result.Indices = append(result.Indices, i)
		}
	}
	return result, nil
}

// Extract runs expression against every record and collects the non-null
// values it yields, optionally deduplicated and capped at maxResults.
func (e *Engine) Extract(records []any, expression string, deduplicate bool, maxResults int) (*QueryResult, error) {
	code, err := compile(expression)
	if err != nil {
		return nil, err
	}
	inputs, err := normalizeInputs(records)
	if err != nil {
		return nil, err
	}

	result := &QueryResult{
		Values: make([]any, 0),
	}
	seen := make(map[string]bool)
	seenErrors := make(map[string]bool) // Deduplicate similar errors
	matchedSet := make(map[int]bool)

	for i, input := range inputs {
		if maxResults > 0 && len(result.Values) >= maxResults {
			break
		}
		label := recordLabel(i)

		iter := code.Run(input)
		for {
			if maxResults > 0 && len(result.Values) >= maxResults {
				break
			}

			v, ok := iter.Next()
			if !ok {
				break
			}

			if err, isErr := v.(error); isErr {
				errMsg := formatJQError(label, err)
				if !seenErrors[errMsg] {
					result.Errors = append(result.Errors, errMsg)
					seenErrors[errMsg] = true
				}
				continue
			}

			// Skip nil values
			if v == nil {
				continue
			}

			result.RawCount++
			matchedSet[i] = true

			if deduplicate {
				key := valueKey(v)
				if seen[key] {
					continue
				}
				seen[key] = true
			}

			result.Values = append(result.Values, v)
		}
	}

	for idx := range matchedSet {
		result.MatchedIndices = append(result.MatchedIndices, idx)
	}
	sort.Ints(result.MatchedIndices)

	return result, nil
}

func compile(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return code, nil
}

// normalizeInputs converts records to the plain JSON value types gojq
// accepts.
func normalizeInputs(records []any) ([]any, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encoding records for query: %w", err)
	}
	var inputs []any
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("decoding records for query: %w", err)
	}
	return inputs, nil
}

func recordLabel(i int) string {
	return fmt.Sprintf("record[%d]", i)
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	default:
		return true
	}
}

// formatJQError creates a helpful error message for jq execution errors.
// It adds contextual hints to help users fix common issues.
//
// Note: runtime jq errors (like "cannot iterate over: null") are plain errors
// without typed wrappers in gojq, so string matching is used for user-facing
// hints only.
func formatJQError(label string, err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return fmt.Sprintf("%s: query halted", label)
		}
		return fmt.Sprintf("%s: query halted with: %v", label, haltErr.Value())
	}

	errStr := err.Error()

	var hint string
	switch {
	case strings.Contains(errStr, "cannot iterate over: null"):
		hint = " (the field may not exist on this record)"
	case strings.Contains(errStr, "cannot index") && strings.Contains(errStr, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(errStr, "object") && strings.Contains(errStr, "cannot be iterated"):
		hint = " (expected array but got object, try removing '[]')"
	case strings.Contains(errStr, "array") && strings.Contains(errStr, "cannot be indexed"):
		hint = " (expected object but got array, try adding '[]')"
	}

	return fmt.Sprintf("%s: %s%s", label, errStr, hint)
}

// valueKey creates a string key for deduplication.
func valueKey(v any) string {
	switch val := v.(type) {
	case string:
		return "s:" + val
	case float64:
		return fmt.Sprintf("n:%v", val)
	case bool:
		return fmt.Sprintf("b:%v", val)
	case nil:
		return "null"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("?:%v", val)
		}
		return "j:" + string(b)
	}
}

// ValidateExpression checks if a jq expression is valid without executing it.
func (e *Engine) ValidateExpression(expression string) error {
	query, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return fmt.Errorf("invalid jq expression: %w", err)
	}

	if _, err := gojq.Compile(query); err != nil {
		return fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return nil
}
