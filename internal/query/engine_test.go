package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []any {
	return []any{
		map[string]any{"formattedAddress": "1 Main St", "city": "Austin", "bedrooms": 3, "features": map[string]any{"pool": true}},
		map[string]any{"formattedAddress": "2 Oak Ave", "city": "Dallas", "bedrooms": 2},
		map[string]any{"formattedAddress": "3 Elm Rd", "city": "Austin", "bedrooms": 4, "features": map[string]any{"pool": false}},
	}
}

func TestEngine_Filter(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name    string
		expr    string
		indices []int
	}{
		{"equality", `.city == "Austin"`, []int{0, 2}},
		{"numeric comparison", `.bedrooms >= 3`, []int{0, 2}},
		{"missing field is null", `.features.pool`, []int{0}},
		{"non-boolean truthy", `.formattedAddress`, []int{0, 1, 2}},
		{"nothing matches", `.bedrooms > 10`, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Filter(sampleRecords(), tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.indices, result.Indices)
			assert.Len(t, result.Records, len(tt.indices))
		})
	}
}

func TestEngine_Filter_KeepsOriginalRecords(t *testing.T) {
	records := sampleRecords()
	result, err := NewEngine().Filter(records, `.city == "Dallas"`)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	// Kept records are the caller's values, not the normalized copies.
	assert.Equal(t, 2, result.Records[0].(map[string]any)["bedrooms"])
}

func TestEngine_Filter_RecordErrors(t *testing.T) {
	records := []any{
		map[string]any{"tags": []any{"a"}},
		map[string]any{"tags": nil},
	}
	result, err := NewEngine().Filter(records, `.tags[] == "a"`)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, result.Indices)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "record[1]")
	assert.Contains(t, result.Errors[0], "may not exist")
}

func TestEngine_Filter_InvalidExpression(t *testing.T) {
	_, err := NewEngine().Filter(sampleRecords(), `.city ==`)
	assert.ErrorContains(t, err, "invalid jq expression")
}

func TestEngine_Filter_UnencodableRecords(t *testing.T) {
	_, err := NewEngine().Filter([]any{math.Inf(1)}, `.`)
	assert.Error(t, err)
}

func TestEngine_Extract(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Extract(sampleRecords(), ".city", false, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"Austin", "Dallas", "Austin"}, result.Values)
	assert.Equal(t, 3, result.RawCount)
	assert.Equal(t, []int{0, 1, 2}, result.MatchedIndices)
}

func TestEngine_Extract_Deduplicate(t *testing.T) {
	result, err := NewEngine().Extract(sampleRecords(), ".city", true, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"Austin", "Dallas"}, result.Values)
	assert.Equal(t, 3, result.RawCount)
}

func TestEngine_Extract_MaxResults(t *testing.T) {
	result, err := NewEngine().Extract(sampleRecords(), ".bedrooms", false, 2)
	require.NoError(t, err)
	assert.Equal(t, []any{float64(3), float64(2)}, result.Values)
}

func TestEngine_Extract_SkipsNulls(t *testing.T) {
	result, err := NewEngine().Extract(sampleRecords(), ".features.pool", false, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{true, false}, result.Values)
	assert.Equal(t, []int{0, 2}, result.MatchedIndices)
}

func TestEngine_Extract_ErrorDeduplication(t *testing.T) {
	records := []any{
		map[string]any{"other": "a"},
		map[string]any{"other": "b"},
	}
	result, err := NewEngine().Extract(records, ".items[].name", false, 0)
	require.NoError(t, err)
	assert.Empty(t, result.Values)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "record[0]", result.Errors[0][:9])
	assert.Equal(t, "record[1]", result.Errors[1][:9])
}

func TestEngine_ValidateExpression(t *testing.T) {
	engine := NewEngine()

	assert.NoError(t, engine.ValidateExpression(`select(.bedrooms > 2)`))
	assert.Error(t, engine.ValidateExpression(`.city ==`))
	assert.Error(t, engine.ValidateExpression(`undefined_fn(1)`))
}
