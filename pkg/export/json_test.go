package export

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_RoundTrip(t *testing.T) {
	ex := newTestExporter()
	in := map[string]any{
		"address":       "1 Main St & Co <A>",
		"results":       []any{map[string]any{"bedrooms": float64(3)}},
		"search_params": map[string]any{"limit": float64(1)},
	}

	art, err := ex.JSON(in, "abc")
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(art.Data, &out))
	assert.Equal(t, in, out)

	assert.Contains(t, string(art.Data), "\n  \"address\"")
	assert.Contains(t, string(art.Data), "1 Main St & Co <A>")
	assert.Equal(t, "property_search_abc_20250314_092653.json", art.Filename)
	assert.Equal(t, MediaTypeJSON, art.MediaType)
	assert.Empty(t, art.Skipped)
}

func TestJSON_EmptyList(t *testing.T) {
	ex := newTestExporter()

	art, err := ex.JSON([]any{}, "")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(art.Data))

	var nilList []any
	art, err = ex.JSON(nilList, "")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(art.Data))
	assert.Equal(t, "property_search_export_20250314_092653.json", art.Filename)
}

func TestJSON_UnsupportedLeavesBecomeStrings(t *testing.T) {
	ex := newTestExporter()
	in := map[string]any{
		"price": math.NaN(),
		"ch":    make(chan int),
		"ok":    float64(1),
	}

	art, err := ex.JSON(in, "x")
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(art.Data, &out))
	assert.Equal(t, "NaN", out["price"])
	assert.IsType(t, "", out["ch"])
	assert.Equal(t, float64(1), out["ok"])
}

func TestJSON_SerializationError(t *testing.T) {
	type key struct{ A, B int }
	ex := newTestExporter()

	_, err := ex.JSON(map[key]string{{1, 2}: "x"}, "x")
	require.Error(t, err)

	var serr *SerializationError
	assert.True(t, errors.As(err, &serr))
	var exErr *Error
	require.True(t, errors.As(err, &exErr))
	assert.Equal(t, FormatJSON, exErr.Format)
	assert.Contains(t, err.Error(), "JSON export failed")
}
