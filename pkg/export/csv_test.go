package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV_HeaderAndRows(t *testing.T) {
	ex := newTestExporter()

	art, err := ex.CSV([]any{map[string]any{"formattedAddress": "1 Main St", "bedrooms": 3}}, "s1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(art.Data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Address,City,State,ZIP Code,Property Type,Bedrooms,"))
	assert.True(t, strings.HasPrefix(lines[1], "1 Main St,N/A,N/A,N/A,N/A,3,"))
	assert.Equal(t, "property_search_s1_20250314_092653.csv", art.Filename)
	assert.Equal(t, MediaTypeCSV, art.MediaType)
}

func TestCSV_PreservesOrderAndColumns(t *testing.T) {
	ex := newTestExporter()
	records := sampleRecords(t)

	art, err := ex.CSV(records, "s2")
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(art.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, len(records)+1)
	assert.Equal(t, VariantTabular.Columns(), rows[0])
	for _, r := range rows {
		assert.Len(t, r, 24)
	}

	assert.Equal(t, "5500 Grand Lake Dr, San Antonio, TX 78244", rows[1][0])
	assert.Equal(t, "Michael Smith", rows[1][16])
	assert.Equal(t, "Yes", rows[1][20])
	assert.Equal(t, "1 Main St", rows[2][0])
	assert.Equal(t, "2.5", rows[2][5])
	assert.Equal(t, "No", rows[2][12])
}

func TestCSV_EmptyInput(t *testing.T) {
	ex := newTestExporter()

	_, err := ex.CSV(nil, "s1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyInput))
	assert.Equal(t, "CSV export failed: no search results to export", err.Error())
}

func TestCSV_SkippedRecordsReported(t *testing.T) {
	ex := newTestExporter()

	art, err := ex.CSV([]any{42, map[string]any{"city": "Austin"}}, "")
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(art.Data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	require.Len(t, art.Skipped, 1)
	assert.Equal(t, 0, art.Skipped[0].Index)
}
