package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/usestring/propsearch-mcp/internal/publish"
	"github.com/usestring/propsearch-mcp/pkg/export"
)

type fakeS3 struct {
	keys []string
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.keys = append(f.keys, *params.Key)
	return &s3.PutObjectOutput{}, nil
}

func embeddedBlob(t *testing.T, res *sdkmcp.CallToolResult) *sdkmcp.ResourceContents {
	t.Helper()
	require.NotNil(t, res)
	for _, c := range res.Content {
		if er, ok := c.(*sdkmcp.EmbeddedResource); ok {
			return er.Resource
		}
	}
	t.Fatal("no embedded resource in result")
	return nil
}

func TestExportSearch_Formats(t *testing.T) {
	d := newTestDeps(t, &fakeAPI{records: sampleRecords()})
	id := runSearch(t, d, "1 Main St, Austin, TX")

	tests := []struct {
		format    string
		mediaType string
	}{
		{"json", export.MediaTypeJSON},
		{"csv", export.MediaTypeCSV},
		{"excel", export.MediaTypeExcel},
		{"pdf", export.MediaTypePDF},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			res, out, err := ToolExportSearch(d)(context.Background(), nil, ExportSearchInput{SearchID: id, Format: tt.format})
			require.NoError(t, err)

			assert.Equal(t, id, out.SearchID)
			assert.Equal(t, tt.mediaType, out.MediaType)
			assert.Equal(t, 2, out.RecordsExported)
			assert.Nil(t, out.Published)

			blob := embeddedBlob(t, res)
			assert.Equal(t, out.ResourceURI, blob.URI)
			assert.Equal(t, tt.mediaType, blob.MIMEType)
			assert.Len(t, blob.Blob, out.SizeBytes)
		})
	}
}

func TestExportSearch_JSONIsPropertyData(t *testing.T) {
	d := newTestDeps(t, &fakeAPI{records: sampleRecords()})
	id := runSearch(t, d, "1 Main St, Austin, TX")

	res, out, err := ToolExportSearch(d)(context.Background(), nil, ExportSearchInput{SearchID: id})
	require.NoError(t, err)
	assert.Equal(t, "json", out.Format)
	assert.Equal(t, "propsearch://export/"+id+"/json", out.ResourceURI)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(embeddedBlob(t, res).Blob, &doc))
	assert.Equal(t, "1 Main St, Austin, TX", doc["address"])
	assert.Len(t, doc["results"], 2)
	assert.Contains(t, doc, "search_timestamp")
}

func TestExportSearch_Filter(t *testing.T) {
	d := newTestDeps(t, &fakeAPI{records: sampleRecords()})
	id := runSearch(t, d, "1 Main St, Austin, TX")

	res, out, err := ToolExportSearch(d)(context.Background(), nil, ExportSearchInput{
		SearchID: id,
		Format:   "csv",
		Filter:   ".bedrooms >= 3",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.RecordsExported)

	csv := string(embeddedBlob(t, res).Blob)
	assert.Contains(t, csv, "1 Main St")
	assert.NotContains(t, csv, "2 Oak Ave")

	_, _, err = ToolExportSearch(d)(context.Background(), nil, ExportSearchInput{SearchID: id, Filter: ".bedrooms >="})
	requireCode(t, err, ErrCodeInvalidInput)
}

func TestExportSearch_WorkbookCarriesSummary(t *testing.T) {
	d := newTestDeps(t, &fakeAPI{records: sampleRecords()})
	id := runSearch(t, d, "1 Main St, Austin, TX")

	res, _, err := ToolExportSearch(d)(context.Background(), nil, ExportSearchInput{SearchID: id, Format: "xlsx"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(embeddedBlob(t, res).Blob))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetSearchInfo)
	require.NoError(t, err)
	var keys []string
	for _, r := range rows[1:] {
		keys = append(keys, r[0])
	}
	assert.Equal(t, []string{
		export.SummaryExportDate,
		export.SummaryTotalProperties,
		export.SummarySearchAddress,
		export.SummarySearchDate,
	}, keys)
}

func TestExportSearch_Errors(t *testing.T) {
	d := newTestDeps(t, &fakeAPI{records: []any{}})
	empty := runSearch(t, d, "nowhere")
	ctx := context.Background()

	_, _, err := ToolExportSearch(d)(ctx, nil, ExportSearchInput{SearchID: empty, Format: "docx"})
	requireCode(t, err, ErrCodeInvalidInput)

	_, _, err = ToolExportSearch(d)(ctx, nil, ExportSearchInput{SearchID: "missing"})
	requireCode(t, err, ErrCodeNotFound)

	_, _, err = ToolExportSearch(d)(ctx, nil, ExportSearchInput{SearchID: empty, Format: "csv"})
	requireCode(t, err, ErrCodeExportFailed)
	assert.ErrorIs(t, err, export.ErrEmptyInput)
}

func TestExportSearch_Publish(t *testing.T) {
	d := newTestDeps(t, &fakeAPI{records: sampleRecords()})
	id := runSearch(t, d, "1 Main St")
	ctx := context.Background()

	_, _, err := ToolExportSearch(d)(ctx, nil, ExportSearchInput{SearchID: id, Format: "csv", Publish: true})
	requireCode(t, err, ErrCodeInvalidInput)

	api := &fakeS3{}
	d.Publisher = publish.New(api, publish.Config{Bucket: "exports", Prefix: "exports", Region: "us-east-1"})
	_, out, err := ToolExportSearch(d)(ctx, nil, ExportSearchInput{SearchID: id, Format: "csv", Publish: true})
	require.NoError(t, err)
	require.NotNil(t, out.Published)
	assert.Equal(t, "exports/tester/"+out.Filename, out.Published.Key)
	assert.Equal(t, []string{out.Published.Key}, api.keys)

	api.err = errors.New("access denied")
	_, _, err = ToolExportSearch(d)(ctx, nil, ExportSearchInput{SearchID: id, Format: "csv", Publish: true})
	requireCode(t, err, ErrCodeExportFailed)
}

func TestExportBulk(t *testing.T) {
	d := newTestDeps(t, &fakeAPI{records: sampleRecords()})
	first := runSearch(t, d, "1 Main St")
	second := runSearch(t, d, "2 Oak Ave")

	res, out, err := ToolExportBulk(d)(context.Background(), nil, ExportBulkInput{})
	require.NoError(t, err)

	assert.Equal(t, "2026-02-12", out.From)
	assert.Equal(t, "2026-03-14", out.To)
	assert.Equal(t, 2, out.TotalSearches)
	assert.Equal(t, 4, out.File.RecordsExported)
	assert.Equal(t, "propsearch://bulk/2026-02-12/2026-03-14/csv", out.File.ResourceURI)

	var ids []string
	for _, s := range out.Searches {
		ids = append(ids, s.SearchID)
	}
	assert.ElementsMatch(t, []string{first, second}, ids)

	blob := embeddedBlob(t, res)
	assert.Equal(t, export.MediaTypeCSV, blob.MIMEType)
	assert.Equal(t, 5, strings.Count(string(blob.Blob), "\n"))
}

func TestExportBulk_Errors(t *testing.T) {
	d := newTestDeps(t, &fakeAPI{records: sampleRecords()})
	runSearch(t, d, "1 Main St")
	ctx := context.Background()

	tests := []struct {
		name  string
		input ExportBulkInput
		code  string
	}{
		{"bad date", ExportBulkInput{From: "03/01/2026"}, ErrCodeInvalidInput},
		{"reversed range", ExportBulkInput{From: "2026-03-14", To: "2026-03-01"}, ErrCodeInvalidInput},
		{"unsupported format", ExportBulkInput{Format: "pdf"}, ErrCodeInvalidInput},
		{"no searches in range", ExportBulkInput{From: "2025-01-01", To: "2025-01-31"}, ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ToolExportBulk(d)(ctx, nil, tt.input)
			requireCode(t, err, tt.code)
		})
	}
}

func TestExportSummary(t *testing.T) {
	d := newTestDeps(t, &fakeAPI{records: sampleRecords()})
	id := runSearch(t, d, "1 Main St, Austin, TX")

	_, out, err := ToolExportSummary(d)(context.Background(), nil, ExportSummaryInput{SearchID: id})
	require.NoError(t, err)
	assert.Equal(t, []SummaryField{
		{Key: export.SummaryExportDate, Value: "2026-03-14 15:09:26"},
		{Key: export.SummaryTotalProperties, Value: "2"},
		{Key: export.SummarySearchAddress, Value: "1 Main St, Austin, TX"},
		{Key: export.SummarySearchDate, Value: "2026-03-14T15:09:26Z"},
	}, out.Summary)
}

func TestExportAnalytics(t *testing.T) {
	d := newTestDeps(t, &fakeAPI{records: sampleRecords()})
	runSearch(t, d, "1 Main St")
	runSearch(t, d, "2 Oak Ave")

	res, out, err := ToolExportAnalytics(d)(context.Background(), nil, ExportAnalyticsInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.TotalSearches)
	assert.Equal(t, 4, out.TotalProperties)
	assert.InDelta(t, 2.0, out.AveragePerSearch, 0.001)
	require.Len(t, out.Activity, 1)
	assert.Equal(t, "2026-03-14", out.Activity[0].Date)

	blob := embeddedBlob(t, res)
	assert.Equal(t, AnalyticsURI, blob.URI)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(blob.Blob, &doc))
	assert.EqualValues(t, 2, doc["total_searches"])
}
