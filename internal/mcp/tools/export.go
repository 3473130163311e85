package tools

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/propsearch-mcp/internal/publish"
	"github.com/usestring/propsearch-mcp/internal/search"
	"github.com/usestring/propsearch-mcp/pkg/export"
)

// DefaultBulkDays is the bulk export range used when no dates are given.
const DefaultBulkDays = 30

// SearchExport is a rendered export of one stored search.
type SearchExport struct {
	SearchID string
	Artifact *export.Artifact
	// Records is the number of results passed to the exporter, after
	// filtering.
	Records      int
	FilterErrors []string
}

// ExportSearch renders one of the user's stored searches. JSON exports the
// whole property data; the other formats export its results, with the
// export summary attached for workbooks and reports. A non-empty filter is a
// jq predicate applied to the results first.
func (d *Deps) ExportSearch(ctx context.Context, searchID string, format export.Format, filter string) (*SearchExport, error) {
	s, err := d.LoadSearch(ctx, searchID)
	if err != nil {
		return nil, err
	}

	doc := s.Map()
	pd := maps.Clone(doc["property_data"].(map[string]any))
	records := search.PropertyResults(pd)

	out := &SearchExport{SearchID: s.ID}
	if strings.TrimSpace(filter) != "" {
		fr, err := d.Query.Filter(records, filter)
		if err != nil {
			return nil, ErrInvalidInput(err.Error())
		}
		records = fr.Records
		out.FilterErrors = fr.Errors
		pd["results"] = records
		doc["property_data"] = pd
	}
	out.Records = len(records)

	rs := export.ResultSet{Properties: records, Source: pd}
	if format == export.FormatExcel || format == export.FormatPDF {
		rs.Metadata = d.Exporter.Summary(doc)
	}

	a, err := d.Exporter.Export(format, rs, s.ID)
	if err != nil {
		return nil, err
	}
	out.Artifact = a
	return out, nil
}

// ExportBulk renders the combined results of the user's searches between
// from and to as CSV or XLSX.
func (d *Deps) ExportBulk(ctx context.Context, from, to time.Time, format export.Format) (*search.BulkResult, *export.Artifact, error) {
	if format != export.FormatCSV && format != export.FormatExcel {
		return nil, nil, ErrInvalidInput(fmt.Sprintf("bulk export supports csv or xlsx, not %s", format))
	}

	if to.Before(from) {
		return nil, nil, ErrInvalidInput(fmt.Sprintf("from %s is after to %s", from.Format(dayLayout), to.Format(dayLayout)))
	}

	br, err := d.Search.Bulk(ctx, d.UserID(), from, to)
	if err != nil {
		return nil, nil, err
	}
	if len(br.Results) == 0 {
		return br, nil, ErrNotFound("search results", from.Format(dayLayout)+" to "+to.Format(dayLayout))
	}

	name := "bulk_" + from.Format(dayLayout) + "_" + to.Format(dayLayout)
	a, err := d.Exporter.Export(format, export.ResultSet{Properties: br.Results, Metadata: br.Metadata}, name)
	if err != nil {
		return br, nil, err
	}
	return br, a, nil
}

func (d *Deps) publish(ctx context.Context, a *export.Artifact) (*publish.Published, error) {
	if d.Publisher == nil {
		return nil, ErrInvalidInput("publishing is not configured; set EXPORT_S3_BUCKET")
	}
	p, err := d.Publisher.Publish(ctx, d.UserID(), a)
	if err != nil {
		return nil, &CodedError{Code: ErrCodeExportFailed, Message: "publishing " + a.Filename + " failed", Cause: err}
	}
	return p, nil
}

// ExportSearchInput is the input for export_search.
type ExportSearchInput struct {
	SearchID string `json:"search_id" jsonschema:"Search ID to export"`
	Format   string `json:"format,omitempty" jsonschema:"Format: json, csv, xlsx or pdf (default: json)"`
	Filter   string `json:"filter,omitempty" jsonschema:"jq predicate selecting results to export, e.g. .bedrooms >= 3"`
	Publish  bool   `json:"publish,omitempty" jsonschema:"Also upload the file to the configured S3 bucket"`
}

// ExportOutput describes a produced export file.
type ExportOutput struct {
	SearchID        string                 `json:"search_id,omitempty"`
	Format          string                 `json:"format"`
	Filename        string                 `json:"filename"`
	MediaType       string                 `json:"media_type"`
	SizeBytes       int                    `json:"size_bytes"`
	RecordsExported int                    `json:"records_exported"`
	Skipped         []export.SkippedRecord `json:"skipped,omitzero"`
	FilterErrors    []string               `json:"filter_errors,omitzero"`
	ResourceURI     string                 `json:"resource_uri"`
	Published       *publish.Published     `json:"published,omitempty"`
}

// ExportBulkInput is the input for export_bulk.
type ExportBulkInput struct {
	From    string `json:"from,omitempty" jsonschema:"First day, YYYY-MM-DD (default: 30 days ago)"`
	To      string `json:"to,omitempty" jsonschema:"Last day, YYYY-MM-DD (default: today)"`
	Format  string `json:"format,omitempty" jsonschema:"Format: csv or xlsx (default: csv)"`
	Publish bool   `json:"publish,omitempty" jsonschema:"Also upload the file to the configured S3 bucket"`
}

// ExportBulkOutput is the output for export_bulk.
type ExportBulkOutput struct {
	File          ExportOutput           `json:"file"`
	From          string                 `json:"from"`
	To            string                 `json:"to"`
	TotalSearches int                    `json:"total_searches"`
	Searches      []search.SearchSummary `json:"searches,omitzero"`
}

// ExportSummaryInput is the input for export_summary.
type ExportSummaryInput struct {
	SearchID string `json:"search_id" jsonschema:"Search ID to summarize"`
}

// ExportSummaryOutput is the output for export_summary.
type ExportSummaryOutput struct {
	SearchID string         `json:"search_id"`
	Summary  []SummaryField `json:"summary,omitzero"`
}

// SummaryField is one line of an export summary.
type SummaryField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ExportAnalyticsInput is the input for export_analytics.
type ExportAnalyticsInput struct{}

// ExportAnalyticsOutput is the output for export_analytics.
type ExportAnalyticsOutput struct {
	TotalSearches       int                `json:"total_searches"`
	SearchesWithResults int                `json:"searches_with_results"`
	TotalProperties     int                `json:"total_properties"`
	AveragePerSearch    float64            `json:"average_properties_per_search"`
	Activity            []search.DayCount  `json:"activity,omitzero"`
	TopSearches         []search.TopSearch `json:"top_searches,omitzero"`
	Filename            string             `json:"filename"`
}

func exportOutput(a *export.Artifact, uri string) ExportOutput {
	return ExportOutput{
		Format:      string(a.Format),
		Filename:    a.Filename,
		MediaType:   a.MediaType,
		SizeBytes:   len(a.Data),
		Skipped:     a.Skipped,
		ResourceURI: uri,
	}
}

// ToolExportSearch exports a stored search as a file.
func ToolExportSearch(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ExportSearchInput) (*sdkmcp.CallToolResult, ExportOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ExportSearchInput) (*sdkmcp.CallToolResult, ExportOutput, error) {
		if input.Format == "" {
			input.Format = string(export.FormatJSON)
		}
		format, err := export.ParseFormat(input.Format)
		if err != nil {
			return nil, ExportOutput{}, ErrInvalidInput(err.Error())
		}

		se, err := d.ExportSearch(ctx, input.SearchID, format, input.Filter)
		if err != nil {
			return nil, ExportOutput{}, toolError("export_search", err)
		}

		uri := ExportURI(se.SearchID, format)
		output := exportOutput(se.Artifact, uri)
		output.SearchID = se.SearchID
		output.RecordsExported = se.Records
		output.FilterErrors = se.FilterErrors

		if input.Publish {
			output.Published, err = d.publish(ctx, se.Artifact)
			if err != nil {
				return nil, ExportOutput{}, toolError("export_search", err)
			}
		}
		return artifactResult(uri, se.Artifact), output, nil
	}
}

// ToolExportBulk exports every search in a date range as one file.
func ToolExportBulk(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ExportBulkInput) (*sdkmcp.CallToolResult, ExportBulkOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ExportBulkInput) (*sdkmcp.CallToolResult, ExportBulkOutput, error) {
		today := d.now().UTC()
		to, err := parseDay("to", input.To, today)
		if err != nil {
			return nil, ExportBulkOutput{}, err
		}
		from, err := parseDay("from", input.From, to.AddDate(0, 0, -DefaultBulkDays))
		if err != nil {
			return nil, ExportBulkOutput{}, err
		}
		if input.Format == "" {
			input.Format = string(export.FormatCSV)
		}
		format, err := export.ParseFormat(input.Format)
		if err != nil {
			return nil, ExportBulkOutput{}, ErrInvalidInput(err.Error())
		}

		br, a, err := d.ExportBulk(ctx, from, to, format)
		if err != nil {
			return nil, ExportBulkOutput{}, toolError("export_bulk", err)
		}

		fromDay, toDay := from.Format(dayLayout), to.Format(dayLayout)
		uri := BulkURI(fromDay, toDay, format)
		output := ExportBulkOutput{
			File:          exportOutput(a, uri),
			From:          fromDay,
			To:            toDay,
			TotalSearches: len(br.Searches),
			Searches:      br.Searches,
		}
		output.File.RecordsExported = len(br.Results)

		if input.Publish {
			output.File.Published, err = d.publish(ctx, a)
			if err != nil {
				return nil, ExportBulkOutput{}, toolError("export_bulk", err)
			}
		}
		return artifactResult(uri, a), output, nil
	}
}

// ToolExportSummary returns the summary attached to workbook and report
// exports of a search.
func ToolExportSummary(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ExportSummaryInput) (*sdkmcp.CallToolResult, ExportSummaryOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ExportSummaryInput) (*sdkmcp.CallToolResult, ExportSummaryOutput, error) {
		s, err := d.LoadSearch(ctx, input.SearchID)
		if err != nil {
			return nil, ExportSummaryOutput{}, toolError("export_summary", err)
		}

		meta := d.Exporter.Summary(s.Map())
		output := ExportSummaryOutput{
			SearchID: s.ID,
			Summary:  make([]SummaryField, len(meta)),
		}
		for i, f := range meta {
			output.Summary[i] = SummaryField{Key: f.Key, Value: f.Text()}
		}
		return nil, output, nil
	}
}

// ToolExportAnalytics reports search activity and attaches it as a JSON file.
func ToolExportAnalytics(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ExportAnalyticsInput) (*sdkmcp.CallToolResult, ExportAnalyticsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ExportAnalyticsInput) (*sdkmcp.CallToolResult, ExportAnalyticsOutput, error) {
		an, err := d.Search.Analytics(ctx, d.UserID())
		if err != nil {
			return nil, ExportAnalyticsOutput{}, toolError("export_analytics", err)
		}
		a, err := d.Exporter.JSON(an, "analytics")
		if err != nil {
			return nil, ExportAnalyticsOutput{}, toolError("export_analytics", err)
		}

		return artifactResult(AnalyticsURI, a), ExportAnalyticsOutput{
			TotalSearches:       an.TotalSearches,
			SearchesWithResults: an.SearchesWithResults,
			TotalProperties:     an.TotalProperties,
			AveragePerSearch:    an.AveragePerSearch,
			Activity:            an.Activity,
			TopSearches:         an.TopSearches,
			Filename:            a.Filename,
		}, nil
	}
}
