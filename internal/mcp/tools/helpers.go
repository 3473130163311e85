// Package tools contains MCP tool implementations for property search and
// export.
package tools

import (
	"fmt"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/propsearch-mcp/internal/search"
	"github.com/usestring/propsearch-mcp/internal/store"
	"github.com/usestring/propsearch-mcp/pkg/export"
)

// MIME type constant.
const MimeJSON = "application/json"

// URIScheme prefixes every resource URI this server exposes.
const URIScheme = "propsearch://"

const dayLayout = "2006-01-02"

// SearchURI is the resource URI of a stored search.
func SearchURI(searchID string) string {
	return URIScheme + "search/" + searchID
}

// ExportURI is the resource URI of a search export.
func ExportURI(searchID string, format export.Format) string {
	return URIScheme + "export/" + searchID + "/" + string(format)
}

// BulkURI is the resource URI of a bulk export.
func BulkURI(from, to string, format export.Format) string {
	return URIScheme + "bulk/" + from + "/" + to + "/" + string(format)
}

// AnalyticsURI is the resource URI of the analytics report.
const AnalyticsURI = URIScheme + "analytics"

// artifactResult returns a tool result carrying the artifact as an embedded
// blob resource plus a one-line description.
func artifactResult(uri string, a *export.Artifact) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{
				Text: fmt.Sprintf("%s (%s, %d bytes)", a.Filename, a.MediaType, len(a.Data)),
			},
			&sdkmcp.EmbeddedResource{
				Resource: &sdkmcp.ResourceContents{
					URI:      uri,
					MIMEType: a.MediaType,
					Blob:     a.Data,
				},
			},
		},
	}
}

// SearchItem is a summary of a stored search.
type SearchItem struct {
	SearchID        string `json:"search_id"`
	Address         string `json:"address"`
	SearchDate      string `json:"search_date"`
	PropertiesFound int    `json:"properties_found"`
}

func toSearchItem(s *store.PropertySearch) SearchItem {
	pd, _ := s.Map()["property_data"].(map[string]any)
	return SearchItem{
		SearchID:        s.ID,
		Address:         search.SearchAddress(pd),
		SearchDate:      s.SearchDate.Format(time.RFC3339),
		PropertiesFound: len(search.PropertyResults(pd)),
	}
}

// parseDay parses a YYYY-MM-DD date, returning def when s is blank.
func parseDay(name, s string, def time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidInput(fmt.Sprintf("%s must be a YYYY-MM-DD date, got %q", name, s))
	}
	return t, nil
}

// previewRecord normalizes a record into column/value pairs for display.
// Unreadable records yield nil.
func previewRecord(record any) map[string]any {
	row, err := export.Normalize(record, export.VariantBase)
	if err != nil {
		return nil
	}
	out := make(map[string]any, len(row))
	for _, c := range row {
		out[c.Column] = c.Value
	}
	return out
}
