package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/propsearch-mcp/internal/mcp/tools"
	"github.com/usestring/propsearch-mcp/internal/schema"
	"github.com/usestring/propsearch-mcp/pkg/export"
)

// Resource URI scheme: propsearch://
// Supported URIs:
//   propsearch://search/{search_id}
//   propsearch://export/{search_id}/{format}
//   propsearch://bulk/{from}/{to}/{format}
//   propsearch://schema/record
//   propsearch://analytics

// registerResources registers resource templates and handlers.
func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: tools.URIScheme + "search/{search_id}",
		Name:        "Property Search",
		Description: "Stored search document with all results. High context cost - search_get and search_query return the same data selectively.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.6,
		},
	}, s.handleResourceSearch)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: tools.URIScheme + "export/{search_id}/{format}",
		Name:        "Search Export",
		Description: "Export file of a stored search: json, csv, xlsx or pdf. Binary formats are returned as blobs.",
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"user"},
			Priority: 0.5,
		},
	}, s.handleResourceExport)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: tools.URIScheme + "bulk/{from}/{to}/{format}",
		Name:        "Bulk Export",
		Description: "Combined results of every search between two YYYY-MM-DD dates, as csv or xlsx.",
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"user"},
			Priority: 0.4,
		},
	}, s.handleResourceBulk)

	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         tools.URIScheme + "schema/record",
		Name:        "Property Record Schema",
		Description: "JSON Schema of a RentCast property record, as used by validate_records.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.3,
		},
	}, s.handleResourceRecordSchema)

	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         tools.AnalyticsURI,
		Name:        "Search Analytics",
		Description: "Activity summary of recent searches. export_analytics returns the same report.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.3,
		},
	}, s.handleResourceAnalytics)
}

// Resource handlers

func (s *Server) handleResourceSearch(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	search, err := s.deps.LoadSearch(ctx, params["search_id"])
	if err != nil {
		return nil, resourceError(req.Params.URI, err)
	}
	return toResourceResult(req.Params.URI, search.Map())
}

func (s *Server) handleResourceExport(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(params["format"])
	if err != nil {
		return nil, tools.ErrInvalidInput(err.Error())
	}

	se, err := s.deps.ExportSearch(ctx, params["search_id"], format, "")
	if err != nil {
		return nil, resourceError(req.Params.URI, err)
	}
	return toBlobResult(req.Params.URI, se.Artifact), nil
}

func (s *Server) handleResourceBulk(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	from, err := time.Parse("2006-01-02", params["from"])
	if err != nil {
		return nil, tools.ErrInvalidInput(fmt.Sprintf("invalid from date: %s", params["from"]))
	}
	to, err := time.Parse("2006-01-02", params["to"])
	if err != nil {
		return nil, tools.ErrInvalidInput(fmt.Sprintf("invalid to date: %s", params["to"]))
	}
	format, err := export.ParseFormat(params["format"])
	if err != nil {
		return nil, tools.ErrInvalidInput(err.Error())
	}

	_, a, err := s.deps.ExportBulk(ctx, from, to, format)
	if err != nil {
		return nil, resourceError(req.Params.URI, err)
	}
	return toBlobResult(req.Params.URI, a), nil
}

func (s *Server) handleResourceRecordSchema(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	doc, err := schema.SchemaToMap(schema.RecordSchema())
	if err != nil {
		return nil, err
	}
	return toResourceResult(req.Params.URI, doc)
}

func (s *Server) handleResourceAnalytics(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	analytics, err := s.deps.Search.Analytics(ctx, s.deps.UserID())
	if err != nil {
		return nil, err
	}
	return toResourceResult(req.Params.URI, analytics)
}

// Helper functions

// parseResourceURI extracts parameters from a propsearch:// URI.
func parseResourceURI(uri string) (map[string]string, error) {
	if !strings.HasPrefix(uri, tools.URIScheme) {
		return nil, tools.ErrInvalidInput("invalid URI scheme: expected " + tools.URIScheme)
	}

	path := strings.TrimPrefix(uri, tools.URIScheme)
	parts := strings.Split(path, "/")

	if len(parts) == 0 || parts[0] == "" {
		return nil, tools.ErrInvalidInput("empty resource path")
	}

	params := make(map[string]string)
	resourceType := parts[0]

	switch resourceType {
	case "search":
		if len(parts) < 2 || parts[1] == "" {
			return nil, tools.ErrInvalidInput("search URI requires search ID")
		}
		params["search_id"] = parts[1]

	case "export":
		if len(parts) < 3 {
			return nil, tools.ErrInvalidInput("export URI requires search ID and format")
		}
		params["search_id"] = parts[1]
		params["format"] = parts[2]

	case "bulk":
		if len(parts) < 4 {
			return nil, tools.ErrInvalidInput("bulk URI requires from, to and format")
		}
		params["from"] = parts[1]
		params["to"] = parts[2]
		params["format"] = parts[3]

	default:
		return nil, tools.ErrInvalidInput(fmt.Sprintf("unknown resource type: %s", resourceType))
	}

	return params, nil
}

// resourceError reports missing searches as resource-not-found.
func resourceError(uri string, err error) error {
	var coded *tools.CodedError
	if errors.As(err, &coded) && coded.Code == tools.ErrCodeNotFound {
		return sdkmcp.ResourceNotFoundError(uri)
	}
	return err
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}

// toBlobResult wraps an export artifact. JSON stays text; other formats are
// returned as blobs.
func toBlobResult(uri string, a *export.Artifact) *sdkmcp.ReadResourceResult {
	contents := &sdkmcp.ResourceContents{URI: uri, MIMEType: a.MediaType}
	if a.Format == export.FormatJSON {
		contents.Text = string(a.Data)
	} else {
		contents.Blob = a.Data
	}
	return &sdkmcp.ReadResourceResult{Contents: []*sdkmcp.ResourceContents{contents}}
}
