package export

import (
	"fmt"
	"strings"
)

// Format identifies an export encoding.
type Format string

// Supported export formats.
const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
)

// Media types of the produced artifacts.
const (
	MediaTypeJSON  = "application/json"
	MediaTypeCSV   = "text/csv"
	MediaTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MediaTypePDF   = "application/pdf"
)

// Formats lists every supported format in display order.
var Formats = []Format{FormatJSON, FormatCSV, FormatExcel, FormatPDF}

// ParseFormat resolves a user-supplied format name. "excel" is accepted as
// an alias for xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format %q (expected json, csv, xlsx or pdf)", s)
}

// MediaType returns the MIME type for the format.
func (f Format) MediaType() string {
	switch f {
	case FormatJSON:
		return MediaTypeJSON
	case FormatCSV:
		return MediaTypeCSV
	case FormatExcel:
		return MediaTypeExcel
	case FormatPDF:
		return MediaTypePDF
	}
	return "application/octet-stream"
}

// Label is the human name used in error messages.
func (f Format) Label() string {
	switch f {
	case FormatJSON:
		return "JSON"
	case FormatCSV:
		return "CSV"
	case FormatExcel:
		return "Excel"
	case FormatPDF:
		return "PDF"
	}
	return strings.ToUpper(string(f))
}

// filePrefix is the leading filename component. PDF output is a report,
// everything else is a search dump.
func (f Format) filePrefix() string {
	if f == FormatPDF {
		return "property_report"
	}
	return "property_search"
}
