package export

import (
	"strings"
	"time"
)

// Artifact is a finished export.
type Artifact struct {
	Data      []byte
	Filename  string
	MediaType string
	Format    Format
	// Skipped lists input records left out because they are not mappings.
	// Always empty for JSON exports.
	Skipped []SkippedRecord
}

// ResultSet is an ordered collection of property records plus optional
// metadata about the search that produced them.
type ResultSet struct {
	Properties []any
	Metadata   Metadata
	// Source, when non-nil, is what the JSON exporter writes instead of
	// Properties (for example the full stored search document).
	Source any
}

// Exporter renders result sets to files. It is stateless apart from its
// clock and safe for concurrent use.
type Exporter struct {
	now func() time.Time
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock sets the time source used for filenames and export dates.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		e.now = now
	}
}

// New creates an Exporter.
func New(opts ...Option) *Exporter {
	e := &Exporter{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export renders rs in the requested format.
func (e *Exporter) Export(format Format, rs ResultSet, searchID string) (*Artifact, error) {
	switch format {
	case FormatJSON:
		if rs.Source != nil {
			return e.JSON(rs.Source, searchID)
		}
		props := rs.Properties
		if props == nil {
			props = []any{}
		}
		return e.JSON(props, searchID)
	case FormatCSV:
		return e.CSV(rs.Properties, searchID)
	case FormatExcel:
		return e.Excel(rs.Properties, rs.Metadata, searchID)
	case FormatPDF:
		return e.PDF(rs.Properties, rs.Metadata, searchID)
	}
	canonical, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}
	return e.Export(canonical, rs, searchID)
}

// Filename builds the artifact name for a format and search identifier at
// the exporter's current time. Names have one-second granularity.
func (e *Exporter) Filename(format Format, searchID string) string {
	return filename(format, searchID, e.now())
}

func filename(format Format, searchID string, at time.Time) string {
	id := strings.TrimSpace(searchID)
	if id == "" {
		id = "export"
	}
	id = strings.NewReplacer("/", "_", `\`, "_", " ", "_").Replace(id)
	return format.filePrefix() + "_" + id + "_" + at.Format("20060102_150405") + "." + string(format)
}

func (e *Exporter) artifact(format Format, data []byte, searchID string, skipped []SkippedRecord) *Artifact {
	return &Artifact{
		Data:      data,
		Filename:  e.Filename(format, searchID),
		MediaType: format.MediaType(),
		Format:    format,
		Skipped:   skipped,
	}
}
