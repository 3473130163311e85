package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/usestring/propsearch-mcp/pkg/property"
)

// Report layout, in points on US Letter.
const (
	reportMargin      = 72.0
	reportLabelWidth  = 144.0
	reportValueWidth  = 288.0
	reportLineHeight  = 14.0
	sectionSpacing    = 15.0
	pairBreakSpacing  = 50.0
	metadataSpacing   = 20.0
	reportTitle       = "Property Search Report"
	metadataHeading   = "Search Information"
	metadataSkipField = "results"
)

type rgb struct{ r, g, b int }

var (
	colorDarkBlue   = rgb{0, 0, 139}
	colorLightBlue  = rgb{173, 216, 230}
	colorWhiteSmoke = rgb{245, 245, 245}
	colorBeige      = rgb{245, 245, 220}
	colorLightGrey  = rgb{211, 211, 211}
	colorBlack      = rgb{0, 0, 0}
)

// PDF renders a printable report: title, optional search information table,
// the number of properties, then an eight-row summary table per property.
func (e *Exporter) PDF(records []any, meta Metadata, searchID string) (*Artifact, error) {
	if len(records) == 0 {
		return nil, failed(FormatPDF, ErrEmptyInput)
	}

	items, skipped := normalizeRecords(records, VariantBase)

	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(reportMargin, reportMargin, reportMargin)
	pdf.SetAutoPageBreak(true, reportMargin)
	pdf.SetCreationDate(e.now())
	pdf.SetTitle(reportTitle, false)
	pdf.SetCreator("propsearch-mcp", false)
	r := &report{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.AddPage()
	r.title(reportTitle)

	if len(meta) > 0 {
		var rows [][2]string
		for _, field := range meta {
			if field.Key == metadataSkipField {
				continue
			}
			rows = append(rows, [2]string{humanizeKey(field.Key), displayValue(field.Value)})
		}
		if len(rows) > 0 {
			r.heading(metadataHeading)
			r.metadataTable(rows)
			pdf.Ln(metadataSpacing)
		}
	}

	r.heading(fmt.Sprintf("Properties Found: %d", len(records)))
	for i, it := range items {
		n := i + 1
		r.heading(fmt.Sprintf("Property %d", n))
		r.propertyTable(reportRows(it.record, records[it.index]))
		pdf.Ln(sectionSpacing)
		if pairBreakAfter(n, len(items)) {
			pdf.Ln(pairBreakSpacing)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, failed(FormatPDF, err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, failed(FormatPDF, fmt.Errorf("writing document: %w", err))
	}
	return e.artifact(FormatPDF, buf.Bytes(), searchID, skipped), nil
}

// pairBreakAfter reports whether the n-th of total property sections is
// followed by the wider gap that separates pairs.
func pairBreakAfter(n, total int) bool {
	return n%2 == 0 && n < total
}

// reportRows is the per-property summary shown in the report. raw supplies
// the upstream text of numeric fields that did not decode.
func reportRows(rec *property.Record, raw any) [][2]string {
	sqft := NotAvailable
	if rec.SquareFootage != nil && *rec.SquareFootage != 0 {
		sqft = groupedNumber(*rec.SquareFootage)
	} else if text, ok := rawText(raw, "squareFootage"); ok {
		sqft = text
	}
	price := NotAvailable
	if rec.LastSalePrice != nil && *rec.LastSalePrice != 0 {
		price = "$" + groupedNumber(*rec.LastSalePrice)
	} else if text, ok := rawText(raw, "lastSalePrice"); ok {
		price = text
	}
	return [][2]string{
		{"Address", str(rec.FormattedAddress)},
		{"Property Type", str(rec.PropertyType)},
		{"Bedrooms", numText(rec.Bedrooms, raw, "bedrooms")},
		{"Bathrooms", numText(rec.Bathrooms, raw, "bathrooms")},
		{"Square Footage", sqft},
		{"Year Built", numText(rec.YearBuilt, raw, "yearBuilt")},
		{"Last Sale Price", price},
		{"Owner Occupied", yesNo(rec.OwnerOccupied)},
	}
}

func numText(p *float64, raw any, key string) string {
	if p != nil {
		return strconv.FormatFloat(*p, 'f', -1, 64)
	}
	if text, ok := rawText(raw, key); ok {
		return text
	}
	return NotAvailable
}

type report struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (r *report) title(text string) {
	r.pdf.SetFont("Helvetica", "B", 18)
	r.setText(colorDarkBlue)
	r.pdf.CellFormat(0, 24, r.tr(text), "", 1, "L", false, 0, "")
	r.pdf.Ln(30)
}

func (r *report) heading(text string) {
	r.pdf.SetFont("Helvetica", "B", 14)
	r.setText(colorDarkBlue)
	r.pdf.CellFormat(0, 18, r.tr(text), "", 1, "L", false, 0, "")
	r.pdf.Ln(12)
}

// metadataTable draws the search information grid: the first row on a light
// blue band, the rest on beige.
func (r *report) metadataTable(rows [][2]string) {
	for i, row := range rows {
		if i == 0 {
			r.setFill(colorLightBlue)
			r.setText(colorWhiteSmoke)
			r.row(row[0], row[1], "B", "B", 10, true, true)
			continue
		}
		r.setFill(colorBeige)
		r.setText(colorBlack)
		r.row(row[0], row[1], "", "", 10, true, true)
	}
}

// propertyTable draws a label/value grid with a grey bold label column.
func (r *report) propertyTable(rows [][2]string) {
	r.setFill(colorLightGrey)
	r.setText(colorBlack)
	for _, row := range rows {
		r.row(row[0], row[1], "B", "", 9, true, false)
	}
}

func (r *report) row(label, value, labelStyle, valueStyle string, size float64, fillLabel, fillValue bool) {
	r.pdf.SetFont("Helvetica", valueStyle, size)
	h := r.rowHeight(value)
	x, y := r.tableRowStart(h)
	r.pdf.SetFont("Helvetica", labelStyle, size)
	r.pdf.CellFormat(reportLabelWidth, h, r.tr(label), "1", 0, "LT", fillLabel, 0, "")
	r.pdf.SetFont("Helvetica", valueStyle, size)
	r.pdf.MultiCell(reportValueWidth, reportLineHeight, r.tr(value), "1", "L", fillValue)
	r.pdf.SetXY(x, y+h)
}

// tableRowStart moves to a fresh page when the row would not fit, and
// returns the row origin.
func (r *report) tableRowStart(height float64) (float64, float64) {
	_, pageHeight := r.pdf.GetPageSize()
	if r.pdf.GetY()+height > pageHeight-reportMargin {
		r.pdf.AddPage()
	}
	return r.pdf.GetXY()
}

// rowHeight measures value in the current font.
func (r *report) rowHeight(value string) float64 {
	lines := r.pdf.SplitLines([]byte(r.tr(value)), reportValueWidth-4)
	n := len(lines)
	if n == 0 {
		n = 1
	}
	return float64(n) * reportLineHeight
}

func (r *report) setText(c rgb) { r.pdf.SetTextColor(c.r, c.g, c.b) }
func (r *report) setFill(c rgb) { r.pdf.SetFillColor(c.r, c.g, c.b) }
