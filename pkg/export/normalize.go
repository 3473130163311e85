package export

import (
	"fmt"
	"strings"

	"github.com/usestring/propsearch-mcp/pkg/property"
)

// NotAvailable is the placeholder for missing scalar fields.
const NotAvailable = "N/A"

// Variant selects the column set produced by the normalizer.
type Variant int

const (
	// VariantBase is the column set used by the workbook Properties sheet.
	VariantBase Variant = iota
	// VariantTabular adds building feature columns for flat table output.
	VariantTabular
)

// BaseColumns is the fixed column order of the base variant.
var BaseColumns = []string{
	"Address",
	"City",
	"State",
	"ZIP Code",
	"Property Type",
	"Bedrooms",
	"Bathrooms",
	"Square Footage",
	"Lot Size",
	"Year Built",
	"Last Sale Price",
	"Last Sale Date",
	"Owner Occupied",
	"Assessor ID",
	"County",
	"Zoning",
	"Owner Names",
	"Owner Type",
}

// FeatureColumns are appended to BaseColumns by the tabular variant.
var FeatureColumns = []string{
	"Architecture Type",
	"Exterior Type",
	"Heating",
	"Cooling",
	"Garage",
	"Garage Spaces",
}

// Columns returns the column order for a variant.
func (v Variant) Columns() []string {
	if v == VariantTabular {
		cols := make([]string, 0, len(BaseColumns)+len(FeatureColumns))
		cols = append(cols, BaseColumns...)
		return append(cols, FeatureColumns...)
	}
	return BaseColumns
}

// Cell is one column of a normalized row. Value is either a string or a
// float64.
type Cell struct {
	Column string
	Value  any
}

// Row is a normalized record in column order.
type Row []Cell

// Get returns the value of the named column.
func (r Row) Get(column string) (any, bool) {
	for _, c := range r {
		if c.Column == column {
			return c.Value, true
		}
	}
	return nil, false
}

// Strings renders every cell as display text.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = cellText(c.Value)
	}
	return out
}

// Values returns the raw cell values in column order.
func (r Row) Values() []any {
	out := make([]any, len(r))
	for i, c := range r {
		out[i] = c.Value
	}
	return out
}

// SkippedRecord identifies an input record that could not be normalized.
type SkippedRecord struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Normalize converts one loosely-typed record into a row.
func Normalize(record any, variant Variant) (Row, error) {
	rec, err := property.Decode(record)
	if err != nil {
		return nil, err
	}
	return buildRow(rec, record, variant), nil
}

// NormalizeAll normalizes records in order. Records that fail are left out
// of rows and reported in skipped with their input index; one bad record
// never aborts the batch.
func NormalizeAll(records []any, variant Variant) (rows []Row, skipped []SkippedRecord) {
	items, skipped := normalizeRecords(records, variant)
	rows = make([]Row, len(items))
	for i, it := range items {
		rows[i] = it.row
	}
	return rows, skipped
}

// normalized pairs a row with its decoded record and input position.
type normalized struct {
	index  int
	record *property.Record
	row    Row
}

func normalizeRecords(records []any, variant Variant) ([]normalized, []SkippedRecord) {
	items := make([]normalized, 0, len(records))
	var skipped []SkippedRecord
	for i, raw := range records {
		item, err := normalizeOne(raw, variant)
		if err != nil {
			skipped = append(skipped, SkippedRecord{Index: i, Reason: err.Error()})
			continue
		}
		item.index = i
		items = append(items, item)
	}
	return items, skipped
}

func normalizeOne(raw any, variant Variant) (item normalized, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("normalizing record: %v", r)
		}
	}()
	rec, err := property.Decode(raw)
	if err != nil {
		return normalized{}, err
	}
	return normalized{record: rec, row: buildRow(rec, raw, variant)}, nil
}

// buildRow renders rec in column order. Numeric fields that did not decode
// fall back to their upstream text in raw, so "3+" bedrooms stays visible.
func buildRow(rec *property.Record, raw any, variant Variant) Row {
	row := make(Row, 0, len(BaseColumns)+len(FeatureColumns))
	add := func(col string, v any) {
		row = append(row, Cell{Column: col, Value: v})
	}

	add("Address", str(rec.FormattedAddress))
	add("City", str(rec.City))
	add("State", str(rec.State))
	add("ZIP Code", str(rec.ZipCode))
	add("Property Type", str(rec.PropertyType))
	add("Bedrooms", numOr(rec.Bedrooms, raw, "bedrooms"))
	add("Bathrooms", numOr(rec.Bathrooms, raw, "bathrooms"))
	add("Square Footage", numOr(rec.SquareFootage, raw, "squareFootage"))
	add("Lot Size", numOr(rec.LotSize, raw, "lotSize"))
	add("Year Built", numOr(rec.YearBuilt, raw, "yearBuilt"))
	add("Last Sale Price", numOr(rec.LastSalePrice, raw, "lastSalePrice"))
	add("Last Sale Date", str(rec.LastSaleDate))
	add("Owner Occupied", yesNo(rec.OwnerOccupied))
	add("Assessor ID", str(rec.AssessorID))
	add("County", str(rec.County))
	add("Zoning", str(rec.Zoning))

	names := NotAvailable
	if n := rec.OwnerNames(); len(n) > 0 {
		names = strings.Join(n, ", ")
	}
	add("Owner Names", names)
	ownerType := NotAvailable
	if rec.Owner != nil {
		ownerType = str(rec.Owner.Type)
	}
	add("Owner Type", ownerType)

	if variant != VariantTabular {
		return row
	}

	f := rec.Features
	if f == nil {
		f = &property.Features{}
	}
	add("Architecture Type", str(f.ArchitectureType))
	add("Exterior Type", str(f.ExteriorType))
	add("Heating", yesNo(f.Heating))
	add("Cooling", yesNo(f.Cooling))
	add("Garage", yesNo(f.Garage))
	add("Garage Spaces", numOr(f.GarageSpaces, raw, "features", "garageSpaces"))
	return row
}

func str(p *string) string {
	if p == nil {
		return NotAvailable
	}
	return *p
}

func num(p *float64) any {
	if p == nil {
		return NotAvailable
	}
	return *p
}

func numOr(p *float64, raw any, path ...string) any {
	if p != nil {
		return *p
	}
	if text, ok := rawText(raw, path...); ok {
		return text
	}
	return NotAvailable
}

// rawText returns the non-blank string found at path in a loosely-typed
// record.
func rawText(raw any, path ...string) (string, bool) {
	cur := raw
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		cur = m[key]
	}
	s, ok := cur.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func yesNo(p *bool) string {
	if p != nil && *p {
		return "Yes"
	}
	return "No"
}

func cellText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return formatNumber(val)
	}
	return displayValue(v)
}
