package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetProperties     = "Properties"
	SheetTaxAssessments = "Tax Assessments"
	SheetPropertyTaxes  = "Property Taxes"
	SheetSearchInfo     = "Search Info"
)

var (
	taxAssessmentColumns = []string{"Property Index", "Address", "Year", "Total Value", "Land Value", "Improvements"}
	propertyTaxColumns   = []string{"Property Index", "Address", "Year", "Total Tax"}
	searchInfoColumns    = []string{"Field", "Value"}
)

// Excel renders records as a workbook. The Properties sheet is always
// present; the tax sheets appear only when at least one record carries that
// data, and Search Info only when metadata is supplied.
func (e *Exporter) Excel(records []any, meta Metadata, searchID string) (*Artifact, error) {
	if len(records) == 0 {
		return nil, failed(FormatExcel, ErrEmptyInput)
	}

	items, skipped := normalizeRecords(records, VariantBase)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetProperties); err != nil {
		return nil, failed(FormatExcel, err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, failed(FormatExcel, fmt.Errorf("creating header style: %w", err))
	}

	props := make([][]any, len(items))
	for i, it := range items {
		props[i] = it.row.Values()
	}
	if err := writeSheet(f, SheetProperties, VariantBase.Columns(), props, header); err != nil {
		return nil, failed(FormatExcel, err)
	}

	if rows := taxAssessmentRows(items); len(rows) > 0 {
		if err := writeSheet(f, SheetTaxAssessments, taxAssessmentColumns, rows, header); err != nil {
			return nil, failed(FormatExcel, err)
		}
	}
	if rows := propertyTaxRows(items); len(rows) > 0 {
		if err := writeSheet(f, SheetPropertyTaxes, propertyTaxColumns, rows, header); err != nil {
			return nil, failed(FormatExcel, err)
		}
	}
	if len(meta) > 0 {
		rows := make([][]any, len(meta))
		for i, field := range meta {
			rows[i] = []any{field.Key, displayValue(field.Value)}
		}
		if err := writeSheet(f, SheetSearchInfo, searchInfoColumns, rows, header); err != nil {
			return nil, failed(FormatExcel, err)
		}
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, failed(FormatExcel, fmt.Errorf("writing workbook: %w", err))
	}
	return e.artifact(FormatExcel, buf.Bytes(), searchID, skipped), nil
}

func writeSheet(f *excelize.File, sheet string, columns []string, rows [][]any, headerStyle int) error {
	if sheet != SheetProperties {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("creating sheet %q: %w", sheet, err)
		}
	}

	head := make([]any, len(columns))
	for i, c := range columns {
		head[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return fmt.Errorf("writing %q header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("styling %q header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %q row %d: %w", sheet, i+1, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 18)
}

func taxAssessmentRows(items []normalized) [][]any {
	var rows [][]any
	for _, it := range items {
		if !it.record.HasTaxAssessments() {
			continue
		}
		addr := str(it.record.FormattedAddress)
		for _, year := range sortedKeys(it.record.TaxAssessments) {
			a := it.record.TaxAssessments[year]
			rows = append(rows, []any{it.index + 1, addr, year, num(a.Value), num(a.Land), num(a.Improvements)})
		}
	}
	return rows
}

func propertyTaxRows(items []normalized) [][]any {
	var rows [][]any
	for _, it := range items {
		if !it.record.HasPropertyTaxes() {
			continue
		}
		addr := str(it.record.FormattedAddress)
		for _, year := range sortedKeys(it.record.PropertyTaxes) {
			rows = append(rows, []any{it.index + 1, addr, year, num(it.record.PropertyTaxes[year].Total)})
		}
	}
	return rows
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
