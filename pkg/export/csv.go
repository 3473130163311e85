package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSV renders records as a flat table: one header row in the tabular
// column order, then one row per normalizable record in input order.
func (e *Exporter) CSV(records []any, searchID string) (*Artifact, error) {
	if len(records) == 0 {
		return nil, failed(FormatCSV, ErrEmptyInput)
	}

	rows, skipped := NormalizeAll(records, VariantTabular)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(VariantTabular.Columns()); err != nil {
		return nil, failed(FormatCSV, fmt.Errorf("writing header: %w", err))
	}
	for _, row := range rows {
		if err := w.Write(row.Strings()); err != nil {
			return nil, failed(FormatCSV, fmt.Errorf("writing row: %w", err))
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, failed(FormatCSV, err)
	}

	return e.artifact(FormatCSV, buf.Bytes(), searchID, skipped), nil
}
