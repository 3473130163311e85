package export

import "fmt"

// Summary keys, in display order.
const (
	SummaryExportDate      = "Export Date"
	SummaryTotalProperties = "Total Properties"
	SummarySearchAddress   = "Search Address"
	SummarySearchDate      = "Search Date"
	SummaryError           = "Error"
)

// Summary derives display metadata for a stored search. It accepts either
// {"property_data": {"address", "search_timestamp", "results"}} or a flat
// {"results": [...]}. It never fails: input that is not a mapping (nil
// included) yields the default summary, and a property_data that is not a
// mapping yields only the export date and an Error entry.
func (e *Exporter) Summary(searchData any) (meta Metadata) {
	exportDate := e.now().Format("2006-01-02 15:04:05")

	defer func() {
		if r := recover(); r != nil {
			meta = summaryError(exportDate, fmt.Errorf("%v", r))
		}
	}()

	meta = Metadata{
		{Key: SummaryExportDate, Value: exportDate},
		{Key: SummaryTotalProperties, Value: 0},
		{Key: SummarySearchAddress, Value: NotAvailable},
		{Key: SummarySearchDate, Value: NotAvailable},
	}

	data, ok := searchData.(map[string]any)
	if !ok {
		return meta
	}

	if raw, ok := data["property_data"]; ok {
		pd, ok := raw.(map[string]any)
		if !ok {
			return summaryError(exportDate, fmt.Errorf("property_data is %T, not a mapping", raw))
		}
		if addr, ok := pd["address"]; ok {
			meta = meta.With(SummarySearchAddress, addr)
		}
		if ts, ok := pd["search_timestamp"]; ok {
			meta = meta.With(SummarySearchDate, ts)
		}
		if results, ok := pd["results"].([]any); ok {
			meta = meta.With(SummaryTotalProperties, len(results))
		}
		return meta
	}

	if results, ok := data["results"].([]any); ok {
		meta = meta.With(SummaryTotalProperties, len(results))
	}
	return meta
}

func summaryError(exportDate string, err error) Metadata {
	return Metadata{
		{Key: SummaryExportDate, Value: exportDate},
		{Key: SummaryError, Value: "Could not generate summary: " + err.Error()},
	}
}
