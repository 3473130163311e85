// Package export renders property search results as downloadable files.
//
// Four encodings are supported: raw JSON, a flat CSV table, an XLSX
// workbook, and a printable PDF report. Each export is a pure function of
// the records, optional metadata and an optional search identifier, and
// returns an [Artifact] carrying the bytes, a filename and a media type.
//
// # Quick Start
//
//	ex := export.New()
//	art, err := ex.CSV(records, searchID)
//	if err != nil {
//	    return err
//	}
//	os.WriteFile(art.Filename, art.Data, 0o644)
//
// # Records
//
// Records are loosely-typed values, usually the []any decoded from an API
// response. Each record is decoded with [property.Decode]; a record that is
// not a mapping is left out of tabular, workbook and report output and
// listed in [Artifact.Skipped]. A mistyped field never drops its record:
// missing scalars render as "N/A", missing flags as "No", and numbers that
// do not parse keep their upstream text, so every emitted row has the full
// column set.
//
// # Columns
//
// The base column set is [BaseColumns]. CSV output appends
// [FeatureColumns]. The workbook adds Tax Assessments and Property Taxes
// sheets when any record carries that data, and a Search Info sheet when
// metadata is supplied.
//
// # Errors
//
// CSV, Excel and PDF exports of zero records fail with an [*Error] wrapping
// [ErrEmptyInput]; its message reads "CSV export failed: no search results
// to export". JSON exports of unencodable values fail with an [*Error]
// wrapping a [*SerializationError]. [Exporter.Summary] never fails.
//
// # Filenames
//
// Filenames follow {prefix}_{id}_{yyyyMMdd_HHmmss}.{ext}, where prefix is
// property_report for PDF and property_search otherwise, and id defaults to
// "export". Use [WithClock] to pin the timestamp in tests.
package export
