package export

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when a tabular, workbook or report export is
// requested for zero records.
var ErrEmptyInput = errors.New("no search results to export")

// Error reports a failed export. The message names the format so callers
// can surface it to users as a single line.
type Error struct {
	Format Format
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s export failed: %v", e.Format.Label(), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// SerializationError reports a value the JSON exporter could not encode,
// even after replacing unsupported leaves with their string form.
type SerializationError struct {
	Cause error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("value is not serializable: %v", e.Cause)
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}

func failed(format Format, err error) error {
	return &Error{Format: format, Err: err}
}
