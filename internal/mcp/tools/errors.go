package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/usestring/propsearch-mcp/internal/search"
	"github.com/usestring/propsearch-mcp/internal/store"
	"github.com/usestring/propsearch-mcp/pkg/client"
	"github.com/usestring/propsearch-mcp/pkg/export"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeRentCastError = "RENTCAST_ERROR"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeQuotaExceeded = "QUOTA_EXCEEDED"
	ErrCodeExportFailed  = "EXPORT_FAILED"
	ErrCodeTimeout       = "TIMEOUT"
	ErrCodeInternal      = "INTERNAL"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapRentCastError converts a client.APIError or transport error to a coded
// error.
func WrapRentCastError(err error) error {
	if err == nil {
		return nil
	}

	var coded *CodedError

	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			coded = &CodedError{Code: ErrCodeNotFound, Message: apiErr.Message, Cause: err}
		case apiErr.IsRateLimited():
			coded = &CodedError{Code: ErrCodeQuotaExceeded, Message: "RentCast plan limit reached", Cause: err}
		default:
			coded = &CodedError{Code: ErrCodeRentCastError, Message: apiErr.Message, Cause: err}
		}
	case errors.Is(err, client.ErrMissingAPIKey):
		coded = &CodedError{Code: ErrCodeRentCastError, Message: "RENTCAST_API_KEY is not set", Cause: err}
	case isTimeout(err):
		coded = &CodedError{Code: ErrCodeTimeout, Message: "request timed out", Cause: err}
	default:
		coded = &CodedError{Code: ErrCodeRentCastError, Message: err.Error(), Cause: err}
	}

	slog.Warn("RentCast API error",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)

	return coded
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "context deadline exceeded")
}

// toolError maps a failure inside the named tool to a coded error whose
// message names the operation.
func toolError(op string, err error) error {
	if err == nil {
		return nil
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return err
	}

	var apiErr *client.APIError
	var exportErr *export.Error
	var serErr *export.SerializationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return &CodedError{Code: ErrCodeNotFound, Message: op + " failed", Cause: err}
	case errors.Is(err, search.ErrQuotaExceeded):
		return &CodedError{Code: ErrCodeQuotaExceeded, Message: op + " failed", Cause: err}
	case errors.Is(err, search.ErrEmptyAddress):
		return &CodedError{Code: ErrCodeInvalidInput, Message: op + " failed", Cause: err}
	case errors.As(err, &exportErr), errors.As(err, &serErr):
		return &CodedError{Code: ErrCodeExportFailed, Message: op + " failed", Cause: err}
	case errors.As(err, &apiErr), errors.Is(err, client.ErrMissingAPIKey), isTimeout(err):
		return WrapRentCastError(err)
	}

	slog.Error("tool failed",
		slog.String("tool", op),
		slog.String("error", err.Error()),
	)
	return &CodedError{Code: ErrCodeInternal, Message: op + " failed", Cause: err}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &CodedError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
