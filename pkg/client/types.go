package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingAPIKey is returned when a request is attempted without a key.
var ErrMissingAPIKey = errors.New("RentCast API key is not configured")

// PropertyQuery selects property records. Address alone returns the single
// matching parcel; the other fields search an area.
type PropertyQuery struct {
	Address      string
	City         string
	State        string
	ZipCode      string
	PropertyType string
	Limit        int
	Offset       int
}

// MarketQuery selects aggregate market statistics for a ZIP code.
type MarketQuery struct {
	ZipCode string
	// DataType is "All", "Sale" or "Rental". Empty means "All".
	DataType string
	// HistoryRange is the number of months of history to include.
	HistoryRange int
}

// APIError represents an error response from the RentCast API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("RentCast API error %d: %s", e.StatusCode, e.Message)
}

// IsRateLimited reports whether the API refused the call for exceeding the
// plan's request quota.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// errorResponse is the JSON structure for API errors.
type errorResponse struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}
