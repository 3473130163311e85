package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetProperties retrieves property records matching q.
//
// Records are returned undecoded: upstream shapes are not guaranteed, so
// callers decide how strictly to interpret them (see pkg/property).
func (c *Client) GetProperties(ctx context.Context, q PropertyQuery) ([]any, error) {
	query := url.Values{}
	setIfNotEmpty(query, "address", q.Address)
	setIfNotEmpty(query, "city", q.City)
	setIfNotEmpty(query, "state", q.State)
	setIfNotEmpty(query, "zipCode", q.ZipCode)
	setIfNotEmpty(query, "propertyType", q.PropertyType)
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		query.Set("offset", strconv.Itoa(q.Offset))
	}
	if len(query) == 0 {
		return nil, fmt.Errorf("searching properties: address or area filter is required")
	}

	var records []any
	if err := c.get(ctx, "/properties", query, &records); err != nil {
		return nil, fmt.Errorf("searching properties: %w", err)
	}
	if records == nil {
		records = []any{}
	}
	return records, nil
}

// GetPropertyByAddress is shorthand for an exact address lookup.
func (c *Client) GetPropertyByAddress(ctx context.Context, address string) ([]any, error) {
	return c.GetProperties(ctx, PropertyQuery{Address: address})
}

// GetMarket retrieves sale and rental statistics for a ZIP code.
func (c *Client) GetMarket(ctx context.Context, q MarketQuery) (map[string]any, error) {
	if q.ZipCode == "" {
		return nil, fmt.Errorf("getting market data: zip code is required")
	}
	query := url.Values{}
	query.Set("zipCode", q.ZipCode)
	setIfNotEmpty(query, "dataType", q.DataType)
	if q.HistoryRange > 0 {
		query.Set("historyRange", strconv.Itoa(q.HistoryRange))
	}

	var market map[string]any
	if err := c.get(ctx, "/markets", query, &market); err != nil {
		return nil, fmt.Errorf("getting market data for %q: %w", q.ZipCode, err)
	}
	return market, nil
}

func setIfNotEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
