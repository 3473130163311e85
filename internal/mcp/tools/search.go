package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/propsearch-mcp/internal/search"
)

// PropertySearchInput is the input for property_search.
type PropertySearchInput struct {
	Address string `json:"address" jsonschema:"Full property address, e.g. 123 Main St, Austin, TX 78701"`
}

// PropertySearchOutput is the output for property_search.
type PropertySearchOutput struct {
	SearchID        string         `json:"search_id,omitempty"`
	Address         string         `json:"address"`
	PropertiesFound int            `json:"properties_found"`
	FromCache       bool           `json:"from_cache"`
	Preview         map[string]any `json:"preview,omitempty"`
	SaveWarning     string         `json:"save_warning,omitempty"`
	Quota           search.Quota   `json:"quota"`
}

// MarketDataInput is the input for market_data.
type MarketDataInput struct {
	ZipCode string `json:"zip_code" jsonschema:"Five-digit ZIP code"`
}

// MarketDataOutput is the output for market_data.
type MarketDataOutput struct {
	ZipCode string         `json:"zip_code"`
	Market  map[string]any `json:"market,omitempty"`
	Quota   search.Quota   `json:"quota"`
}

// ToolPropertySearch looks up property records for an address.
func ToolPropertySearch(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input PropertySearchInput) (*sdkmcp.CallToolResult, PropertySearchOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input PropertySearchInput) (*sdkmcp.CallToolResult, PropertySearchOutput, error) {
		res, err := d.Search.Search(ctx, d.UserID(), input.Address)
		if err != nil {
			return nil, PropertySearchOutput{}, toolError("property_search", err)
		}

		output := PropertySearchOutput{
			SearchID:        res.SearchID,
			Address:         res.Address,
			PropertiesFound: len(res.Records),
			FromCache:       res.FromCache,
			SaveWarning:     res.SaveWarning,
		}
		if len(res.Records) > 0 {
			output.Preview = previewRecord(res.Records[0])
		}
		if q, err := d.Search.Quota(ctx, d.UserID()); err == nil {
			output.Quota = q
		}

		return nil, output, nil
	}
}

// ToolMarketData returns market statistics for a ZIP code.
func ToolMarketData(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input MarketDataInput) (*sdkmcp.CallToolResult, MarketDataOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input MarketDataInput) (*sdkmcp.CallToolResult, MarketDataOutput, error) {
		if input.ZipCode == "" {
			return nil, MarketDataOutput{}, ErrInvalidInput("zip_code is required")
		}
		market, err := d.Search.Market(ctx, d.UserID(), input.ZipCode)
		if err != nil {
			return nil, MarketDataOutput{}, toolError("market_data", err)
		}

		output := MarketDataOutput{ZipCode: input.ZipCode, Market: market}
		if q, err := d.Search.Quota(ctx, d.UserID()); err == nil {
			output.Quota = q
		}
		return nil, output, nil
	}
}
