// Package client provides a Go SDK for the RentCast property data API.
//
// RentCast exposes public-record property data (ownership, assessments,
// taxes, building features) and aggregate market statistics over a small
// REST interface authenticated with an API key.
//
// # Quick Start
//
// Create a client and look up a property:
//
//	c := client.New(client.WithAPIKey(os.Getenv("RENTCAST_API_KEY")))
//	records, err := c.GetPropertyByAddress(ctx, "5500 Grand Lake Dr, San Antonio, TX 78244")
//
// Use custom configuration:
//
//	c := client.New(
//	    client.WithAPIKey(key),
//	    client.WithBaseURL("https://api.rentcast.io/v1"),
//	    client.WithHTTPClient(customHTTPClient),
//	)
//
// # Records
//
// GetProperties returns records as []any exactly as decoded from JSON.
// Field presence varies by county, so decoding into a typed view is left to
// package property, which tolerates missing and loosely-typed fields.
//
// # Area Searches
//
// Leave Address empty and set City/State, ZipCode or PropertyType to search
// an area. Limit and Offset page through the results:
//
//	records, err := c.GetProperties(ctx, client.PropertyQuery{
//	    ZipCode: "78244",
//	    Limit:   50,
//	})
//
// # Market Data
//
//	market, err := c.GetMarket(ctx, client.MarketQuery{ZipCode: "78244", HistoryRange: 6})
//
// # Errors
//
// Non-2xx responses are returned as *APIError carrying the HTTP status and
// the API's error message. A 429 means the plan's monthly quota is spent;
// check with APIError.IsRateLimited.
package client
