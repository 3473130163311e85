package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	AddTool(srv, &sdkmcp.Tool{
		Name:        "property_search",
		Description: "Look up property records for an address via RentCast. Returns search_id, properties_found, a preview of the first property and remaining quota. Every search is saved; cached addresses do not use quota. Pass search_id to export_search, search_query or validate_records.",
	}, ToolPropertySearch(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "market_data",
		Description: "Get rental and sale market statistics for a ZIP code. Uses one query of the quota.",
	}, ToolMarketData(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "searches_list",
		Description: "List saved property searches, newest first. filter keeps searches whose address contains every word given; use limit and offset to page.",
	}, ToolSearchesList(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "search_get",
		Description: "Get one stored search with its full property_data (address, results, search_params, search_timestamp).",
	}, ToolSearchGet(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "search_delete",
		Description: "Delete a stored search.",
	}, ToolSearchDelete(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "search_statistics",
		Description: "Count stored and saved searches and report API quota usage.",
	}, ToolSearchStatistics(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "saved_search_create",
		Description: "Save named search criteria for re-running later.",
	}, ToolSavedSearchCreate(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "saved_searches_list",
		Description: "List saved search criteria with their last result counts, newest first.",
	}, ToolSavedSearchesList(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "saved_search_update_results",
		Description: "Record the result count of re-running a saved search.",
	}, ToolSavedSearchUpdateResults(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "export_search",
		Description: "Export a stored search as json (full property_data), csv (flat table), xlsx (workbook with property, tax and search info sheets) or pdf (property report). Optional jq filter selects results first. The file is returned as an embedded resource; set publish=true to also upload it to S3.",
	}, ToolExportSearch(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "export_bulk",
		Description: "Export the results of every search between from and to (YYYY-MM-DD, inclusive, default last 30 days) as one csv or xlsx file. Each row is tagged with its search_id, search_date and search_address.",
	}, ToolExportBulk(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "export_summary",
		Description: "Get the summary (export date, total properties, search address, search date) that xlsx and pdf exports of a search carry.",
	}, ToolExportSummary(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "export_analytics",
		Description: "Summarize recent search activity: totals, average properties per search, searches per day and the top 10 searches by properties found. Also attached as a JSON file.",
	}, ToolExportAnalytics(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "validate_records",
		Description: "Validate a stored search's results against the property record schema (or a supplied JSON Schema). Returns per-record issues and the most common errors.",
	}, ToolValidateRecords(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "search_query",
		Description: "Extract values from a stored search's results with a jq expression, e.g. .lastSalePrice or .features.bedrooms. Returns values, raw_count and the indices of matching records.",
	}, ToolSearchQuery(d))
}
