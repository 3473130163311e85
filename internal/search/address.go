package search

// UnknownAddress is returned when a search document names no address.
const UnknownAddress = "Unknown Address"

// SearchAddress extracts the searched address from a search document. It
// accepts either the property data itself or a full stored search, and falls
// back to the first result's formatted address.
func SearchAddress(searchData map[string]any) string {
	if searchData == nil {
		return UnknownAddress
	}
	if addr, ok := searchData["address"]; ok {
		if s, ok := addr.(string); ok {
			return s
		}
		return UnknownAddress
	}
	if pd, ok := searchData["property_data"].(map[string]any); ok {
		if _, ok := pd["address"]; ok {
			return SearchAddress(pd)
		}
	}
	if results, ok := searchData["results"].([]any); ok && len(results) > 0 {
		if first, ok := results[0].(map[string]any); ok {
			if s, ok := first["formattedAddress"].(string); ok {
				return s
			}
		}
	}
	return UnknownAddress
}

// PropertyResults extracts the result list from a search document, accepting
// the same shapes as SearchAddress. Anything else yields an empty list.
func PropertyResults(searchData map[string]any) []any {
	if searchData == nil {
		return []any{}
	}
	if raw, ok := searchData["results"]; ok {
		if results, ok := raw.([]any); ok {
			return results
		}
		return []any{}
	}
	if pd, ok := searchData["property_data"].(map[string]any); ok {
		return PropertyResults(pd)
	}
	return []any{}
}
