package store

import (
	"strings"
	"unicode"
)

// addressDelimiters separate address tokens.
const addressDelimiters = ",.#/-"

// tokenizeAddress splits an address into lowercase searchable tokens.
func tokenizeAddress(s string) []string {
	s = strings.ToLower(s)
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(addressDelimiters, r) || unicode.IsSpace(r)
	})

	seen := make(map[string]bool, len(tokens))
	result := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			result = append(result, t)
		}
	}
	return result
}
