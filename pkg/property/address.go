package property

import "strings"

// NormalizeAddress produces a canonical form of an address key: upper case,
// commas removed, whitespace collapsed.
func NormalizeAddress(addr string) string {
	addr = strings.ToUpper(strings.TrimSpace(addr))
	addr = strings.ReplaceAll(addr, ",", "")
	return strings.Join(strings.Fields(addr), " ")
}
