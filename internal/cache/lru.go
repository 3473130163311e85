// Package cache provides caching utilities for the MCP server.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/usestring/propsearch-mcp/pkg/property"
)

// Lookup is a cached property search response.
type Lookup struct {
	Address   string
	Records   []any
	FetchedAt time.Time
}

// LookupCache provides thread-safe LRU caching of property lookups keyed by
// normalized address. Entries expire after the configured TTL so owner and
// sale changes eventually show up.
type LookupCache struct {
	cache *expirable.LRU[string, *Lookup]
}

// NewLookupCache creates a cache holding at most maxItems lookups for ttl.
// A zero ttl keeps entries until they are evicted by size.
func NewLookupCache(maxItems int, ttl time.Duration) *LookupCache {
	if maxItems <= 0 {
		maxItems = 1
	}
	return &LookupCache{cache: expirable.NewLRU[string, *Lookup](maxItems, nil, ttl)}
}

// Get retrieves the lookup for an address.
// Returns the lookup and true if found, nil and false otherwise.
func (c *LookupCache) Get(address string) (*Lookup, bool) {
	return c.cache.Get(property.NormalizeAddress(address))
}

// Put adds or updates the lookup for its address.
func (c *LookupCache) Put(lookup *Lookup) {
	c.cache.Add(property.NormalizeAddress(lookup.Address), lookup)
}

// Len returns the current number of items in the cache.
func (c *LookupCache) Len() int {
	return c.cache.Len()
}
