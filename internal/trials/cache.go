// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trials

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/pdiddy/clinibridge/pkg/types"
)

// Cache deduplicates identical searches for the cache TTL. It is a bounded
// LRU with time-based expiry owned by the Searcher; entries are idempotent
// re-derivations of upstream data, so concurrent writes for one key are
// last-write-wins.
type Cache struct {
	lru *expirable.LRU[string, []types.TrialSummary]
}

// NewCache returns a cache bounded to size entries with the given TTL.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{lru: expirable.NewLRU[string, []types.TrialSummary](size, nil, ttl)}
}

// Get returns the cached trial list for key, if present and unexpired.
func (c *Cache) Get(key string) ([]types.TrialSummary, bool) {
	return c.lru.Get(key)
}

// Set stores the trial list under key.
func (c *Cache) Set(key string, ts []types.TrialSummary) {
	c.lru.Add(key, ts)
}

// cacheKey builds an order-independent, case-normalized key from the
// condition terms and location. Two searches differing only in synonym
// order or casing share an entry.
func cacheKey(condition string, synonyms []string, location string) string {
	terms := make([]string, 0, len(synonyms)+1)
	for _, t := range append([]string{condition}, synonyms...) {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			terms = append(terms, t)
		}
	}
	sort.Strings(terms)

	key, _ := json.Marshal(struct {
		Terms    []string `json:"terms"`
		Location string   `json:"location"`
	}{
		Terms:    terms,
		Location: strings.ToLower(strings.TrimSpace(location)),
	})
	return string(key)
}
