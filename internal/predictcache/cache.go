// Package predictcache coalesces and caches repeated identical inference
// requests. internal/engine.AnalyzePossibilities is a pure, deterministic
// function of its inputs (spec.md §5), so an API server fielding bursts of
// identical polling requests can safely share one computation and its
// result for a short window.
package predictcache

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"turnipmarket/internal/engine"
)

type entry struct {
	results []engine.PredictionResult
	expires time.Time
}

// Cache is a thread-safe, TTL-bounded cache of AnalyzePossibilities
// results, with a singleflight.Group to prevent duplicate concurrent
// computation for the same key.
//
// Entries are keyed by a string digest rather than the raw request fields:
// an observation vector routinely carries math.NaN() sentinels for missing
// slots, and NaN never compares equal to itself, so a Go map keyed directly
// on a struct containing float64 fields would never hit on a repeated
// NaN-bearing request.
type Cache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
}

// New creates a cache whose entries expire after ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Get returns cached results for the given request if present and not
// expired.
func (c *Cache) Get(obs [engine.Slots]float64, firstBuy bool, previousPattern int) ([]engine.PredictionResult, bool) {
	key := keyString(obs, firstBuy, previousPattern)
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.results, true
}

// GetOrCompute returns the cached result for the request, or computes it
// via AnalyzePossibilities, caching the result. Concurrent calls for the
// identical request collapse into a single computation.
func (c *Cache) GetOrCompute(obs [engine.Slots]float64, firstBuy bool, previousPattern int) []engine.PredictionResult {
	key := keyString(obs, firstBuy, previousPattern)

	if results, ok := c.Get(obs, firstBuy, previousPattern); ok {
		return results
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		if results, ok := c.Get(obs, firstBuy, previousPattern); ok {
			return results, nil
		}
		results := engine.AnalyzePossibilities(obs, firstBuy, previousPattern)
		c.put(key, results)
		return results, nil
	})
	return v.([]engine.PredictionResult)
}

func (c *Cache) put(key string, results []engine.PredictionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Periodic eviction: when the cache grows beyond 256 distinct
	// requests, sweep out entries that have already expired.
	if len(c.entries) > 256 {
		now := time.Now()
		for k, e := range c.entries {
			if now.After(e.expires) {
				delete(c.entries, k)
			}
		}
	}

	c.entries[key] = entry{results: results, expires: time.Now().Add(c.ttl)}
}

// Clear removes all cached entries. Returns the number of entries removed.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string]entry)
	return n
}

// keyString renders a request as a stable cache/singleflight key. Bit
// patterns (not %v) are used for the floats so a NaN-filled observation
// vector still produces a deterministic, comparable key.
func keyString(obs [engine.Slots]float64, firstBuy bool, previousPattern int) string {
	var b strings.Builder
	for _, v := range obs {
		fmt.Fprintf(&b, "%x|", math.Float64bits(v))
	}
	fmt.Fprintf(&b, "%t|%d", firstBuy, previousPattern)
	return b.String()
}
