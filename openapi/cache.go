package openapi

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is how long a parsed document stays fresh when the
// caller does not choose otherwise.
const DefaultCacheTTL = 5 * time.Minute

// DocumentCache keeps parsed documents keyed by source URL so repeated
// renders do not re-fetch and re-parse on every page view. Stored
// documents are immutable, so a hit needs no synchronization beyond
// the map lookup. Concurrent misses for one URL share a single fetch.
type DocumentCache struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	doc     *Document
	expires time.Time
}

// NewDocumentCache returns a cache with the given time-to-live. A
// non-positive ttl disables storage: every call fetches, though
// concurrent callers still share one fetch.
func NewDocumentCache(ttl time.Duration) *DocumentCache {
	return &DocumentCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// GetOrParse returns the cached document for sourceURL or fetches and
// parses a fresh one. The fetch closure is only invoked on a miss, and
// its failures are never stored.
func (c *DocumentCache) GetOrParse(sourceURL string, fetch func() ([]byte, error)) (*Document, error) {
	if doc, ok := c.lookup(sourceURL); ok {
		return doc, nil
	}
	v, err, _ := c.group.Do(sourceURL, func() (any, error) {
		// A caller that lost the singleflight race finds the winner's
		// entry here instead of fetching again.
		if doc, ok := c.lookup(sourceURL); ok {
			return doc, nil
		}
		data, err := fetch()
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", sourceURL, err)
		}
		doc, err := Parse(data)
		if err != nil {
			return nil, err
		}
		c.store(sourceURL, doc)
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Document), nil
}

// Invalidate drops one entry so the next lookup fetches fresh.
func (c *DocumentCache) Invalidate(sourceURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sourceURL)
}

func (c *DocumentCache) lookup(sourceURL string) (*Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[sourceURL]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expires) {
		delete(c.entries, sourceURL)
		return nil, false
	}
	return e.doc, true
}

func (c *DocumentCache) store(sourceURL string, doc *Document) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sourceURL] = cacheEntry{doc: doc, expires: c.now().Add(c.ttl)}
}
