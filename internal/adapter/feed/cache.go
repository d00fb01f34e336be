package feed

import (
	"context"
	"sync"

	"github.com/couchcryptid/cap-alert-etl/internal/observability"
)

// CachedFetcher wraps an AlertSource with an in-memory LRU over alert
// documents. Alert detail documents are immutable per identifier, so a hit
// skips the network round-trip on subsequent poll cycles. The feed document
// itself is never cached: it changes on every publish. The cache is
// per-process only; there is no durable deduplication across runs.
type CachedFetcher struct {
	inner   AlertSource
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a fetcher.
func NewCachedFetcher(inner AlertSource, maxEntries int, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedFetcher) FetchFeed(ctx context.Context) (string, error) {
	return c.inner.FetchFeed(ctx)
}

func (c *CachedFetcher) FetchAlert(ctx context.Context, url string) (string, error) {
	if doc, ok := c.cache.get(url); ok {
		c.metrics.FetchCache.WithLabelValues("hit").Inc()
		return doc, nil
	}
	c.metrics.FetchCache.WithLabelValues("miss").Inc()

	doc, err := c.inner.FetchAlert(ctx, url)
	if err != nil {
		return doc, err
	}
	// Only cache non-empty documents so a transiently broken response can be
	// refetched.
	if doc != "" {
		c.cache.put(url, doc)
	}
	return doc, nil
}

// lruCache is a simple thread-safe LRU for alert documents.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value string
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
