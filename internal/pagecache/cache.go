// Package pagecache holds a small number of most-recently-fetched pages
// keyed by their full PageKey. Because the key includes the filter and
// sort signatures, changing filters produces natural cache misses; no
// explicit invalidation is needed beyond key construction.
package pagecache

import (
	"container/list"
	"context"

	"github.com/wesm/csvpeek/internal/query"
)

// DefaultCapacity is the number of pages kept when none is configured.
const DefaultCapacity = 8

// FetchFunc performs the backend fetch on a cache miss.
type FetchFunc func(ctx context.Context) (*query.Page, error)

type entry struct {
	key  query.PageKey
	page *query.Page
}

// Cache is a fixed-capacity LRU over fetched pages. It is not safe for
// concurrent use; the view state machine is its single consumer and
// issues one fetch at a time.
type Cache struct {
	capacity int
	order    *list.List // front = most recently used
	entries  map[query.PageKey]*list.Element
}

// New creates a cache holding up to capacity pages. Non-positive values
// fall back to DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[query.PageKey]*list.Element),
	}
}

// GetOrFetch returns the cached page for key, or calls fetch and stores
// the result, evicting the least-recently-used page when over capacity.
// Fetch errors are not cached.
func (c *Cache) GetOrFetch(ctx context.Context, key query.PageKey, fetch FetchFunc) (*query.Page, error) {
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*entry).page, nil
	}

	page, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	el := c.order.PushFront(&entry{key: key, page: page})
	c.entries[key] = el

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}

	return page, nil
}

// Len returns the number of cached pages.
func (c *Cache) Len() int { return c.order.Len() }

// Contains reports whether key is cached, without touching recency.
func (c *Cache) Contains(key query.PageKey) bool {
	_, ok := c.entries[key]
	return ok
}
