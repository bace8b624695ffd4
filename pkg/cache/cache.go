// Package cache provides a thread-safe LRU cache for compiled binding
// expressions.
//
// The register pass compiles every directive expression it encounters;
// templates repeat the same expressions across many nodes, so caching by
// source text avoids re-parsing identical bindings.
//
// # Example
//
//	c := cache.New(512)
//	expr, err := c.GetOrCompile("user.name", parser.Parse)
package cache

import (
	"container/list"
	"sync"

	"github.com/anders-frisk/JSBinder/pkg/types"
)

// entry is a cache entry stored in the doubly-linked list.
type entry struct {
	source string
	expr   *types.Expression
}

// Cache is a thread-safe LRU cache for compiled expressions.
// Once the capacity is reached, the least recently accessed entry is
// evicted.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

// New creates a new LRU cache with the given capacity.
// capacity must be > 0; if <= 0, a default of 256 is used.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get retrieves a compiled expression from the cache.
// Returns (expr, true) if found and moves the entry to front (MRU).
func (c *Cache) Get(source string) (*types.Expression, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[source]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*entry).expr, true
}

// Set inserts or replaces an expression in the cache.
// If at capacity, the least recently used entry is evicted first.
func (c *Cache) Set(source string, expr *types.Expression) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[source]; ok {
		el.Value.(*entry).expr = expr
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}

	el := c.ll.PushFront(&entry{source: source, expr: expr})
	c.items[source] = el
}

// GetOrCompile retrieves the expression for source from the cache, or calls
// compile to create it, caches the result, and returns it.
// Compile errors are not cached; a malformed expression fails on every
// lookup.
func (c *Cache) GetOrCompile(source string, compile func(string) (*types.Expression, error)) (*types.Expression, error) {
	if expr, ok := c.Get(source); ok {
		return expr, nil
	}
	expr, err := compile(source)
	if err != nil {
		return nil, err
	}
	c.Set(source, expr)
	return expr, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	c.mu.Lock()
	n := len(c.items)
	c.mu.Unlock()
	return n
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}

// evictLocked removes the least recently used entry.
// Must be called with c.mu held.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).source)
}
