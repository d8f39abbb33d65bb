package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"
)

// LRU evicts the least recently used entry beyond maxSize and treats entries
// older than ttl as absent.
type LRU[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	order   *list.List
	now     func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

type entry[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

// Stats counts lookups since creation.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

func NewLRU[T any](maxSize int, ttl time.Duration) *LRU[T] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRU[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

func (c *LRU[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		return zero, false
	}
	e := elem.Value.(*entry[T])
	if !c.now().Before(e.expiresAt) {
		c.remove(elem)
		c.misses.Add(1)
		return zero, false
	}
	c.order.MoveToFront(elem)
	c.hits.Add(1)
	return e.data, true
}

func (c *LRU[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{key: key, data: data, expiresAt: c.now().Add(c.ttl)}
	if elem, ok := c.items[key]; ok {
		elem.Value = e
		c.order.MoveToFront(elem)
		return
	}
	c.items[key] = c.order.PushFront(e)
	if c.order.Len() > c.maxSize {
		c.remove(c.order.Back())
	}
}

func (c *LRU[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

func (c *LRU[T]) remove(elem *list.Element) {
	delete(c.items, elem.Value.(*entry[T]).key)
	c.order.Remove(elem)
}

// CleanExpired drops expired entries and returns how many were removed.
func (c *LRU[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		if !now.Before(elem.Value.(*entry[T]).expiresAt) {
			c.remove(elem)
			removed++
		}
		elem = next
	}
	return removed
}

func (c *LRU[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRU[T]) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Size: c.Len()}
}
