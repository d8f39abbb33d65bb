// Package cache provides a small in-process TTL cache.
package cache

// Cache is a keyed store whose entries may expire or be evicted at any time.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Len() int
}

var _ Cache[struct{}] = (*LRU[struct{}])(nil)
