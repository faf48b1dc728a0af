package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// LRU is a least-recently-used cache bounded by the total size of its
// values. Sizes are supplied by the caller. It is safe for concurrent use.
type LRU[K comparable, V any] struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[K]*list.Element
	evictList *list.List
	onEvict   func(K, V)

	hits   atomic.Int64
	misses atomic.Int64
}

type entry[K comparable, V any] struct {
	key   K
	value V
	size  int64
}

// NewLRU creates a cache holding at most capacity bytes. onEvict, if not
// nil, is called for every value leaving the cache, outside the lock.
func NewLRU[K comparable, V any](capacity int64, onEvict func(K, V)) *LRU[K, V] {
	return &LRU[K, V]{
		capacity:  capacity,
		items:     make(map[K]*list.Element),
		evictList: list.New(),
		onEvict:   onEvict,
	}
}

// Get returns a cached value and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry[K, V]).value, true
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

// Set caches value under key, evicting least recently used entries until
// it fits. A value larger than the capacity is not cached and Set returns
// false. Replacing a key evicts the old value.
func (c *LRU[K, V]) Set(key K, value V, size int64) bool {
	if size > c.capacity {
		return false
	}

	c.mu.Lock()
	var evicted []*entry[K, V]
	if ent, ok := c.items[key]; ok {
		evicted = append(evicted, c.removeElement(ent))
	}
	for c.size+size > c.capacity {
		back := c.evictList.Back()
		if back == nil {
			break
		}
		evicted = append(evicted, c.removeElement(back))
	}
	c.items[key] = c.evictList.PushFront(&entry[K, V]{key: key, value: value, size: size})
	c.size += size
	c.mu.Unlock()

	c.notify(evicted)
	return true
}

// Remove evicts key if present.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	ent, ok := c.items[key]
	var evicted []*entry[K, V]
	if ok {
		evicted = append(evicted, c.removeElement(ent))
	}
	c.mu.Unlock()

	c.notify(evicted)
	return ok
}

// Invalidate removes entries matching the predicate.
func (c *LRU[K, V]) Invalidate(predicate func(key K) bool) {
	c.mu.Lock()
	var toRemove []*list.Element
	for key, element := range c.items {
		if predicate(key) {
			toRemove = append(toRemove, element)
		}
	}
	evicted := make([]*entry[K, V], 0, len(toRemove))
	for _, e := range toRemove {
		evicted = append(evicted, c.removeElement(e))
	}
	c.mu.Unlock()

	c.notify(evicted)
}

// Purge removes every entry.
func (c *LRU[K, V]) Purge() {
	c.Invalidate(func(K) bool { return true })
}

func (c *LRU[K, V]) removeElement(e *list.Element) *entry[K, V] {
	c.evictList.Remove(e)
	kv := e.Value.(*entry[K, V])
	delete(c.items, kv.key)
	c.size -= kv.size
	return kv
}

func (c *LRU[K, V]) notify(evicted []*entry[K, V]) {
	if c.onEvict == nil {
		return
	}
	for _, kv := range evicted {
		c.onEvict(kv.key, kv.value)
	}
}

// Keys returns the cached keys, most recently used first.
func (c *LRU[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.items))
	for e := c.evictList.Front(); e != nil; e = e.Next() {
		keys = append(keys, e.Value.(*entry[K, V]).key)
	}
	return keys
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Size returns the summed size of the cached values.
func (c *LRU[K, V]) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Capacity returns the size limit.
func (c *LRU[K, V]) Capacity() int64 { return c.capacity }

// Stats returns cache statistics.
func (c *LRU[K, V]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
