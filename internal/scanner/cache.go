package scanner

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 8192

// itemCache es una caché LRU acotada por item ID con semántica insert-once:
// el primer valor guardado para un item no se sobreescribe.
type itemCache[V any] struct {
	lru *lru.Cache[int, V]
}

func newItemCache[V any](size int) *itemCache[V] {
	if size <= 0 {
		size = defaultCacheSize
	}
	c, err := lru.New[int, V](size)
	if err != nil {
		// lru.New only fails on size <= 0, handled above.
		panic(err)
	}
	return &itemCache[V]{lru: c}
}

func (c *itemCache[V]) get(id int) (V, bool) {
	return c.lru.Get(id)
}

// putIfAbsent stores v unless the item already has a value, and returns the
// value that ends up associated with the item.
func (c *itemCache[V]) putIfAbsent(id int, v V) V {
	if present, _ := c.lru.ContainsOrAdd(id, v); present {
		if existing, ok := c.lru.Peek(id); ok {
			return existing
		}
	}
	return v
}

// getOrCompute returns the cached value or computes and stores it once.
func (c *itemCache[V]) getOrCompute(id int, compute func() V) V {
	if v, ok := c.lru.Get(id); ok {
		return v
	}
	return c.putIfAbsent(id, compute())
}

func (c *itemCache[V]) len() int {
	return c.lru.Len()
}
