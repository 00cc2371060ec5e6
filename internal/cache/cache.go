// Package cache memoizes parse results by source content so repeated
// batches skip files that did not change.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"
)

// ComputeKey hashes parts into a cache key. Parts are length-delimited, so
// ("ab", "c") and ("a", "bc") differ.
func ComputeKey(parts ...[]byte) string {
	h := sha256.New()
	var n [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write(p)
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// Memory is a concurrency-safe in-memory cache holding at most a fixed
// number of entries. When full, the oldest entry is evicted.
type Memory[V any] struct {
	mu    sync.Mutex
	limit int
	items map[string]V
	order []string

	hits, misses int
}

// NewMemory returns a cache holding at most limit entries. A limit of zero
// or less means unbounded.
func NewMemory[V any](limit int) *Memory[V] {
	return &Memory[V]{limit: limit, items: make(map[string]V)}
}

// Get returns the value stored under key.
func (m *Memory[V]) Get(key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.items[key]
	if ok {
		m.hits++
	} else {
		m.misses++
	}
	return v, ok
}

// Set stores v under key, evicting the oldest entry when the cache is full.
func (m *Memory[V]) Set(key string, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[key]; !ok {
		if m.limit > 0 && len(m.order) >= m.limit {
			delete(m.items, m.order[0])
			m.order = m.order[1:]
		}
		m.order = append(m.order, key)
	}
	m.items[key] = v
}

// Len returns the number of cached entries.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Stats returns hit and miss counts since creation.
func (m *Memory[V]) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}
