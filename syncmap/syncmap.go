// Package syncmap provides a generic map synchronized with a mutex.
package syncmap

import (
	"cmp"
	"iter"
	"slices"
	"sync"
)

// Map is a regular map but synchronized with a mutex.
type Map[K cmp.Ordered, V any] struct {
	mu sync.Mutex
	m  map[K]V
}

// New returns a new syncmap.
func New[K cmp.Ordered, V any]() *Map[K, V] {
	return &Map[K, V]{
		m: make(map[K]V),
	}
}

// Load returns the value for a key.
func (m *Map[K, V]) Load(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.m[key]
	return v, ok
}

// Store sets the value for a key.
func (m *Map[K, V]) Store(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[key] = value
}

// LoadOrStore returns the existing value for a key if present.
// Otherwise, it stores and returns the result of calling mk.
// The loaded result is true if the value already existed.
// mk is called with the map locked, so it must not use m.
func (m *Map[K, V]) LoadOrStore(key K, mk func() V) (actual V, loaded bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.m[key]; ok {
		return v, true
	}
	v := mk()
	m.m[key] = v
	return v, false
}

// Delete deletes a key.
func (m *Map[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.m, key)
}

// Len returns the number of elements in the map.
func (m *Map[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.m)
}

// All iterates over the elements present when iteration begins, in key order.
// The map is not locked while the loop body runs, so the body may modify it.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(f func(K, V) bool) {
		m.mu.Lock()
		keys := make([]K, 0, len(m.m))
		vals := make(map[K]V, len(m.m))
		for k, v := range m.m {
			keys = append(keys, k)
			vals[k] = v
		}
		m.mu.Unlock()
		slices.Sort(keys)
		for _, k := range keys {
			if !f(k, vals[k]) {
				return
			}
		}
	}
}
