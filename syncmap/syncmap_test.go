package syncmap

import (
	"slices"
	"sync"
	"testing"
	"testing/quick"
)

func TestMap_Concurrent(t *testing.T) {
	m := New[int, int]()
	const goroutines = 100
	const operations = 1000

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(base int) {
			defer wg.Done()
			for j := 0; j < operations; j++ {
				key := base + j
				m.Store(key, key*2)
				if v, ok := m.Load(key); !ok || v != key*2 {
					t.Errorf("Concurrent operation failed: key=%d, expected=%d, got=%v", key, key*2, v)
				}
				m.Delete(key)
				if _, ok := m.Load(key); ok {
					t.Errorf("Delete operation failed: key=%d still exists", key)
				}
			}
		}(i * operations)
	}

	for k, v := range m.All() {
		if v != k*2 {
			t.Errorf("Iteration mismatch: key=%d, expected=%d, got=%d", k, k*2, v)
		}
	}

	wg.Wait()
	if m.Len() != 0 {
		t.Errorf("Expected empty map, got %d elements", m.Len())
	}
}

func TestMap_LoadOrStore(t *testing.T) {
	m := New[string, *int]()
	calls := 0
	mk := func() *int {
		calls++
		return new(int)
	}
	a, loaded := m.LoadOrStore("a", mk)
	if loaded {
		t.Errorf("first LoadOrStore reported loaded")
	}
	b, loaded := m.LoadOrStore("a", mk)
	if !loaded {
		t.Errorf("second LoadOrStore reported stored")
	}
	if a != b {
		t.Errorf("LoadOrStore gave different values")
	}
	if calls != 1 {
		t.Errorf("constructor called %d times", calls)
	}

	var wg sync.WaitGroup
	vals := make([]*int, 50)
	wg.Add(len(vals))
	for i := range vals {
		go func() {
			defer wg.Done()
			vals[i], _ = m.LoadOrStore("b", func() *int { return new(int) })
		}()
	}
	wg.Wait()
	for _, v := range vals {
		if v != vals[0] {
			t.Errorf("concurrent LoadOrStore gave different values")
			break
		}
	}
}

func TestMap_All(t *testing.T) {
	m := New[string, int]()

	// Test empty map
	count := 0
	for range m.All() {
		count++
	}
	if count != 0 {
		t.Errorf("Expected 0 elements in empty map, got %d", count)
	}

	for k, v := range map[string]int{"one": 1, "two": 2, "three": 3} {
		m.Store(k, v)
	}

	var keys []string
	for k := range m.All() {
		keys = append(keys, k)
	}
	if want := []string{"one", "three", "two"}; !slices.Equal(keys, want) {
		t.Errorf("Expected keys %v in order, got %v", want, keys)
	}

	// Test early termination
	count = 0
	m.All()(func(k string, v int) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("Expected early termination after 2 elements, got %d", count)
	}

	// The body may modify the map.
	for k := range m.All() {
		m.Delete(k)
		m.Store(k+"!", 0)
	}
	if m.Len() != 3 {
		t.Errorf("Expected 3 elements after modification, got %d", m.Len())
	}
}

func TestMap_All_Quick(t *testing.T) {
	f := func(entries map[string]int) bool {
		m := New[string, int]()
		for k, v := range entries {
			m.Store(k, v)
		}

		seen := make(map[string]int)
		for k, v := range m.All() {
			seen[k] = v
		}

		if len(seen) != len(entries) {
			return false
		}

		for k, v := range entries {
			if seen[k] != v {
				return false
			}
		}

		return true
	}

	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}
