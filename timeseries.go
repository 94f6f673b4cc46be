package ringmaster

import (
	"sync"

	"github.com/eapache/queue"
	"github.com/go-json-experiment/json"
)

// Timeseries is a fixed-capacity buffer. Pushing to a full Timeseries first
// drops its oldest item, so Push always succeeds.
// All methods are safe for concurrent use.
type Timeseries[T any] struct {
	mu sync.RWMutex
	// q holds items oldest first.
	q   *queue.Queue
	cap int
}

var (
	_ Buffer[any]      = (*Timeseries[any])(nil)
	_ Peeker[any]      = (*Timeseries[any])(nil)
	_ Capacity         = (*Timeseries[any])(nil)
	_ Snapshotter[any] = (*Timeseries[any])(nil)
)

// NewTimeseries creates an empty time series with the given capacity.
// Panics if capacity <= 0.
func NewTimeseries[T any](capacity int) *Timeseries[T] {
	if capacity <= 0 {
		panic("ringmaster: timeseries capacity must be > 0")
	}
	return &Timeseries[T]{q: queue.New(), cap: capacity}
}

// TimeseriesFrom creates a time series with the given capacity holding items,
// pushed in order. If there are more items than capacity, only the newest
// remain.
func TimeseriesFrom[T any](capacity int, items ...T) *Timeseries[T] {
	t := NewTimeseries[T](capacity)
	for _, v := range items {
		t.pushLocked(v)
	}
	return t
}

// Cap returns the capacity of the time series.
func (t *Timeseries[T]) Cap() int {
	return t.cap
}

// Len returns the number of items in the time series.
func (t *Timeseries[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.q.Length()
}

// IsEmpty reports whether the time series holds no items.
func (t *Timeseries[T]) IsEmpty() bool {
	return t.Len() == 0
}

// Push adds an item as the newest, dropping the oldest if the time series is
// full.
func (t *Timeseries[T]) Push(item T) {
	t.pushEvict(item)
}

// pushEvict pushes item and reports whether the oldest item was dropped.
func (t *Timeseries[T]) pushEvict(item T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pushLocked(item)
}

func (t *Timeseries[T]) pushLocked(item T) bool {
	evict := t.q.Length() >= t.cap
	if evict {
		t.q.Remove()
	}
	t.q.Add(item)
	return evict
}

// Pop removes and returns the oldest item.
func (t *Timeseries[T]) Pop() (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.q.Length() == 0 {
		var zero T
		return zero, false
	}
	// Nil interface values fail the assertion and yield the zero T, which is
	// the same value.
	v, _ := t.q.Peek().(T)
	t.q.Remove()
	return v, true
}

// Peek returns the newest item.
func (t *Timeseries[T]) Peek() (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.q.Length() == 0 {
		var zero T
		return zero, false
	}
	v, _ := t.q.Get(-1).(T)
	return v, true
}

// Snapshot returns a copy of the items, newest first.
func (t *Timeseries[T]) Snapshot() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := t.q.Length()
	if n == 0 {
		return nil
	}
	s := make([]T, 0, n)
	for i := n - 1; i >= 0; i-- {
		v, _ := t.q.Get(i).(T)
		s = append(s, v)
	}
	return s
}

// MarshalJSON encodes a snapshot of the time series as a JSON array, newest
// first.
func (t *Timeseries[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Snapshot())
}
