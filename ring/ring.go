// Package ring provides a double-ended container backed by flat slices.
//
// A [Ring] keeps its items in a circular doubly-linked list whose links are
// indices into a slot table rather than pointers. Slot 0 is a sentinel root:
// its next link names the newest item and its prev link names the oldest.
// Every other slot holds one item's links and the index of its payload in a
// separate storage slice. Removing the item in any slot costs O(1): the last
// slot is moved into the vacancy and its neighbors are relinked to follow it.
//
// Slot positions are not stable across removals, so nothing outside the ring
// ever sees them.
package ring

import (
	"iter"
	"sync"
)

// slot is an entry of the slot table.
// Slot 0 is the root; its store field is unused.
type slot struct {
	prev, next int
	// store is the index of the slot's payload in the storage slice.
	// The payload of slot i is always at i-1.
	store int
}

// Ring is a double-ended container with O(1) push and O(1) removal at either
// end. All methods are safe for concurrent use.
// The zero value is an empty FIFO ring. A Ring must not be copied after first
// use.
type Ring[T any] struct {
	// storeMu guards store. It is always acquired before slotMu.
	storeMu sync.RWMutex
	store   []T

	// slotMu guards slots and mode.
	slotMu sync.RWMutex
	// slots is the slot table. It is empty only for the zero Ring, which is
	// treated identically to a table holding only the root.
	slots []slot
	mode  Mode
}

// New returns an empty FIFO ring.
func New[T any]() *Ring[T] {
	return &Ring[T]{slots: []slot{{}}}
}

// From returns a FIFO ring holding items, pushed in order.
func From[T any](items ...T) *Ring[T] {
	r := &Ring[T]{
		store: make([]T, 0, len(items)),
		slots: make([]slot, 1, len(items)+1),
	}
	for _, v := range items {
		r.pushLocked(v)
	}
	return r
}

// Collect returns a FIFO ring holding the elements of seq, pushed in order.
func Collect[T any](seq iter.Seq[T]) *Ring[T] {
	r := New[T]()
	for v := range seq {
		r.pushLocked(v)
	}
	return r
}

// lock acquires both write locks in order.
func (r *Ring[T]) lock() {
	r.storeMu.Lock()
	r.slotMu.Lock()
}

func (r *Ring[T]) unlock() {
	r.slotMu.Unlock()
	r.storeMu.Unlock()
}

// rlock acquires both read locks in order.
func (r *Ring[T]) rlock() {
	r.storeMu.RLock()
	r.slotMu.RLock()
}

func (r *Ring[T]) runlock() {
	r.slotMu.RUnlock()
	r.storeMu.RUnlock()
}

// Len returns the number of items in the ring.
func (r *Ring[T]) Len() int {
	r.slotMu.RLock()
	defer r.slotMu.RUnlock()
	return max(len(r.slots)-1, 0)
}

// IsEmpty reports whether the ring holds no items.
func (r *Ring[T]) IsEmpty() bool {
	r.slotMu.RLock()
	defer r.slotMu.RUnlock()
	return len(r.slots) <= 1
}

// Mode returns the ring's current retrieval mode.
func (r *Ring[T]) Mode() Mode {
	r.slotMu.RLock()
	defer r.slotMu.RUnlock()
	return r.mode
}

// SetMode sets the end that subsequent retrievals target.
// It never changes the ring's contents.
func (r *Ring[T]) SetMode(m Mode) {
	r.slotMu.Lock()
	defer r.slotMu.Unlock()
	r.mode = m
}

// Push adds an item as the newest in the ring.
func (r *Ring[T]) Push(item T) {
	r.lock()
	defer r.unlock()
	r.pushLocked(item)
}

// pushLocked implements Push. Both write locks must be held.
func (r *Ring[T]) pushLocked(item T) {
	if len(r.slots) == 0 {
		r.slots = append(r.slots, slot{})
	}
	r.store = append(r.store, item)
	k := len(r.slots)
	if k == 1 {
		// A single item is both the oldest and the newest.
		r.slots = append(r.slots, slot{prev: 0, next: 0, store: 0})
		r.slots[0] = slot{prev: k, next: k}
		return
	}
	h := r.slots[0].next
	r.slots = append(r.slots, slot{prev: 0, next: h, store: len(r.store) - 1})
	r.slots[h].prev = k
	r.slots[0].next = k
}

// endLocked returns the slot position that retrievals currently target,
// or 0 if the ring is empty. The slot lock must be held.
func (r *Ring[T]) endLocked() int {
	if len(r.slots) <= 1 {
		return 0
	}
	if r.mode == LIFO {
		return r.slots[0].next
	}
	return r.slots[0].prev
}

// removeLocked removes the item at slot position pos and returns its payload.
// Both write locks must be held.
func (r *Ring[T]) removeLocked(pos int) (T, bool) {
	var zero T
	n := len(r.slots)
	if n <= 1 {
		return zero, false
	}
	if pos <= 0 || pos >= n {
		panic("ring: remove at invalid slot position")
	}
	if n == 2 {
		item := r.store[0]
		r.store[0] = zero
		r.store = r.store[:0]
		r.slots = r.slots[:1]
		r.slots[0] = slot{}
		return item, true
	}
	s := r.slots[pos]
	item := r.store[s.store]
	// Link the removed slot's neighbors to each other.
	r.slots[s.next].prev = s.prev
	r.slots[s.prev].next = s.next
	last := n - 1
	if pos != last {
		// Move the last slot into pos. Its neighbors must follow it.
		m := r.slots[last]
		r.slots[m.prev].next = pos
		r.slots[m.next].prev = pos
		// The payload moves with its slot.
		r.store[s.store] = r.store[m.store]
		m.store = s.store
		r.slots[pos] = m
	}
	r.slots[last] = slot{}
	r.slots = r.slots[:last]
	r.store[len(r.store)-1] = zero
	r.store = r.store[:len(r.store)-1]
	return item, true
}

// Poll removes and returns the item at the end selected by the ring's mode.
// The second result is false if the ring is empty.
func (r *Ring[T]) Poll() (T, bool) {
	r.lock()
	defer r.unlock()
	return r.removeLocked(r.endLocked())
}

// PollIf removes and returns the item at the end selected by the ring's mode
// if pred reports true for it. Only that one item is examined.
// The second result is false if the ring is empty or pred rejects the item,
// in which case the ring is unchanged.
func (r *Ring[T]) PollIf(pred func(T) bool) (T, bool) {
	r.lock()
	defer r.unlock()
	pos := r.endLocked()
	if pos == 0 || !pred(r.store[r.slots[pos].store]) {
		var zero T
		return zero, false
	}
	return r.removeLocked(pos)
}

// Peek returns the item at the end selected by the ring's mode without
// removing it.
func (r *Ring[T]) Peek() (T, bool) {
	return PeekFunc(r, func(v T) (T, bool) { return v, true })
}

// PeekFunc applies f to the item at the end of r selected by its mode, without
// removing it. The second result is false if r is empty or f reports false.
// f runs while r is locked for reading, so it must not modify r.
func PeekFunc[T, R any](r *Ring[T], f func(T) (R, bool)) (R, bool) {
	r.rlock()
	defer r.runlock()
	pos := r.endLocked()
	if pos == 0 {
		var zero R
		return zero, false
	}
	return f(r.store[r.slots[pos].store])
}

// Purge removes every item for which keep reports false and returns the
// number of items removed. Surviving items keep their retrieval order.
// keep runs while r is locked, so it must not use r.
func (r *Ring[T]) Purge(keep func(T) bool) int {
	r.lock()
	defer r.unlock()
	n := 0
	for i := 0; i < len(r.store); {
		if keep(r.store[i]) {
			i++
			continue
		}
		// Removing the slot moves the last payload into i, so examine i again.
		r.removeLocked(i + 1)
		n++
	}
	return n
}

// Reset removes all items from the ring. The mode is unchanged.
func (r *Ring[T]) Reset() {
	r.lock()
	defer r.unlock()
	clear(r.store)
	r.store = r.store[:0]
	r.slots = append(r.slots[:0], slot{})
}

// Fold combines every item in r, oldest first, into an accumulated value.
func Fold[T, R any](r *Ring[T], seed R, f func(R, T) R) R {
	r.rlock()
	defer r.runlock()
	if len(r.slots) <= 1 {
		return seed
	}
	acc := seed
	n := 0
	for i := r.slots[0].prev; i != 0; i = r.slots[i].prev {
		// A walk longer than the item count means the links are corrupt.
		n++
		if n >= len(r.slots) {
			panic("ring: prev chain does not return to root")
		}
		acc = f(acc, r.store[r.slots[i].store])
	}
	return acc
}

// FoldFast combines every item in r into an accumulated value in storage
// order, which is unrelated to retrieval order. It is cheaper than [Fold] and
// gives the same result when f is commutative.
func FoldFast[T, R any](r *Ring[T], seed R, f func(R, T) R) R {
	r.storeMu.RLock()
	defer r.storeMu.RUnlock()
	acc := seed
	for _, v := range r.store {
		acc = f(acc, v)
	}
	return acc
}

// Snapshot returns a copy of the items in storage order.
func (r *Ring[T]) Snapshot() []T {
	r.storeMu.RLock()
	defer r.storeMu.RUnlock()
	if len(r.store) == 0 {
		return nil
	}
	return append([]T(nil), r.store...)
}

// Ordered returns a copy of the items in the order successive polls would
// return them under the ring's current mode.
func (r *Ring[T]) Ordered() []T {
	r.rlock()
	defer r.runlock()
	if len(r.slots) <= 1 {
		return nil
	}
	s := make([]T, 0, len(r.slots)-1)
	i := r.endLocked()
	for range len(r.slots) - 1 {
		s = append(s, r.store[r.slots[i].store])
		if r.mode == LIFO {
			i = r.slots[i].next
		} else {
			i = r.slots[i].prev
		}
	}
	if i != 0 {
		panic("ring: chain does not return to root")
	}
	return s
}

// All iterates over a copy of the items in retrieval order.
// The ring is not locked while the loop body runs.
func (r *Ring[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range r.Ordered() {
			if !yield(v) {
				return
			}
		}
	}
}
