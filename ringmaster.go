// Package ringmaster provides FIFO/LIFO buffers with constant-time operations
// at both ends.
//
// [RingBuffer] is the general container. By default it is backed by an
// index-linked [ring.Ring], which also supports conditional and filtered
// removal in constant time per item; a naive slice-backed deque is available
// as an alternative. [Timeseries] is a fixed-capacity buffer which drops its
// oldest item to make room for new ones.
//
// The interfaces in this package describe the capabilities of each container
// so that callers can swap implementations.
package ringmaster

import "github.com/zephyrtronium/ringmaster/ring"

// Mode selects the end of a buffer that retrievals target.
type Mode = ring.Mode

const (
	FIFO = ring.FIFO
	LIFO = ring.LIFO
)

// Buffer is a container of items.
type Buffer[T any] interface {
	// Push adds an item to the buffer.
	Push(item T)
	// Pop removes and returns an item. The second result is false if the
	// buffer is empty.
	Pop() (T, bool)
	// Len returns the number of items in the buffer.
	Len() int
	// IsEmpty reports whether the buffer holds no items.
	IsEmpty() bool
}

// Moder is a buffer with a switchable retrieval order.
type Moder interface {
	Mode() Mode
	SetMode(Mode)
}

// Peeker is a buffer whose next item can be read without removing it.
type Peeker[T any] interface {
	Peek() (T, bool)
}

// Capacity is a buffer with a fixed capacity.
type Capacity interface {
	Cap() int
}

// Snapshotter is a buffer that can copy out its items.
type Snapshotter[T any] interface {
	Snapshot() []T
}

// CondPopper is a buffer which can pop its next item only if it satisfies a
// predicate.
type CondPopper[T any] interface {
	PopIf(pred func(T) bool) (T, bool)
}

// Purger is a buffer which can remove all items failing a predicate.
type Purger[T any] interface {
	// Purge removes every item for which keep returns false and returns the
	// number removed.
	Purge(keep func(T) bool) int
}
