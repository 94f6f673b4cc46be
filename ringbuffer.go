package ringmaster

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-json-experiment/json"

	"github.com/zephyrtronium/ringmaster/deque"
	"github.com/zephyrtronium/ringmaster/ring"
)

// Backend selects the storage strategy for a [RingBuffer].
type Backend uint8

const (
	// Intrusive stores items in an index-linked ring.
	Intrusive Backend = iota
	// Naive stores items in a slice-backed deque.
	Naive
)

// ErrUnknownBackend is the error wrapped when parsing an unrecognized backend
// name.
var ErrUnknownBackend = errors.New("unknown backend")

func (b Backend) String() string {
	switch b {
	case Intrusive:
		return "intrusive"
	case Naive:
		return "naive"
	default:
		return fmt.Sprintf("Backend(%d)", uint8(b))
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (b Backend) MarshalText() ([]byte, error) {
	switch b {
	case Intrusive, Naive:
		return []byte(b.String()), nil
	default:
		return nil, fmt.Errorf("%w %d", ErrUnknownBackend, uint8(b))
	}
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (b *Backend) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "intrusive":
		*b = Intrusive
	case "naive":
		*b = Naive
	default:
		return fmt.Errorf("%w %q", ErrUnknownBackend, text)
	}
	return nil
}

// backend is the set of operations a RingBuffer delegates.
type backend[T any] interface {
	Push(T)
	Poll() (T, bool)
	PollIf(func(T) bool) (T, bool)
	Peek() (T, bool)
	Purge(func(T) bool) int
	Len() int
	IsEmpty() bool
	Mode() Mode
	SetMode(Mode)
	Snapshot() []T
}

var (
	_ backend[any] = (*ring.Ring[any])(nil)
	_ backend[any] = (*naive[any])(nil)
)

// RingBuffer is a FIFO or LIFO buffer.
// All methods are safe for concurrent use.
type RingBuffer[T any] struct {
	b    backend[T]
	kind Backend
}

var (
	_ Buffer[any]      = (*RingBuffer[any])(nil)
	_ Moder            = (*RingBuffer[any])(nil)
	_ Peeker[any]      = (*RingBuffer[any])(nil)
	_ Snapshotter[any] = (*RingBuffer[any])(nil)
	_ CondPopper[any]  = (*RingBuffer[any])(nil)
	_ Purger[any]      = (*RingBuffer[any])(nil)
)

type options struct {
	backend Backend
	mode    Mode
}

// Option configures a new RingBuffer.
type Option func(*options)

// WithBackend selects the buffer's backend. The default is [Intrusive].
func WithBackend(b Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithMode sets the buffer's initial mode. The default is [FIFO].
func WithMode(m Mode) Option {
	return func(o *options) { o.mode = m }
}

// New creates an empty buffer.
func New[T any](opts ...Option) *RingBuffer[T] {
	return From[T](nil, opts...)
}

// From creates a buffer holding items, pushed in order.
// Panics if the options name an unknown backend.
func From[T any](items []T, opts ...Option) *RingBuffer[T] {
	var o options
	for _, f := range opts {
		f(&o)
	}
	var b backend[T]
	switch o.backend {
	case Intrusive:
		b = ring.From(items...)
	case Naive:
		b = &naive[T]{d: deque.Of(items...)}
	default:
		panic(fmt.Errorf("ringmaster: %w %d", ErrUnknownBackend, uint8(o.backend)))
	}
	b.SetMode(o.mode)
	return &RingBuffer[T]{b: b, kind: o.backend}
}

// Backend returns the buffer's backend.
func (r *RingBuffer[T]) Backend() Backend {
	return r.kind
}

// Push adds an item to the buffer.
func (r *RingBuffer[T]) Push(item T) {
	r.b.Push(item)
}

// Pop removes and returns the oldest item in FIFO mode or the newest in LIFO
// mode. The second result is false if the buffer is empty.
func (r *RingBuffer[T]) Pop() (T, bool) {
	return r.b.Poll()
}

// PopIf is like Pop, but only removes the item if pred returns true for it.
// pred must not use the buffer.
func (r *RingBuffer[T]) PopIf(pred func(T) bool) (T, bool) {
	return r.b.PollIf(pred)
}

// Peek returns the item Pop would return without removing it.
func (r *RingBuffer[T]) Peek() (T, bool) {
	return r.b.Peek()
}

// Purge removes every item for which keep returns false and returns the
// number removed. The order of the remaining items is unchanged.
// keep must not use the buffer.
func (r *RingBuffer[T]) Purge(keep func(T) bool) int {
	return r.b.Purge(keep)
}

// Len returns the number of items in the buffer.
func (r *RingBuffer[T]) Len() int {
	return r.b.Len()
}

// IsEmpty reports whether the buffer holds no items.
func (r *RingBuffer[T]) IsEmpty() bool {
	return r.b.IsEmpty()
}

// Mode returns the buffer's retrieval mode.
func (r *RingBuffer[T]) Mode() Mode {
	return r.b.Mode()
}

// SetMode sets the buffer's retrieval mode.
func (r *RingBuffer[T]) SetMode(m Mode) {
	r.b.SetMode(m)
}

// Snapshot returns a copy of the buffer's items. The order of the items is
// unspecified.
func (r *RingBuffer[T]) Snapshot() []T {
	return r.b.Snapshot()
}

// MarshalJSON encodes a snapshot of the buffer as a JSON array.
func (r *RingBuffer[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Snapshot())
}

// naive is a backend over a deque under a single lock.
type naive[T any] struct {
	mu   sync.RWMutex
	d    deque.Deque[T]
	mode Mode
}

func (n *naive[T]) Push(item T) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.d = n.d.Append(item)
}

// endLocked returns the item at the mode-selected end.
func (n *naive[T]) endLocked() (T, bool) {
	if n.mode == LIFO {
		return n.d.Back()
	}
	return n.d.Front()
}

func (n *naive[T]) dropLocked() {
	if n.mode == LIFO {
		n.d = n.d.DropEnd(1)
	} else {
		n.d = n.d.DropFront(1)
	}
}

func (n *naive[T]) Poll() (T, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v, ok := n.endLocked()
	if ok {
		n.dropLocked()
	}
	return v, ok
}

func (n *naive[T]) PollIf(pred func(T) bool) (T, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v, ok := n.endLocked()
	if !ok || !pred(v) {
		var zero T
		return zero, false
	}
	n.dropLocked()
	return v, true
}

func (n *naive[T]) Peek() (T, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.endLocked()
}

func (n *naive[T]) Purge(keep func(T) bool) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	var k int
	n.d, k = n.d.Filter(keep)
	return k
}

func (n *naive[T]) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.d.Len()
}

func (n *naive[T]) IsEmpty() bool {
	return n.Len() == 0
}

func (n *naive[T]) Mode() Mode {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.mode
}

func (n *naive[T]) SetMode(m Mode) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mode = m
}

func (n *naive[T]) Snapshot() []T {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.d.Len() == 0 {
		return nil
	}
	return append([]T(nil), n.d.Slice()...)
}
