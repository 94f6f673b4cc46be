package ringmaster

import (
	"time"

	"github.com/zephyrtronium/ringmaster/metrics"
)

// Instrumented is a buffer which records metrics about its operations.
// It supports the optional capabilities of the buffer it wraps; where the
// wrapped buffer lacks one, the corresponding method reports no item or does
// nothing.
type Instrumented[T any] struct {
	b    Buffer[T]
	m    *metrics.Metrics
	name string
}

var _ evicter[any] = (*Timeseries[any])(nil)

var (
	_ Buffer[any]      = (*Instrumented[any])(nil)
	_ Moder            = (*Instrumented[any])(nil)
	_ Peeker[any]      = (*Instrumented[any])(nil)
	_ Snapshotter[any] = (*Instrumented[any])(nil)
	_ CondPopper[any]  = (*Instrumented[any])(nil)
	_ Purger[any]      = (*Instrumented[any])(nil)
)

// Instrument wraps b to record metrics to m labeled with name.
func Instrument[T any](b Buffer[T], m *metrics.Metrics, name string) *Instrumented[T] {
	return &Instrumented[T]{b: b, m: m, name: name}
}

// Unwrap returns the underlying buffer.
func (i *Instrumented[T]) Unwrap() Buffer[T] {
	return i.b
}

func (i *Instrumented[T]) done(op string, start time.Time) {
	i.m.OpLatency.Observe(time.Since(start).Seconds(), i.name, op)
	i.m.Length.Observe(float64(i.b.Len()), i.name)
}

// result records the outcome of a retrieval.
func (i *Instrumented[T]) result(ok bool, hit metrics.Observer) {
	if ok {
		if hit != nil {
			hit.Observe(1, i.name)
		}
		return
	}
	i.m.Missed.Observe(1, i.name)
}

// evicter is a buffer which reports whether a push dropped an item.
type evicter[T any] interface {
	pushEvict(item T) bool
}

// Push adds an item to the buffer. A push that drops an item to make room
// counts as an eviction. For a [Capacity] buffer other than [Timeseries],
// fullness is checked before the push, so the count is approximate under
// concurrent use.
func (i *Instrumented[T]) Push(item T) {
	start := time.Now()
	var evicted bool
	switch b := i.b.(type) {
	case evicter[T]:
		evicted = b.pushEvict(item)
	case Capacity:
		evicted = i.b.Len() >= b.Cap()
		i.b.Push(item)
	default:
		i.b.Push(item)
	}
	i.m.Pushed.Observe(1, i.name)
	if evicted {
		i.m.Evicted.Observe(1, i.name)
	}
	i.done("push", start)
}

func (i *Instrumented[T]) Pop() (T, bool) {
	start := time.Now()
	v, ok := i.b.Pop()
	i.result(ok, i.m.Popped)
	i.done("pop", start)
	return v, ok
}

// PopIf pops an item if pred allows it. If the wrapped buffer is not a
// [CondPopper], the result is always false.
func (i *Instrumented[T]) PopIf(pred func(T) bool) (T, bool) {
	c, ok := i.b.(CondPopper[T])
	if !ok {
		var zero T
		return zero, false
	}
	start := time.Now()
	v, ok := c.PopIf(pred)
	i.result(ok, i.m.Popped)
	i.done("popif", start)
	return v, ok
}

// Peek returns the next item if the wrapped buffer is a [Peeker].
func (i *Instrumented[T]) Peek() (T, bool) {
	p, ok := i.b.(Peeker[T])
	if !ok {
		var zero T
		return zero, false
	}
	start := time.Now()
	v, ok := p.Peek()
	i.result(ok, nil)
	i.done("peek", start)
	return v, ok
}

// Purge removes items failing keep if the wrapped buffer is a [Purger].
func (i *Instrumented[T]) Purge(keep func(T) bool) int {
	p, ok := i.b.(Purger[T])
	if !ok {
		return 0
	}
	start := time.Now()
	n := p.Purge(keep)
	i.m.Purged.Observe(float64(n), i.name)
	i.done("purge", start)
	return n
}

func (i *Instrumented[T]) Len() int {
	return i.b.Len()
}

func (i *Instrumented[T]) IsEmpty() bool {
	return i.b.IsEmpty()
}

// Mode returns the wrapped buffer's mode, or FIFO if it is not a [Moder].
func (i *Instrumented[T]) Mode() Mode {
	if m, ok := i.b.(Moder); ok {
		return m.Mode()
	}
	return FIFO
}

// SetMode sets the wrapped buffer's mode if it is a [Moder].
func (i *Instrumented[T]) SetMode(mode Mode) {
	if m, ok := i.b.(Moder); ok {
		m.SetMode(mode)
	}
}

// Snapshot copies the wrapped buffer's items if it is a [Snapshotter].
func (i *Instrumented[T]) Snapshot() []T {
	if s, ok := i.b.(Snapshotter[T]); ok {
		return s.Snapshot()
	}
	return nil
}
