// Package tpool provides a generic, type-safe sync.Pool wrapper.
package tpool

import "sync"

// Pool is a type-safe wrapper around a [sync.Pool].
// The zero value is a pool with no New function, so Get may return the zero
// value of T. Use [New] to obtain a pool which always produces values.
type Pool[T any] sync.Pool

// New returns a pool which calls mk when it has nothing to hand out.
func New[T any](mk func() T) *Pool[T] {
	return &Pool[T]{New: func() any { return mk() }}
}

// Get pulls a value from the pool.
// If the pool is empty and has no New function, or New returns something
// other than a T, the result is the zero value of T.
func (p *Pool[T]) Get() T {
	r, _ := (*sync.Pool)(p).Get().(T)
	return r
}

// Put returns a value to the pool.
func (p *Pool[T]) Put(e T) {
	(*sync.Pool)(p).Put(e)
}
