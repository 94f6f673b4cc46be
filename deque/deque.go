// Package deque provides a slice-backed double-ended queue.
package deque

import "slices"

// Deque is a slice-backed double-ended queue.
// Methods which modify the deque return the new value, similar to the append
// builtin function. The zero value is an empty deque.
type Deque[Elem any] struct {
	el []Elem
	// left is the position of the leftmost valid element in el.
	// left >= len(el) implies the deque is empty.
	left int
}

// Of returns a deque holding ee in order. It does not retain ee.
func Of[Elem any](ee ...Elem) Deque[Elem] {
	return Deque[Elem]{el: slices.Clone(ee)}
}

// Len returns the number of elements in the deque.
func (d Deque[Elem]) Len() int {
	return len(d.el) - d.left
}

// Append adds elements to the end of the deque.
func (d Deque[Elem]) Append(ee ...Elem) Deque[Elem] {
	if d.left > 0 && len(d.el)+len(ee) > cap(d.el) {
		// Reclaim the space freed from the front before the slice grows.
		d = d.compact()
	}
	d.el = append(d.el, ee...)
	return d
}

// Front returns the first element of the deque.
func (d Deque[Elem]) Front() (Elem, bool) {
	if d.Len() == 0 {
		var zero Elem
		return zero, false
	}
	return d.el[d.left], true
}

// Back returns the last element of the deque.
func (d Deque[Elem]) Back() (Elem, bool) {
	if d.Len() == 0 {
		var zero Elem
		return zero, false
	}
	return d.el[len(d.el)-1], true
}

// DropFront removes n elements from the front of the deque.
// If n is negative, there is no change.
// If n is larger than the deque's size, the result is empty.
func (d Deque[Elem]) DropFront(n int) Deque[Elem] {
	if n <= 0 {
		return d
	}
	if n >= d.Len() {
		return d.Reset()
	}
	clear(d.el[d.left : d.left+n])
	d.left += n
	return d
}

// DropEnd removes n elements from the end of the deque.
// If n is negative, there is no change.
// If n is larger than the deque's size, the result is empty.
func (d Deque[Elem]) DropEnd(n int) Deque[Elem] {
	if n <= 0 {
		return d
	}
	if n >= d.Len() {
		return d.Reset()
	}
	clear(d.el[len(d.el)-n:])
	d.el = d.el[:len(d.el)-n]
	return d
}

// Filter removes every element for which keep returns false, preserving the
// order of the rest. The second result is the number of elements removed.
func (d Deque[Elem]) Filter(keep func(Elem) bool) (Deque[Elem], int) {
	n := d.Len()
	s := slices.DeleteFunc(d.Slice(), func(e Elem) bool { return !keep(e) })
	d.el = d.el[:d.left+len(s)]
	return d, n - len(s)
}

// Reset removes all elements from the deque.
func (d Deque[Elem]) Reset() Deque[Elem] {
	clear(d.el)
	d.el = d.el[:0]
	d.left = 0
	return d
}

// Slice returns a view into the deque's memory, front first.
func (d Deque[Elem]) Slice() []Elem {
	return d.el[d.left:]
}

// compact slides the elements to the start of the deque's memory.
func (d Deque[Elem]) compact() Deque[Elem] {
	k := copy(d.el, d.Slice())
	clear(d.el[k:])
	d.el = d.el[:k]
	d.left = 0
	return d
}
