package ring

import "fmt"

// Check verifies the structural invariants of r.
func Check[T any](r *Ring[T]) error {
	r.rlock()
	defer r.runlock()
	return r.check()
}

// Links returns the prev and next links of each slot, root first.
func Links[T any](r *Ring[T]) [][2]int {
	r.rlock()
	defer r.runlock()
	l := make([][2]int, len(r.slots))
	for i, s := range r.slots {
		l[i] = [2]int{s.prev, s.next}
	}
	return l
}

// SetPrev overwrites the prev link of slot i.
func SetPrev[T any](r *Ring[T], i, prev int) {
	r.lock()
	defer r.unlock()
	r.slots[i].prev = prev
}

func (r *Ring[T]) check() error {
	slots := r.slots
	if len(slots) == 0 {
		if len(r.store) != 0 {
			return fmt.Errorf("zero ring has %d payloads", len(r.store))
		}
		return nil
	}
	items := len(slots) - 1
	if items != len(r.store) {
		return fmt.Errorf("%d item slots but %d payloads", items, len(r.store))
	}
	if items == 0 {
		if slots[0].prev != 0 || slots[0].next != 0 {
			return fmt.Errorf("empty ring has root links %d, %d", slots[0].prev, slots[0].next)
		}
		return nil
	}
	seen := make([]bool, len(r.store))
	for i := 1; i < len(slots); i++ {
		s := slots[i]
		if s.prev < 0 || s.prev >= len(slots) || s.next < 0 || s.next >= len(slots) {
			return fmt.Errorf("slot %d has links %d, %d out of range", i, s.prev, s.next)
		}
		if s.store != i-1 {
			return fmt.Errorf("slot %d references payload %d", i, s.store)
		}
		if seen[s.store] {
			return fmt.Errorf("payload %d referenced twice", s.store)
		}
		seen[s.store] = true
	}
	for i, s := range slots {
		if slots[s.prev].next != i {
			return fmt.Errorf("slot %d: prev %d links next to %d", i, s.prev, slots[s.prev].next)
		}
		if slots[s.next].prev != i {
			return fmt.Errorf("slot %d: next %d links prev to %d", i, s.next, slots[s.next].prev)
		}
	}
	for _, dir := range []string{"next", "prev"} {
		i, n := 0, 0
		for {
			if dir == "next" {
				i = slots[i].next
			} else {
				i = slots[i].prev
			}
			if i == 0 {
				break
			}
			n++
			if n > items {
				return fmt.Errorf("%s chain does not return to root", dir)
			}
		}
		if n != items {
			return fmt.Errorf("%s chain visits %d of %d items", dir, n, items)
		}
	}
	return nil
}
