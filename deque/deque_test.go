package deque_test

import (
	"slices"
	"testing"

	"github.com/zephyrtronium/ringmaster/deque"
)

func TestDeque(t *testing.T) {
	cases := []struct {
		name  string
		start []int
		front int
		end   int
		add   []int
		want  []int
	}{
		{
			name:  "empty",
			start: nil,
			want:  nil,
		},
		{
			name:  "append",
			start: nil,
			add:   []int{1, 2},
			want:  []int{1, 2},
		},
		{
			name:  "front",
			start: []int{1, 2, 3},
			front: 1,
			want:  []int{2, 3},
		},
		{
			name:  "end",
			start: []int{1, 2, 3},
			end:   2,
			want:  []int{1},
		},
		{
			name:  "both",
			start: []int{1, 2, 3, 4},
			front: 1,
			end:   1,
			add:   []int{5},
			want:  []int{2, 3, 5},
		},
		{
			name:  "drain",
			start: []int{1, 2},
			front: 5,
			add:   []int{3},
			want:  []int{3},
		},
		{
			name:  "negative",
			start: []int{1, 2},
			front: -1,
			end:   -1,
			want:  []int{1, 2},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			d := deque.Of(c.start...)
			invariants := func() {
				t.Helper()
				if d.Len() != len(d.Slice()) {
					t.Errorf("lens disagree: d.Len gave %d, len(d.Slice) gave %d", d.Len(), len(d.Slice()))
				}
			}
			invariants()
			d = d.DropFront(c.front)
			invariants()
			d = d.DropEnd(c.end)
			invariants()
			d = d.Append(c.add...)
			invariants()
			if !slices.Equal(d.Slice(), c.want) {
				t.Errorf("wrong result: want %v, got %v", c.want, d.Slice())
			}
		})
	}
}

func TestEnds(t *testing.T) {
	var d deque.Deque[string]
	if _, ok := d.Front(); ok {
		t.Errorf("front of empty deque")
	}
	if _, ok := d.Back(); ok {
		t.Errorf("back of empty deque")
	}
	d = d.Append("a", "b", "c")
	if v, ok := d.Front(); !ok || v != "a" {
		t.Errorf("wrong front: want a, got %q", v)
	}
	if v, ok := d.Back(); !ok || v != "c" {
		t.Errorf("wrong back: want c, got %q", v)
	}
	d = d.DropFront(1).DropEnd(1)
	if v, _ := d.Front(); v != "b" {
		t.Errorf("wrong front after drops: want b, got %q", v)
	}
	if v, _ := d.Back(); v != "b" {
		t.Errorf("wrong back after drops: want b, got %q", v)
	}
}

func TestFilter(t *testing.T) {
	cases := []struct {
		name  string
		start []int
		drop  int
		want  []int
		gone  int
	}{
		{
			name:  "empty",
			start: nil,
			want:  nil,
			gone:  0,
		},
		{
			name:  "none",
			start: []int{2, 4},
			want:  []int{2, 4},
			gone:  0,
		},
		{
			name:  "some",
			start: []int{1, 2, 3, 4, 5},
			want:  []int{2, 4},
			gone:  3,
		},
		{
			name:  "dropped",
			start: []int{2, 1, 4, 3, 6},
			drop:  1,
			want:  []int{4, 6},
			gone:  2,
		},
		{
			name:  "all",
			start: []int{1, 3},
			want:  nil,
			gone:  2,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := deque.Of(c.start...).DropFront(c.drop)
			d, n := d.Filter(func(x int) bool { return x%2 == 0 })
			if n != c.gone {
				t.Errorf("wrong removed count: want %d, got %d", c.gone, n)
			}
			if !slices.Equal(d.Slice(), c.want) {
				t.Errorf("wrong result: want %v, got %v", c.want, d.Slice())
			}
		})
	}
}

func TestAppendReclaims(t *testing.T) {
	d := deque.Of(make([]int, 8)...)
	d = d.DropFront(7)
	c := cap(d.Slice()) + 7
	for i := range 7 {
		d = d.Append(i)
	}
	// The appends fit in the space freed from the front.
	if got := cap(d.Slice()); got > c {
		t.Errorf("deque grew: cap %d > %d", got, c)
	}
	if want := []int{0, 0, 1, 2, 3, 4, 5, 6}; !slices.Equal(d.Slice(), want) {
		t.Errorf("wrong result: want %v, got %v", want, d.Slice())
	}
}
