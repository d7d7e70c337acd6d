// Package seq provides Seq, an immutable indexed sequence.
//
// A Seq is a height-balanced tree annotated with subtree sizes. Every
// operation returns a new Seq sharing all untouched subtrees with the old
// one, so older versions stay valid and cheap to keep. Indexing, update,
// insertion, deletion, Split and Concat are O(log n).
//
// The zero Seq is empty and ready to use.
package seq

import "iter"

type node[T any] struct {
	left, right *node[T]
	value       T
	size        int
	height      int
}

// Seq is a persistent sequence of T.
type Seq[T any] struct {
	root *node[T]
}

// Of returns a sequence holding items in order.
func Of[T any](items ...T) Seq[T] {
	return Seq[T]{root: build(items)}
}

// Initialise returns a sequence of n items where item i is fn(i).
func Initialise[T any](n int, fn func(int) T) Seq[T] {
	if n <= 0 {
		return Seq[T]{}
	}
	items := make([]T, n)
	for i := range items {
		items[i] = fn(i)
	}
	return Of(items...)
}

// Len returns the number of items.
func (s Seq[T]) Len() int { return size(s.root) }

// IsEmpty reports whether s has no items.
func (s Seq[T]) IsEmpty() bool { return s.root == nil }

// Get returns the item at index i.
func (s Seq[T]) Get(i int) (T, bool) {
	t := s.root
	for t != nil {
		ls := size(t.left)
		switch {
		case i < ls:
			t = t.left
		case i == ls:
			return t.value, true
		default:
			i -= ls + 1
			t = t.right
		}
	}
	var zero T
	return zero, false
}

// Set returns s with the item at index i replaced. Out of range indexes
// return s unchanged and false.
func (s Seq[T]) Set(i int, v T) (Seq[T], bool) {
	if i < 0 || i >= s.Len() {
		return s, false
	}
	return Seq[T]{root: set(s.root, i, v)}, true
}

func set[T any](t *node[T], i int, v T) *node[T] {
	ls := size(t.left)
	switch {
	case i < ls:
		return mk(set(t.left, i, v), t.value, t.right)
	case i == ls:
		return mk(t.left, v, t.right)
	default:
		return mk(t.left, t.value, set(t.right, i-ls-1, v))
	}
}

// InsertClamped inserts v before index i. Indexes below zero prepend and
// indexes past the end append.
func (s Seq[T]) InsertClamped(i int, v T) Seq[T] {
	l, r := split(s.root, clamp(i, s.Len()))
	return Seq[T]{root: join(l, v, r)}
}

// Delete removes the item at index i. Out of range indexes return s
// unchanged and false.
func (s Seq[T]) Delete(i int) (Seq[T], bool) {
	if i < 0 || i >= s.Len() {
		return s, false
	}
	l, r := split(s.root, i)
	_, r = split(r, 1)
	return Seq[T]{root: concat(l, r)}, true
}

// TryDelete is Delete without the report.
func (s Seq[T]) TryDelete(i int) Seq[T] {
	out, _ := s.Delete(i)
	return out
}

// Append adds v at the end.
func (s Seq[T]) Append(v T) Seq[T] {
	return Seq[T]{root: join(s.root, v, nil)}
}

// Prepend adds v at the start.
func (s Seq[T]) Prepend(v T) Seq[T] {
	return Seq[T]{root: join(nil, v, s.root)}
}

// Split returns the first i items and the rest. Split points outside the
// sequence put everything on one side.
func (s Seq[T]) Split(i int) (Seq[T], Seq[T]) {
	switch {
	case i <= 0:
		return Seq[T]{}, s
	case i >= s.Len():
		return s, Seq[T]{}
	}
	l, r := split(s.root, i)
	return Seq[T]{root: l}, Seq[T]{root: r}
}

// Concat returns the items of a followed by those of b.
func Concat[T any](a, b Seq[T]) Seq[T] {
	return Seq[T]{root: concat(a.root, b.root)}
}

// Map returns a sequence of the same shape with fn applied to every item.
func Map[T, U any](s Seq[T], fn func(T) U) Seq[U] {
	return Seq[U]{root: mapNode(s.root, fn)}
}

func mapNode[T, U any](t *node[T], fn func(T) U) *node[U] {
	if t == nil {
		return nil
	}
	l := mapNode(t.left, fn)
	v := fn(t.value)
	return &node[U]{left: l, right: mapNode(t.right, fn), value: v, size: t.size, height: t.height}
}

// Fold reduces the items from first to last.
func Fold[T, A any](s Seq[T], acc A, fn func(A, T) A) A {
	for _, v := range s.All() {
		acc = fn(acc, v)
	}
	return acc
}

// FoldRight reduces the items from last to first.
func FoldRight[T, A any](s Seq[T], acc A, fn func(A, T) A) A {
	for _, v := range s.Backward() {
		acc = fn(acc, v)
	}
	return acc
}

// ToSlice copies the items into a new slice.
func (s Seq[T]) ToSlice() []T {
	out := make([]T, 0, s.Len())
	for _, v := range s.All() {
		out = append(out, v)
	}
	return out
}

// Find returns the first item satisfying fn.
func (s Seq[T]) Find(fn func(T) bool) (T, bool) {
	for _, v := range s.All() {
		if fn(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// FindIndex returns the index of the first item satisfying fn, or -1.
func (s Seq[T]) FindIndex(fn func(T) bool) int {
	for i, v := range s.All() {
		if fn(v) {
			return i
		}
	}
	return -1
}

// All yields index and item pairs from first to last.
func (s Seq[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		var stack []*node[T]
		i := 0
		t := s.root
		for t != nil || len(stack) > 0 {
			for t != nil {
				stack = append(stack, t)
				t = t.left
			}
			t = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(i, t.value) {
				return
			}
			i++
			t = t.right
		}
	}
}

// Backward yields index and item pairs from last to first.
func (s Seq[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		var stack []*node[T]
		i := s.Len() - 1
		t := s.root
		for t != nil || len(stack) > 0 {
			for t != nil {
				stack = append(stack, t)
				t = t.right
			}
			t = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(i, t.value) {
				return
			}
			i--
			t = t.left
		}
	}
}

func clamp(i, n int) int {
	return max(0, min(i, n))
}
