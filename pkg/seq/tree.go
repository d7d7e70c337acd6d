package seq

func size[T any](t *node[T]) int {
	if t == nil {
		return 0
	}
	return t.size
}

func height[T any](t *node[T]) int {
	if t == nil {
		return 0
	}
	return t.height
}

func mk[T any](l *node[T], v T, r *node[T]) *node[T] {
	return &node[T]{
		left:   l,
		right:  r,
		value:  v,
		size:   size(l) + size(r) + 1,
		height: max(height(l), height(r)) + 1,
	}
}

func build[T any](items []T) *node[T] {
	if len(items) == 0 {
		return nil
	}
	mid := len(items) / 2
	return mk(build(items[:mid]), items[mid], build(items[mid+1:]))
}

// balance builds l-v-r when the heights of l and r differ by at most two.
func balance[T any](l *node[T], v T, r *node[T]) *node[T] {
	hl, hr := height(l), height(r)
	switch {
	case hl > hr+1:
		if height(l.left) >= height(l.right) {
			return mk(l.left, l.value, mk(l.right, v, r))
		}
		lr := l.right
		return mk(mk(l.left, l.value, lr.left), lr.value, mk(lr.right, v, r))
	case hr > hl+1:
		if height(r.right) >= height(r.left) {
			return mk(mk(l, v, r.left), r.value, r.right)
		}
		rl := r.left
		return mk(mk(l, v, rl.left), rl.value, mk(rl.right, r.value, r.right))
	default:
		return mk(l, v, r)
	}
}

// join builds a balanced tree holding l, then v, then r, whatever their
// relative heights.
func join[T any](l *node[T], v T, r *node[T]) *node[T] {
	hl, hr := height(l), height(r)
	switch {
	case hl > hr+1:
		return balance(l.left, l.value, join(l.right, v, r))
	case hr > hl+1:
		return balance(join(l, v, r.left), r.value, r.right)
	default:
		return mk(l, v, r)
	}
}

// split returns the first i items of t and the rest.
func split[T any](t *node[T], i int) (*node[T], *node[T]) {
	if t == nil {
		return nil, nil
	}
	ls := size(t.left)
	if i <= ls {
		l, r := split(t.left, i)
		return l, join(r, t.value, t.right)
	}
	l, r := split(t.right, i-ls-1)
	return join(t.left, t.value, l), r
}

func concat[T any](l, r *node[T]) *node[T] {
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	rest, last := popLast(l)
	return join(rest, last, r)
}

func popLast[T any](t *node[T]) (*node[T], T) {
	if t.right == nil {
		return t.left, t.value
	}
	rest, last := popLast(t.right)
	return join(t.left, t.value, rest), last
}
