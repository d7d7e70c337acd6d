package vdom

import (
	"strconv"
	"strings"
)

// Separators used in path strings. They cannot occur in index segments and
// are vanishingly rare in keys, so prefix matching on the rendered form is
// unambiguous.
const (
	IndexSeparator = "\n"
	KeySeparator   = "\t"
	EventSeparator = "\f"
)

type segmentKind uint8

const (
	segRoot segmentKind = iota
	segKey
	segIndex
)

// Path addresses a node from the mount root. The zero value and nil are the
// root. Paths are immutable; Add returns a new child path sharing its parent.
type Path struct {
	kind   segmentKind
	key    string
	index  int
	parent *Path
	str    string
}

// Root is the path of the mount root.
var Root = &Path{}

// Add returns the path of a child at index, or the keyed child when key is
// non-empty. Keyed segments stay stable when siblings move.
func (p *Path) Add(index int, key string) *Path {
	if p == nil {
		p = Root
	}
	var seg, sep string
	child := &Path{parent: p}
	if key != "" {
		child.kind, child.key = segKey, key
		seg, sep = key, KeySeparator
	} else {
		child.kind, child.index = segIndex, index
		seg, sep = strconv.Itoa(index), IndexSeparator
	}
	if p.kind == segRoot {
		child.str = seg
	} else {
		child.str = p.str + sep + seg
	}
	return child
}

// IsRoot reports whether p is the root path.
func (p *Path) IsRoot() bool {
	return p == nil || p.kind == segRoot
}

// Parent returns the parent path; the root is its own parent.
func (p *Path) Parent() *Path {
	if p.IsRoot() {
		return Root
	}
	return p.parent
}

// String renders the path: segments from root to leaf, each key segment
// preceded by "\t" and each index segment by "\n", with the leading
// separator dropped.
func (p *Path) String() string {
	if p == nil {
		return ""
	}
	return p.str
}

// EventKey returns the registry key of the named event on p.
func (p *Path) EventKey(name string) string {
	return EventKey(p.String(), name)
}

// EventKey joins a rendered path and an event name.
func EventKey(path, name string) string {
	if path == "" {
		return name
	}
	return path + EventSeparator + name
}

// PathBuilder accumulates segments from leaf to root, the order in which a
// reconciler discovers them when walking up from an event target.
type PathBuilder struct {
	segments []string
}

// PrependKey adds a key segment above the segments collected so far.
func (b *PathBuilder) PrependKey(key string) {
	b.segments = append(b.segments, key, KeySeparator)
}

// PrependIndex adds an index segment above the segments collected so far.
func (b *PathBuilder) PrependIndex(index int) {
	b.segments = append(b.segments, strconv.Itoa(index), IndexSeparator)
}

// String renders the collected path.
func (b *PathBuilder) String() string {
	if len(b.segments) == 0 {
		return ""
	}
	var sb strings.Builder
	// Segments were appended leaf first as (value, separator) pairs. Walk
	// back from the root, skipping the root's separator.
	for i := len(b.segments) - 1; i > 0; i -= 2 {
		if i != len(b.segments)-1 {
			sb.WriteString(b.segments[i])
		}
		sb.WriteString(b.segments[i-1])
	}
	return sb.String()
}

// MatchesPrefix reports whether candidate is path itself or lies beneath it.
// Matching respects segment boundaries, so "0\n1" does not cover "0\n12".
func MatchesPrefix(path, candidate string) bool {
	if path == "" {
		return true
	}
	if !strings.HasPrefix(candidate, path) {
		return false
	}
	if len(candidate) == len(path) {
		return true
	}
	switch candidate[len(path)] {
	case '\n', '\t', '\f':
		return true
	}
	return false
}
