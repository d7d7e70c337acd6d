package vdom

import (
	"reflect"
	"slices"
)

// Diff compares old against next. It returns the Patch that turns a surface
// built from old into one built from next, and the registry of handlers
// bound in next. reg is not modified.
//
// The top-level Patch targets the mount container: its changes address the
// container's children and its child patches index into them.
func Diff(reg *Registry, old, next *VNode) (*Patch, *Registry) {
	d := &differ{reg: reg.tick()}
	res := d.diffSiblings(siblings{
		old:  []*VNode{old},
		new:  []*VNode{next},
		path: Root,
	})
	d.reg.sweep()
	return res.patch(0), d.reg
}

type differ struct {
	reg *Registry
}

// siblings is the input for one sibling run.
type siblings struct {
	old, new           []*VNode
	oldKeyed, newKeyed map[string]*VNode
	movedOffset        int
	nodeIndex          int
	oldIndex           int // flattened index of old[0] in the old tree
	path               *Path
	mapper             Mapper
	changes            []Change // already emitted for this run
	children           []*Patch
}

// diffResult holds changes in emission order. Each change is computed
// against a surface on which every change emitted after it has already been
// applied, so a Patch applies them in reverse.
type diffResult struct {
	removed  int
	changes  []Change
	children []*Patch
}

func (r diffResult) patch(index int) *Patch {
	changes := slices.Clone(r.changes)
	slices.Reverse(changes)
	return &Patch{Index: index, Removed: r.removed, Changes: changes, Children: r.children}
}

func (d *differ) diffSiblings(s siblings) diffResult {
	var (
		oldList  = s.old
		newList  = s.new
		front    *VNode // matched node re-queued ahead of oldList
		moved    map[string]struct{}
		offset   = s.movedOffset
		idx      = s.nodeIndex
		at       = s.oldIndex // old index of oldList[0]
		keyedAt  map[string]int
		removed  int
		changes  = s.changes
		children = s.children
	)

	isMoved := func(key string) bool {
		_, ok := moved[key]
		return key != "" && ok
	}
	popOld := func() {
		if front != nil {
			front = nil
		} else {
			at += Advance(oldList[0])
			oldList = oldList[1:]
		}
	}
	// oldAt returns where prev sat in the old tree. Handlers of unkeyed
	// nodes were registered under that index.
	oldAt := func(prev *VNode) int {
		if prev != front {
			return at
		}
		if keyedAt == nil {
			keyedAt = make(map[string]int, len(s.old))
			i := s.oldIndex
			for _, n := range s.old {
				if n.Key != "" {
					keyedAt[n.Key] = i
				}
				i += Advance(n)
			}
		}
		return keyedAt[prev.Key]
	}

	for {
		var prev *VNode
		if front != nil {
			prev = front
		} else if len(oldList) > 0 {
			prev = oldList[0]
		}

		if prev == nil {
			if len(newList) > 0 {
				d.reg.addChildren(s.mapper, s.path, idx, newList)
				changes = append(changes, InsertChange(newList, idx-offset))
			}
			return diffResult{removed: removed, changes: changes, children: children}
		}

		if len(newList) == 0 {
			// Trailing removal. Moved nodes were already accounted for
			// where they were matched.
			for prev != nil {
				if !isMoved(prev.Key) {
					removed += Advance(prev)
					d.reg.removeChild(s.path, oldAt(prev), prev)
				}
				popOld()
				prev = nil
				if front != nil {
					prev = front
				} else if len(oldList) > 0 {
					prev = oldList[0]
				}
			}
			return diffResult{removed: removed, changes: changes, children: children}
		}

		next := newList[0]

		if prev.Key != next.Key {
			match, nextDidExist := lookupKeyed(s.oldKeyed, next.Key)
			_, prevDoesExist := lookupKeyed(s.newKeyed, prev.Key)

			switch {
			case prevDoesExist && nextDidExist && isMoved(prev.Key):
				// Old head was already moved into place earlier.
				offset -= Advance(prev)
				popOld()

			case prevDoesExist && nextDidExist:
				count := Advance(match)
				changes = append(changes, MoveChange(next.Key, idx-offset, count))
				if moved == nil {
					moved = make(map[string]struct{})
				}
				moved[next.Key] = struct{}{}
				offset += count
				front = match

			case nextDidExist:
				// Old head is gone for good; the new head appears later.
				count := Advance(prev)
				if prev.Key == "" {
					changes = append(changes, RemoveChange(idx-offset, count))
				} else {
					changes = append(changes, RemoveKeyChange(prev.Key, count))
				}
				offset -= count
				d.reg.removeChild(s.path, oldAt(prev), prev)
				popOld()

			case prevDoesExist:
				// New head is new; the old head is reused later.
				count := Advance(next)
				d.reg.addChild(s.mapper, s.path, idx, next)
				changes = append(changes, InsertChange([]*VNode{next}, idx-offset))
				offset += count
				idx += count
				newList = newList[1:]

			default:
				changes = d.replace(s, &offset, &idx, changes, prev, next, oldAt(prev), false)
				popOld()
				newList = newList[1:]
			}
			continue
		}

		switch {
		case prev.Kind == KindFragment && next.Kind == KindFragment:
			start := idx + 1
			child := d.diffSiblings(siblings{
				old:         prev.Children,
				new:         next.Children,
				oldKeyed:    prev.KeyedChildren,
				newKeyed:    next.KeyedChildren,
				movedOffset: offset,
				nodeIndex:   start,
				oldIndex:    oldAt(prev) + 1,
				path:        s.path,
				mapper:      composeMapper(s.mapper, next.Mapper),
				children:    children,
			})
			if child.removed > 0 {
				changes = append(changes, RemoveChange(start+next.ChildrenCount-offset, child.removed))
			}
			changes = append(changes, child.changes...)
			children = child.children
			offset += next.ChildrenCount - prev.ChildrenCount
			idx = start + next.ChildrenCount

		case prev.Kind == KindElement && next.Kind == KindElement &&
			prev.Namespace == next.Namespace && prev.Tag == next.Tag:
			d.unregisterShifted(s.path, oldAt(prev), idx, prev)
			mapper := composeMapper(s.mapper, next.Mapper)
			path := s.path.Add(idx, next.Key)
			controlled := d.isControlled(next.Namespace, next.Tag, path)
			added, removedAttrs := d.diffAttributes(controlled, path, mapper, prev.Attrs, next.Attrs)

			var initial []Change
			if len(added) > 0 || len(removedAttrs) > 0 {
				initial = []Change{UpdateChange(added, removedAttrs)}
			}
			child := d.diffSiblings(siblings{
				old:      prev.Children,
				new:      next.Children,
				oldKeyed: prev.KeyedChildren,
				newKeyed: next.KeyedChildren,
				path:     path,
				mapper:   mapper,
				changes:  initial,
			})
			if p := child.patch(idx); !p.IsEmpty() {
				children = append(children, p)
			}
			idx++

		case prev.Kind == KindText && next.Kind == KindText:
			if prev.Text != next.Text {
				children = append(children, &Patch{
					Index:   idx,
					Changes: []Change{ReplaceTextChange(next.Text)},
				})
			}
			idx++

		case prev.Kind == KindRaw && next.Kind == KindRaw &&
			prev.Namespace == next.Namespace && prev.Tag == next.Tag:
			d.unregisterShifted(s.path, oldAt(prev), idx, prev)
			path := s.path.Add(idx, next.Key)
			added, removedAttrs := d.diffAttributes(false, path, composeMapper(s.mapper, next.Mapper), prev.Attrs, next.Attrs)
			var cs []Change
			if prev.InnerHTML != next.InnerHTML {
				cs = append(cs, ReplaceInnerHTMLChange(next.InnerHTML))
			}
			if len(added) > 0 || len(removedAttrs) > 0 {
				cs = append(cs, UpdateChange(added, removedAttrs))
			}
			if len(cs) > 0 {
				children = append(children, &Patch{Index: idx, Changes: cs})
			}
			idx++

		default:
			changes = d.replace(s, &offset, &idx, changes, prev, next, oldAt(prev), prev == front)
		}
		popOld()
		newList = newList[1:]
	}
}

// replace emits the fallback for incompatible nodes. A keyed node that was
// moved earlier in this run is not at from yet when the change applies, so
// it is removed by key and the replacement inserted where the move targets.
func (d *differ) replace(s siblings, offset, idx *int, changes []Change, prev, next *VNode, oldIdx int, relocated bool) []Change {
	prevCount, nextCount := Advance(prev), Advance(next)
	d.reg.removeChild(s.path, oldIdx, prev)
	d.reg.addChild(s.mapper, s.path, *idx, next)

	if relocated {
		changes = append(changes,
			InsertChange([]*VNode{next}, *idx-*offset+prevCount),
			RemoveKeyChange(prev.Key, prevCount),
		)
	} else {
		changes = append(changes, ReplaceChange(*idx-*offset, prevCount, next))
	}
	*offset += nextCount - prevCount
	*idx += nextCount
	return changes
}

// unregisterShifted drops the handlers an unkeyed node registered under its
// old index when it now sits at another one. Handlers still bound in the new
// tree are registered again as the diff walks it.
func (d *differ) unregisterShifted(parent *Path, oldIdx, idx int, prev *VNode) {
	if prev.Key == "" && oldIdx != idx {
		d.reg.removeChild(parent, oldIdx, prev)
	}
}

func lookupKeyed(keyed map[string]*VNode, key string) (*VNode, bool) {
	if key == "" {
		return nil, false
	}
	n, ok := keyed[key]
	return n, ok
}

func (d *differ) isControlled(namespace, tag string, path *Path) bool {
	if namespace != "" {
		return false
	}
	switch tag {
	case "input", "select", "textarea":
		return d.reg.HasDispatchedEvents(path.String())
	}
	return false
}

// diffAttributes merges two canonical attribute lists, registering and
// unregistering event handlers on path as it goes.
func (d *differ) diffAttributes(controlled bool, path *Path, mapper Mapper, old, next []Attribute) (added, removed []Attribute) {
	i, j := 0, 0
	for i < len(old) || j < len(next) {
		switch {
		case j == len(next) || (i < len(old) && old[i].Name < next[j].Name):
			prev := old[i]
			i++
			if prev.Kind == AttrEvent {
				d.reg.removeEvent(path, prev.Name)
			}
			removed = append(removed, prev)

		case i == len(old) || old[i].Name > next[j].Name:
			n := next[j]
			j++
			if n.Kind == AttrEvent {
				d.reg.addEvent(mapper, path, n.Name, n.Handler)
			}
			added = append(added, n)

		default:
			prev, n := old[i], next[j]
			i++
			j++
			switch {
			case prev.Kind == AttrAttribute && n.Kind == AttrAttribute:
				if attributeChanged(controlled, prev, n) {
					added = append(added, n)
				}
			case prev.Kind == AttrProperty && n.Kind == AttrProperty:
				if propertyChanged(controlled, prev, n) {
					added = append(added, n)
				}
			case prev.Kind == AttrEvent && n.Kind == AttrEvent:
				if eventChanged(prev, n) {
					added = append(added, n)
				}
				// Handlers may be new closures even when nothing else changed.
				d.reg.addEvent(mapper, path, n.Name, n.Handler)
			default:
				if prev.Kind == AttrEvent {
					d.reg.removeEvent(path, prev.Name)
				}
				if n.Kind == AttrEvent {
					d.reg.addEvent(mapper, path, n.Name, n.Handler)
				}
				added = append(added, n)
				removed = append(removed, prev)
			}
		}
	}
	return added, removed
}

func isFormState(name string) bool {
	return name == "value" || name == "checked" || name == "selected"
}

func attributeChanged(controlled bool, prev, next Attribute) bool {
	if isFormState(next.Name) {
		return controlled || prev.Value != next.Value
	}
	return prev.Value != next.Value
}

func propertyChanged(controlled bool, prev, next Attribute) bool {
	switch {
	case next.Name == "scrollLeft" || next.Name == "scrollRight":
		return true
	case isFormState(next.Name):
		return controlled || !reflect.DeepEqual(prev.Prop, next.Prop)
	default:
		return !reflect.DeepEqual(prev.Prop, next.Prop)
	}
}

func eventChanged(prev, next Attribute) bool {
	return prev.PreventDefault != next.PreventDefault ||
		prev.StopPropagation != next.StopPropagation ||
		prev.Immediate != next.Immediate ||
		!prev.Limit.Equal(next.Limit) ||
		!slices.Equal(prev.Include, next.Include)
}
