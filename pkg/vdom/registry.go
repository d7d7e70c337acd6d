package vdom

import "maps"

type handler struct {
	decode Decoder
	mapper Mapper
}

// Registry maps event keys (path plus event name) to decoders and remembers
// which paths dispatched events since the previous diff.
//
// A Registry is never mutated after it is returned. Diff and Handle return
// new values that may share storage with their input.
type Registry struct {
	handlers       map[string]handler
	dispatched     []string
	nextDispatched []string

	// Set while a diff runs. Removals wait in stale until the diff ends so
	// they cannot drop a handler bound earlier in the same diff.
	bound map[string]struct{}
	stale []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: map[string]handler{}}
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.handlers)
}

// Has reports whether a handler is registered for name on path.
func (r *Registry) Has(path, name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.handlers[EventKey(path, name)]
	return ok
}

// Handle records that path dispatched an event and runs the decoder bound
// to name on path. ok is false when nothing is bound or the decoder fails;
// err carries the decoder failure.
func (r *Registry) Handle(path, name string, payload any) (next *Registry, msg any, ok bool, err error) {
	if r == nil {
		r = NewRegistry()
	}
	nd := make([]string, 0, len(r.nextDispatched)+1)
	nd = append(nd, path)
	nd = append(nd, r.nextDispatched...)
	next = &Registry{
		handlers:       r.handlers,
		dispatched:     r.dispatched,
		nextDispatched: nd,
	}

	h, found := r.handlers[EventKey(path, name)]
	if !found {
		return next, nil, false, nil
	}
	msg, err = h.decode(payload)
	if err != nil {
		return next, nil, false, err
	}
	if h.mapper != nil {
		msg = h.mapper(msg)
	}
	return next, msg, true, nil
}

// HasDispatchedEvents reports whether a path at or beneath path dispatched
// an event in the previous generation.
func (r *Registry) HasDispatchedEvents(path string) bool {
	if r == nil {
		return false
	}
	for _, d := range r.dispatched {
		if MatchesPrefix(path, d) {
			return true
		}
	}
	return false
}

// tick rotates the dispatch history and copies the handler table so the
// diff can mutate it in place.
func (r *Registry) tick() *Registry {
	if r == nil {
		r = NewRegistry()
	}
	return &Registry{
		handlers:   maps.Clone(r.handlers),
		dispatched: r.nextDispatched,
		bound:      map[string]struct{}{},
	}
}

// sweep applies the removals recorded during a diff, keeping any key the
// new tree bound again.
func (r *Registry) sweep() {
	for _, key := range r.stale {
		if _, ok := r.bound[key]; !ok {
			delete(r.handlers, key)
		}
	}
	r.bound, r.stale = nil, nil
}

func (r *Registry) addEvent(mapper Mapper, path *Path, name string, decode Decoder) {
	key := path.EventKey(name)
	r.handlers[key] = handler{decode: decode, mapper: mapper}
	if r.bound != nil {
		r.bound[key] = struct{}{}
	}
}

func (r *Registry) removeEvent(path *Path, name string) {
	key := path.EventKey(name)
	if r.bound != nil {
		r.stale = append(r.stale, key)
		return
	}
	delete(r.handlers, key)
}

func (r *Registry) addAttributes(mapper Mapper, path *Path, attrs []Attribute) {
	for _, a := range attrs {
		if a.Kind == AttrEvent {
			r.addEvent(mapper, path, a.Name, a.Handler)
		}
	}
}

func (r *Registry) removeAttributes(path *Path, attrs []Attribute) {
	for _, a := range attrs {
		if a.Kind == AttrEvent {
			r.removeEvent(path, a.Name)
		}
	}
}

// addChildren registers every handler in a sibling run starting at index.
func (r *Registry) addChildren(mapper Mapper, parent *Path, index int, children []*VNode) {
	for _, c := range children {
		r.addChild(mapper, parent, index, c)
		index += Advance(c)
	}
}

func (r *Registry) addChild(mapper Mapper, parent *Path, index int, child *VNode) {
	switch child.Kind {
	case KindElement:
		path := parent.Add(index, child.Key)
		m := composeMapper(mapper, child.Mapper)
		r.addAttributes(m, path, child.Attrs)
		r.addChildren(m, path, 0, child.Children)
	case KindFragment:
		r.addChildren(composeMapper(mapper, child.Mapper), parent, index+1, child.Children)
	case KindRaw:
		r.addAttributes(composeMapper(mapper, child.Mapper), parent.Add(index, child.Key), child.Attrs)
	}
}

func (r *Registry) removeChildren(parent *Path, index int, children []*VNode) {
	for _, c := range children {
		r.removeChild(parent, index, c)
		index += Advance(c)
	}
}

func (r *Registry) removeChild(parent *Path, index int, child *VNode) {
	switch child.Kind {
	case KindElement:
		path := parent.Add(index, child.Key)
		r.removeAttributes(path, child.Attrs)
		r.removeChildren(path, 0, child.Children)
	case KindFragment:
		r.removeChildren(parent, index+1, child.Children)
	case KindRaw:
		r.removeAttributes(parent.Add(index, child.Key), child.Attrs)
	}
}
