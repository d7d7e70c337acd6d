// Package reconcile applies patches produced by vdom.Diff to a live
// surface tree, keeps per-node bookkeeping for keyed children and event
// listeners, and turns surface events into dispatches addressed by path.
package reconcile

import (
	"log/slog"
	"strings"
	"time"

	"github.com/vango-dev/plop/pkg/loop"
	"github.com/vango-dev/plop/pkg/surface"
	"github.com/vango-dev/plop/pkg/vdom"
)

// KeyAttribute carries a node's key in server-rendered markup.
const KeyAttribute = "data-plop-key"

// DispatchFunc receives every event that passes a node's limits. payload is
// the *surface.Event itself, or a map of selected fields when remote events
// are enabled.
type DispatchFunc func(payload any, path, name string, immediate bool)

// Env is the environment a Reconciler runs in.
type Env struct {
	// Root is the container the reconciler owns.
	Root surface.Node
	// Document creates new nodes.
	Document surface.Document
	// Scheduler supplies the clock, microtasks and timers.
	Scheduler loop.Scheduler
}

// Reconciler mutates a surface tree to match a stream of patches.
// It is not safe for concurrent use; call it from the scheduler's thread.
type Reconciler struct {
	root     surface.Node
	doc      surface.Document
	sched    loop.Scheduler
	dispatch DispatchFunc
	remote   bool
	offset   int
	logger   *slog.Logger

	meta  map[surface.Node]*metadata
	stack []frame
}

type frame struct {
	node  surface.Node
	patch *vdom.Patch
	top   bool
}

type metadata struct {
	key        string
	keyed      map[string]surface.Node
	handlers   map[string]func(*surface.Event)
	throttles  map[string]*throttle
	debouncers map[string]*debouncer
}

type throttle struct {
	last  time.Time
	delay time.Duration
}

type debouncer struct {
	delay  time.Duration
	cancel func()
}

func (d *debouncer) stop() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithRemoteEvents makes the reconciler dispatch serialisable maps instead
// of live events.
func WithRemoteEvents(on bool) Option {
	return func(r *Reconciler) { r.remote = on }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithOffset sets the number of leading root children the reconciler does
// not own.
func WithOffset(n int) Option {
	return func(r *Reconciler) { r.offset = n }
}

// New creates a Reconciler for env.
func New(env Env, dispatch DispatchFunc, opts ...Option) *Reconciler {
	r := &Reconciler{
		root:     env.Root,
		doc:      env.Document,
		sched:    env.Scheduler,
		dispatch: dispatch,
		logger:   slog.Default(),
		meta:     make(map[surface.Node]*metadata),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.initMeta(r.root, "")
	return r
}

// Root returns the container the reconciler owns.
func (r *Reconciler) Root() surface.Node { return r.root }

// Offset returns the number of unowned leading root children.
func (r *Reconciler) Offset() int { return r.offset }

// SetOffset changes the number of unowned leading root children.
func (r *Reconciler) SetOffset(n int) { r.offset = n }

// Mount creates the live tree for n and appends it to the root.
func (r *Reconciler) Mount(n *vdom.VNode) {
	node := r.create(n)
	r.addKeyedChild(r.root, node)
	r.root.InsertBefore(node, nil)
}

// Push applies p, whose top level addresses the root container. Indices in
// the top-level patch are shifted by the offset.
func (r *Reconciler) Push(p *vdom.Patch) {
	r.stack = append(r.stack, frame{node: r.root, patch: p, top: true})
	r.reconcile()
}

func (r *Reconciler) reconcile() {
	for len(r.stack) > 0 {
		f := r.stack[len(r.stack)-1]
		r.stack = r.stack[:len(r.stack)-1]

		off := 0
		if f.top {
			off = r.offset
		}
		node := f.node
		for _, c := range f.patch.Changes {
			switch c.Op {
			case vdom.OpInsert:
				r.insert(node, c.Nodes, c.Before+off)
			case vdom.OpMove:
				r.move(node, c.Key, c.Before+off, c.Count)
			case vdom.OpRemoveKey:
				r.removeKey(node, c.Key, c.Count)
			case vdom.OpRemove:
				r.remove(node, c.From+off, c.Count)
			case vdom.OpReplace:
				r.replace(node, c.From+off, c.Count, c.Node)
			case vdom.OpReplaceText:
				node.SetData(c.Content)
			case vdom.OpReplaceInnerHTML:
				node.SetInnerHTML(c.Content)
			case vdom.OpUpdate:
				r.update(node, c.Added, c.Removed)
			}
		}
		if f.patch.Removed > 0 {
			r.remove(node, node.ChildCount()-f.patch.Removed, f.patch.Removed)
		}
		for _, child := range f.patch.Children {
			n := node.ChildAt(child.Index + off)
			if n == nil {
				r.logger.Warn("patch addresses missing child",
					"index", child.Index+off,
					"children", node.ChildCount())
				continue
			}
			r.stack = append(r.stack, frame{node: n, patch: child})
		}
	}
}

func (r *Reconciler) insert(parent surface.Node, nodes []*vdom.VNode, before int) {
	frag := r.doc.CreateFragment()
	for _, v := range nodes {
		el := r.create(v)
		r.addKeyedChild(parent, el)
		frag.InsertBefore(el, nil)
	}
	parent.InsertBefore(frag, parent.ChildAt(before))
}

func (r *Reconciler) move(parent surface.Node, key string, before, count int) {
	el := r.keyedChild(parent, key)
	if el == nil {
		r.logger.Debug("move of unknown key", "key", key)
		return
	}
	ref := parent.ChildAt(before)
	for i := 0; i < count && el != nil; i++ {
		next := el.NextSibling()
		parent.InsertBefore(el, ref)
		el = next
	}
}

func (r *Reconciler) removeKey(parent surface.Node, key string, count int) {
	r.removeFrom(parent, r.keyedChild(parent, key), count)
}

func (r *Reconciler) remove(parent surface.Node, from, count int) {
	r.removeFrom(parent, parent.ChildAt(from), count)
}

func (r *Reconciler) removeFrom(parent surface.Node, child surface.Node, count int) {
	pm := r.metaOf(parent)
	for ; count > 0 && child != nil; count-- {
		next := child.NextSibling()
		if key := r.metaOf(child).key; key != "" && pm.keyed[key] == child {
			delete(pm.keyed, key)
		}
		r.release(child)
		parent.RemoveChild(child)
		child = next
	}
}

// release drops bookkeeping for n and its descendants and cancels their
// pending debounced dispatches.
func (r *Reconciler) release(n surface.Node) {
	if m, ok := r.meta[n]; ok {
		for _, d := range m.debouncers {
			d.stop()
		}
		delete(r.meta, n)
	}
	for i := 0; i < n.ChildCount(); i++ {
		r.release(n.ChildAt(i))
	}
}

func (r *Reconciler) replace(parent surface.Node, from, count int, v *vdom.VNode) {
	r.remove(parent, from, count)
	el := r.create(v)
	r.addKeyedChild(parent, el)
	parent.InsertBefore(el, parent.ChildAt(from))
}

func (r *Reconciler) update(node surface.Node, added, removed []vdom.Attribute) {
	m := r.metaOf(node)
	for _, a := range removed {
		if _, ok := m.handlers[a.Name]; ok {
			node.RemoveEventListener(a.Name)
			delete(m.handlers, a.Name)
			delete(m.throttles, a.Name)
			if d, ok := m.debouncers[a.Name]; ok {
				d.stop()
				delete(m.debouncers, a.Name)
			}
			continue
		}
		node.RemoveAttribute(a.Name)
		if h, ok := hooks[a.Name]; ok && h.removed != nil {
			h.removed(r, node)
		}
	}
	for _, a := range added {
		r.createAttribute(node, a)
	}
}

func (r *Reconciler) create(v *vdom.VNode) surface.Node {
	switch v.Kind {
	case vdom.KindElement:
		node := r.doc.CreateElement(v.Namespace, v.Tag)
		r.initMeta(node, v.Key)
		for _, a := range v.Attrs {
			r.createAttribute(node, a)
		}
		r.insert(node, v.Children, 0)
		return node

	case vdom.KindFragment:
		frag := r.doc.CreateFragment()
		head := r.doc.CreateText("")
		r.initMeta(head, v.Key)
		frag.InsertBefore(head, nil)
		for _, c := range v.Children {
			frag.InsertBefore(r.create(c), nil)
		}
		return frag

	case vdom.KindRaw:
		node := r.doc.CreateElement(v.Namespace, v.Tag)
		r.initMeta(node, v.Key)
		for _, a := range v.Attrs {
			r.createAttribute(node, a)
		}
		node.SetInnerHTML(v.InnerHTML)
		return node

	default:
		node := r.doc.CreateText(v.Text)
		r.initMeta(node, v.Key)
		return node
	}
}

func (r *Reconciler) createAttribute(node surface.Node, a vdom.Attribute) {
	switch a.Kind {
	case vdom.AttrAttribute:
		if cur, ok := node.Attribute(a.Name); !ok || cur != a.Value {
			node.SetAttribute(a.Name, a.Value)
		}
		if h, ok := hooks[a.Name]; ok && h.added != nil {
			h.added(r, node, a.Value)
		}

	case vdom.AttrProperty:
		node.SetProperty(a.Name, a.Prop)

	case vdom.AttrEvent:
		m := r.metaOf(node)
		if _, ok := m.handlers[a.Name]; !ok {
			node.AddEventListener(a.Name, !a.PreventDefault, func(ev *surface.Event) {
				r.handleEvent(node, ev)
			})
		}
		r.setLimit(m, a.Name, a.Limit)
		m.handlers[a.Name] = r.eventHandler(node, a)
	}
}

func (r *Reconciler) setLimit(m *metadata, name string, limit vdom.Limit) {
	switch limit.Kind {
	case vdom.LimitThrottle:
		if t, ok := m.throttles[name]; ok {
			t.delay = limit.Delay
		} else {
			m.throttles[name] = &throttle{delay: limit.Delay}
		}
	default:
		delete(m.throttles, name)
	}
	switch limit.Kind {
	case vdom.LimitDebounce:
		if d, ok := m.debouncers[name]; ok {
			d.delay = limit.Delay
		} else {
			m.debouncers[name] = &debouncer{delay: limit.Delay}
		}
	default:
		if d, ok := m.debouncers[name]; ok {
			d.stop()
			delete(m.debouncers, name)
		}
	}
}

func (r *Reconciler) handleEvent(node surface.Node, ev *surface.Event) {
	m, ok := r.meta[node]
	if !ok {
		return
	}
	handler, ok := m.handlers[ev.Type]
	if !ok {
		return
	}
	if ev.Type == "submit" {
		if ev.Detail == nil {
			ev.Detail = make(map[string]any)
		}
		ev.Detail["formData"] = surface.FormData(ev.Target)
	}
	handler(ev)
}

func (r *Reconciler) eventHandler(node surface.Node, a vdom.Attribute) func(*surface.Event) {
	prevent := a.PreventDefault
	stop := a.StopPropagation
	immediate := a.Immediate
	include := a.Include

	return func(ev *surface.Event) {
		if prevent {
			ev.PreventDefault()
		}
		if stop {
			ev.StopPropagation()
		}
		path, ok := r.pathOf(node)
		if !ok {
			r.logger.Debug("event on detached node", "event", ev.Type)
			return
		}
		var payload any = ev
		if r.remote {
			payload = RemoteEvent(ev, include)
		}

		m := r.metaOf(node)
		if t, ok := m.throttles[ev.Type]; ok {
			now := r.sched.Now()
			if now.After(t.last.Add(t.delay)) {
				t.last = now
				r.dispatch(payload, path, ev.Type, immediate)
			} else {
				ev.PreventDefault()
			}
			return
		}
		if d, ok := m.debouncers[ev.Type]; ok {
			d.stop()
			name := ev.Type
			d.cancel = r.sched.AfterFunc(d.delay, func() {
				d.cancel = nil
				r.dispatch(payload, path, name, immediate)
			})
			return
		}
		r.dispatch(payload, path, ev.Type, immediate)
	}
}

// pathOf rebuilds the path of node by walking up to the root.
func (r *Reconciler) pathOf(node surface.Node) (string, bool) {
	var b vdom.PathBuilder
	for n := node; n != r.root; {
		parent := n.Parent()
		if parent == nil {
			return "", false
		}
		if key := r.metaOf(n).key; key != "" {
			b.PrependKey(key)
		} else {
			i := parent.IndexOf(n)
			if parent == r.root {
				i -= r.offset
			}
			b.PrependIndex(i)
		}
		n = parent
	}
	return b.String(), true
}

func (r *Reconciler) initMeta(n surface.Node, key string) *metadata {
	m := &metadata{key: key}
	if n.Type() != surface.TextNode {
		m.keyed = make(map[string]surface.Node)
		m.handlers = make(map[string]func(*surface.Event))
		m.throttles = make(map[string]*throttle)
	}
	m.debouncers = make(map[string]*debouncer)
	r.meta[n] = m
	return m
}

func (r *Reconciler) metaOf(n surface.Node) *metadata {
	if m, ok := r.meta[n]; ok {
		return m
	}
	return r.initMeta(n, "")
}

func (r *Reconciler) addKeyedChild(parent, child surface.Node) {
	if child.Type() == surface.FragmentNode {
		for i := 0; i < child.ChildCount(); i++ {
			r.addKeyedChild(parent, child.ChildAt(i))
		}
		return
	}
	if key := r.metaOf(child).key; key != "" {
		r.metaOf(parent).keyed[key] = child
	}
}

func (r *Reconciler) keyedChild(parent surface.Node, key string) surface.Node {
	if key == "" {
		return nil
	}
	if n, ok := r.metaOf(parent).keyed[key]; ok {
		return n
	}
	return nil
}

// RemoteEvent copies the dotted paths in include out of ev's fields into
// a fresh nested map. Input and change events always carry target.value;
// submit events always carry detail.formData.
func RemoteEvent(ev *surface.Event, include []string) map[string]any {
	paths := append([]string(nil), include...)
	switch ev.Type {
	case "input", "change":
		paths = append(paths, "target.value")
	case "submit":
		paths = append(paths, "detail.formData")
	}

	src := ev.Fields()
	out := make(map[string]any)
	for _, p := range paths {
		copyPath(src, out, strings.Split(p, "."))
	}
	return out
}

func copyPath(in, out map[string]any, segs []string) {
	for i, seg := range segs {
		v, ok := in[seg]
		if !ok {
			return
		}
		if i == len(segs)-1 {
			out[seg] = v
			return
		}
		next, ok := v.(map[string]any)
		if !ok {
			return
		}
		sub, ok := out[seg].(map[string]any)
		if !ok {
			sub = make(map[string]any)
			out[seg] = sub
		}
		in, out = next, sub
	}
}
