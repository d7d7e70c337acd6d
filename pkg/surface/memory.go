package surface

import (
	"slices"
	"strings"
)

// MemoryDocument is an in-memory Document. Its body element is the natural
// mount point. It is not safe for concurrent use.
type MemoryDocument struct {
	body   *memNode
	active *memNode
}

// NewDocument returns an empty document with a body element.
func NewDocument() *MemoryDocument {
	d := &MemoryDocument{}
	d.body = d.newNode(ElementNode, "", "body")
	return d
}

// Body returns the document body.
func (d *MemoryDocument) Body() Node { return d.body }

// CreateElement implements Document.
func (d *MemoryDocument) CreateElement(namespace, tag string) Node {
	return d.newNode(ElementNode, namespace, tag)
}

// CreateText implements Document.
func (d *MemoryDocument) CreateText(data string) Node {
	n := d.newNode(TextNode, "", "")
	n.data = data
	return n
}

// CreateFragment implements Document.
func (d *MemoryDocument) CreateFragment() Node {
	return d.newNode(FragmentNode, "", "")
}

// ActiveElement implements Document.
func (d *MemoryDocument) ActiveElement() Node {
	if d.active == nil {
		return nil
	}
	return d.active
}

// QuerySelector implements Document. It supports a single simple selector:
// "#id", ".class", "tag", or "[name]" / "[name=value]".
func (d *MemoryDocument) QuerySelector(selector string) Node {
	match := compileSelector(selector)
	if match == nil {
		return nil
	}
	if found := d.body.find(match); found != nil {
		return found
	}
	return nil
}

func (d *MemoryDocument) newNode(t NodeType, ns, tag string) *memNode {
	return &memNode{doc: d, typ: t, ns: ns, tag: tag}
}

type listener struct {
	fn      Listener
	passive bool
}

type memNode struct {
	doc       *MemoryDocument
	typ       NodeType
	ns        string
	tag       string
	data      string
	innerHTML string
	attrs     map[string]string
	props     map[string]any
	listeners map[string]listener
	parent    *memNode
	children  []*memNode
}

func (n *memNode) Type() NodeType    { return n.typ }
func (n *memNode) Namespace() string { return n.ns }
func (n *memNode) Tag() string       { return n.tag }

func (n *memNode) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *memNode) ChildCount() int { return len(n.children) }

func (n *memNode) ChildAt(i int) Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

func (n *memNode) IndexOf(child Node) int {
	c, ok := child.(*memNode)
	if !ok {
		return -1
	}
	return slices.Index(n.children, c)
}

func (n *memNode) NextSibling() Node {
	if n.parent == nil {
		return nil
	}
	i := slices.Index(n.parent.children, n)
	if i < 0 || i+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[i+1]
}

func (n *memNode) InsertBefore(child, ref Node) {
	c := child.(*memNode)
	var r *memNode
	if ref != nil {
		r = ref.(*memNode)
	}
	if c == r {
		return
	}
	if c.typ == FragmentNode {
		moved := c.children
		c.children = nil
		for _, m := range moved {
			m.parent = nil
			n.insert(m, r)
		}
		return
	}
	if c.parent != nil {
		c.parent.detach(c)
	}
	n.insert(c, r)
}

func (n *memNode) insert(c, ref *memNode) {
	c.parent = n
	at := len(n.children)
	if ref != nil {
		if i := slices.Index(n.children, ref); i >= 0 {
			at = i
		}
	}
	n.children = slices.Insert(n.children, at, c)
}

func (n *memNode) detach(c *memNode) {
	if i := slices.Index(n.children, c); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
	}
	c.parent = nil
}

func (n *memNode) RemoveChild(child Node) {
	c := child.(*memNode)
	if c.parent == n {
		n.detach(c)
	}
}

func (n *memNode) Attribute(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

func (n *memNode) AttributeNames() []string {
	names := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

func (n *memNode) SetAttribute(name, value string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[name] = value
}

func (n *memNode) RemoveAttribute(name string) {
	delete(n.attrs, name)
}

func (n *memNode) Property(name string) any {
	return n.props[name]
}

func (n *memNode) SetProperty(name string, value any) {
	if n.props == nil {
		n.props = make(map[string]any)
	}
	n.props[name] = value
}

func (n *memNode) Data() string        { return n.data }
func (n *memNode) SetData(data string) { n.data = data }
func (n *memNode) InnerHTML() string   { return n.innerHTML }

func (n *memNode) SetInnerHTML(html string) {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
	n.innerHTML = html
}

func (n *memNode) AddEventListener(name string, passive bool, fn Listener) {
	if n.listeners == nil {
		n.listeners = make(map[string]listener)
	}
	n.listeners[name] = listener{fn: fn, passive: passive}
}

func (n *memNode) RemoveEventListener(name string) {
	delete(n.listeners, name)
}

func (n *memNode) DispatchEvent(ev *Event) bool {
	ev.Target = n
	for cur := n; cur != nil; cur = cur.parent {
		if l, ok := cur.listeners[ev.Type]; ok {
			ev.CurrentTarget = cur
			ev.SetPassive(l.passive)
			l.fn(ev)
			ev.SetPassive(false)
		}
		if ev.propagationStopped || !ev.Bubbles {
			break
		}
	}
	ev.CurrentTarget = nil
	return !ev.defaultPrevented
}

func (n *memNode) Focus() {
	if n.typ == ElementNode {
		n.doc.active = n
	}
}

// HasListener reports whether n has a listener for name. n must come from
// a MemoryDocument.
func HasListener(n Node, name string) bool {
	m, ok := n.(*memNode)
	if !ok {
		return false
	}
	_, ok = m.listeners[name]
	return ok
}

func (n *memNode) find(match func(*memNode) bool) *memNode {
	for _, c := range n.children {
		if c.typ != ElementNode {
			continue
		}
		if match(c) {
			return c
		}
		if found := c.find(match); found != nil {
			return found
		}
	}
	return nil
}

func compileSelector(sel string) func(*memNode) bool {
	sel = strings.TrimSpace(sel)
	switch {
	case sel == "":
		return nil
	case strings.HasPrefix(sel, "#"):
		id := sel[1:]
		return func(n *memNode) bool { return n.attrs["id"] == id && id != "" }
	case strings.HasPrefix(sel, "."):
		class := sel[1:]
		return func(n *memNode) bool {
			return slices.Contains(strings.Fields(n.attrs["class"]), class)
		}
	case strings.HasPrefix(sel, "[") && strings.HasSuffix(sel, "]"):
		name, value, hasValue := strings.Cut(sel[1:len(sel)-1], "=")
		value = strings.Trim(value, `"'`)
		return func(n *memNode) bool {
			v, ok := n.attrs[name]
			return ok && (!hasValue || v == value)
		}
	default:
		return func(n *memNode) bool { return n.tag == sel }
	}
}
