// Package surface defines the live display tree the reconciler mutates, and
// provides an in-memory implementation of it.
//
// The interfaces follow the shape of a browser DOM closely enough that a
// binding to a real one is a thin adapter: nodes have ordered children,
// attributes, properties and event listeners, and document fragments splice
// their children into the parent on insertion.
package surface

// NodeType identifies the kind of a live node.
type NodeType uint8

const (
	ElementNode  NodeType = 1
	TextNode     NodeType = 3
	FragmentNode NodeType = 11
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case FragmentNode:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// Listener handles an event delivered to a node.
type Listener func(ev *Event)

// Node is a live node.
type Node interface {
	Type() NodeType
	Namespace() string
	Tag() string

	Parent() Node
	ChildCount() int
	// ChildAt returns nil when i is out of range.
	ChildAt(i int) Node
	// IndexOf returns -1 when child is not a child of this node.
	IndexOf(child Node) int
	NextSibling() Node
	// InsertBefore inserts child before ref, or appends when ref is nil.
	// A fragment's children are moved instead of the fragment itself.
	// A child with a parent is detached first.
	InsertBefore(child, ref Node)
	RemoveChild(child Node)

	Attribute(name string) (string, bool)
	// AttributeNames returns names in sorted order.
	AttributeNames() []string
	SetAttribute(name, value string)
	RemoveAttribute(name string)

	Property(name string) any
	SetProperty(name string, value any)

	// Data is the content of a text node.
	Data() string
	SetData(data string)
	InnerHTML() string
	SetInnerHTML(html string)

	// AddEventListener installs the listener for name, replacing any
	// previous one. Passive listeners cannot prevent the default action.
	AddEventListener(name string, passive bool, fn Listener)
	RemoveEventListener(name string)
	// DispatchEvent delivers ev to this node and, if it bubbles, to its
	// ancestors. It reports whether the default action was not prevented.
	DispatchEvent(ev *Event) bool

	Focus()
}

// Document creates nodes and locates mount points.
type Document interface {
	CreateElement(namespace, tag string) Node
	CreateText(data string) Node
	CreateFragment() Node
	// QuerySelector returns nil when nothing matches.
	QuerySelector(selector string) Node
	ActiveElement() Node
}

// Event is an event travelling through the surface.
type Event struct {
	Type    string
	Bubbles bool
	Target  Node
	// CurrentTarget is the node whose listener is running.
	CurrentTarget Node
	// Detail carries custom event data and submitted form data.
	Detail map[string]any
	// Data carries event-specific fields such as key or clientX.
	Data map[string]any

	defaultPrevented   bool
	propagationStopped bool
	passive            bool
}

// PreventDefault cancels the default action unless the running listener
// is passive.
func (e *Event) PreventDefault() {
	if !e.passive {
		e.defaultPrevented = true
	}
}

// DefaultPrevented reports whether PreventDefault took effect.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation stops delivery to further ancestors.
func (e *Event) StopPropagation() { e.propagationStopped = true }

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool { return e.propagationStopped }

// SetPassive marks whether the listener currently running is passive.
// Surface implementations call it before invoking each listener.
func (e *Event) SetPassive(passive bool) { e.passive = passive }

// Fields returns a snapshot of the event as nested maps: type, target,
// detail and every entry of Data.
func (e *Event) Fields() map[string]any {
	f := make(map[string]any, len(e.Data)+3)
	for k, v := range e.Data {
		f[k] = v
	}
	f["type"] = e.Type
	if e.Target != nil {
		f["target"] = NodeFields(e.Target)
	}
	if e.Detail != nil {
		f["detail"] = e.Detail
	}
	return f
}

// NodeFields describes a node the way event payloads expose targets.
func NodeFields(n Node) map[string]any {
	f := map[string]any{
		"tagName": n.Tag(),
	}
	if id, ok := n.Attribute("id"); ok {
		f["id"] = id
	}
	if v := Value(n); v != "" || n.Tag() == "input" || n.Tag() == "textarea" || n.Tag() == "select" {
		f["value"] = v
	}
	if c, ok := n.Property("checked").(bool); ok {
		f["checked"] = c
	}
	return f
}

// Value returns the current value of a form control: the value property
// when set, otherwise the value attribute.
func Value(n Node) string {
	switch v := n.Property("value").(type) {
	case string:
		return v
	case nil:
	default:
		if s, ok := v.(interface{ String() string }); ok {
			return s.String()
		}
	}
	if v, ok := n.Attribute("value"); ok {
		return v
	}
	return ""
}

// Checked reports whether a checkbox or radio is checked, preferring the
// live property over the attribute.
func Checked(n Node) bool {
	if c, ok := n.Property("checked").(bool); ok {
		return c
	}
	_, ok := n.Attribute("checked")
	return ok
}

// FormData collects name/value pairs from the form controls beneath form,
// in document order, the way a browser builds a submission.
func FormData(form Node) [][2]string {
	var out [][2]string
	var walk func(n Node)
	walk = func(n Node) {
		for i := 0; i < n.ChildCount(); i++ {
			c := n.ChildAt(i)
			if c.Type() != ElementNode {
				continue
			}
			if entry, ok := formEntry(c); ok {
				out = append(out, entry)
			}
			walk(c)
		}
	}
	walk(form)
	return out
}

func formEntry(n Node) ([2]string, bool) {
	name, ok := n.Attribute("name")
	if !ok || name == "" {
		return [2]string{}, false
	}
	if _, disabled := n.Attribute("disabled"); disabled {
		return [2]string{}, false
	}
	switch n.Tag() {
	case "input":
		typ, _ := n.Attribute("type")
		switch typ {
		case "checkbox", "radio":
			if !Checked(n) {
				return [2]string{}, false
			}
			v := Value(n)
			if v == "" {
				v = "on"
			}
			return [2]string{name, v}, true
		case "submit", "button", "reset", "file":
			return [2]string{}, false
		}
		return [2]string{name, Value(n)}, true
	case "select", "textarea":
		return [2]string{name, Value(n)}, true
	}
	return [2]string{}, false
}
