package vdom

import "strconv"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindFragment VKind = iota // Grouping without wrapper
	KindElement               // <div>, <button>, etc.
	KindText                  // Plain text node
	KindRaw                   // Element with raw inner markup
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindFragment:
		return "Fragment"
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// Mapper transforms messages produced by a nested subtree into messages of
// the enclosing application. A nil Mapper is the identity.
type Mapper func(msg any) any

// VNode is the virtual node. Which fields are meaningful depends on Kind.
// Nodes are treated as immutable once built; use the constructors.
type VNode struct {
	Kind   VKind  // Node type
	Key    string // Reconciliation key ("" = unkeyed)
	Mapper Mapper // Message transform for this subtree

	Namespace string      // Element and Raw; "" is HTML
	Tag       string      // Element and Raw
	Attrs     []Attribute // Element and Raw, canonical order

	Children      []*VNode          // Element and Fragment
	KeyedChildren map[string]*VNode // Element and Fragment
	ChildrenCount int               // Fragment: flattened slot count

	Text      string // Text content
	InnerHTML string // Raw markup

	SelfClosing bool
	Void        bool
}

// KeyedChild pairs a child node with its key. Passing KeyedChild values to
// a builder records them in the parent's keyed index.
type KeyedChild struct {
	Key  string
	Node *VNode
}

// Keyed creates a KeyedChild.
func Keyed(key string, node *VNode) KeyedChild {
	return KeyedChild{Key: key, Node: node}
}

// Element creates an HTML element. Attributes are canonicalised and keyed
// children are indexed.
func Element(tag string, attrs []Attribute, children []*VNode) *VNode {
	return Namespaced("", tag, attrs, children)
}

// Namespaced creates an element in the given namespace.
func Namespaced(namespace, tag string, attrs []Attribute, children []*VNode) *VNode {
	return &VNode{
		Kind:          KindElement,
		Namespace:     namespace,
		Tag:           tag,
		Attrs:         Prepare(attrs),
		Children:      children,
		KeyedChildren: indexKeyed(children),
		Void:          IsVoidElement(tag, namespace),
	}
}

// KeyedElement creates an element whose children are all keyed. Each child
// is re-keyed with ToKeyed so keyed fragments key their whole subtree.
func KeyedElement(tag string, attrs []Attribute, children []KeyedChild) *VNode {
	nodes, keyed := extractKeyed(children)
	return &VNode{
		Kind:          KindElement,
		Tag:           tag,
		Attrs:         Prepare(attrs),
		Children:      nodes,
		KeyedChildren: keyed,
		Void:          IsVoidElement(tag, ""),
	}
}

// ForceVoid returns a copy of an element rendered without a closing tag.
func ForceVoid(n *VNode) *VNode {
	c := *n
	c.Void = true
	return &c
}

// SelfClose returns a copy of an element rendered as <tag />.
func SelfClose(n *VNode) *VNode {
	c := *n
	c.SelfClosing = true
	return &c
}

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// None creates an empty text node. It renders nothing but still occupies a
// slot on the surface.
func None() *VNode {
	return &VNode{Kind: KindText}
}

// Fragment groups children without a wrapper element.
func Fragment(children []*VNode) *VNode {
	return &VNode{
		Kind:          KindFragment,
		Children:      children,
		KeyedChildren: indexKeyed(children),
		ChildrenCount: countSlots(children),
	}
}

// KeyedFragment creates a fragment whose children are all keyed.
func KeyedFragment(children []KeyedChild) *VNode {
	nodes, keyed := extractKeyed(children)
	return &VNode{
		Kind:          KindFragment,
		Children:      nodes,
		KeyedChildren: keyed,
		ChildrenCount: countSlots(nodes),
	}
}

// RawHTML creates an element whose content is the given markup. The markup
// is never diffed, only replaced wholesale.
func RawHTML(namespace, tag string, attrs []Attribute, html string) *VNode {
	return &VNode{
		Kind:      KindRaw,
		Namespace: namespace,
		Tag:       tag,
		Attrs:     Prepare(attrs),
		InnerHTML: html,
	}
}

// Map attaches a message mapper to a node. Messages decoded from events in
// the subtree pass through fn before reaching the application.
func Map(n *VNode, fn Mapper) *VNode {
	c := *n
	c.Mapper = composeMapper(fn, n.Mapper)
	return &c
}

// Advance returns the number of surface slots the node occupies: one for
// every node, plus the flattened children of a fragment.
func Advance(n *VNode) int {
	if n.Kind == KindFragment {
		return 1 + n.ChildrenCount
	}
	return 1
}

// ToKeyed returns a copy of n carrying key. Keying a fragment re-keys its
// descendants: unkeyed fragment children get their children keyed under
// "key::ordinal", keyed children become "key::childKey".
func ToKeyed(key string, n *VNode) *VNode {
	c := *n
	c.Key = key
	if n.Kind == KindFragment {
		c.Children, c.KeyedChildren = setFragmentKey(key, n.Children)
	}
	return &c
}

func setFragmentKey(key string, children []*VNode) ([]*VNode, map[string]*VNode) {
	out := make([]*VNode, len(children))
	var keyed map[string]*VNode
	for i, child := range children {
		switch {
		case child.Kind == KindFragment && child.Key == "":
			c := *child
			c.Children, c.KeyedChildren = setFragmentKey(key+"::"+strconv.Itoa(i), child.Children)
			out[i] = &c
		case child.Key != "":
			k := ToKeyed(key+"::"+child.Key, child)
			if keyed == nil {
				keyed = make(map[string]*VNode)
			}
			keyed[k.Key] = k
			out[i] = k
		default:
			out[i] = child
		}
	}
	return out, keyed
}

func extractKeyed(children []KeyedChild) ([]*VNode, map[string]*VNode) {
	nodes := make([]*VNode, 0, len(children))
	var keyed map[string]*VNode
	for _, kc := range children {
		if kc.Node == nil {
			continue
		}
		n := ToKeyed(kc.Key, kc.Node)
		if kc.Key != "" {
			if keyed == nil {
				keyed = make(map[string]*VNode, len(children))
			}
			keyed[kc.Key] = n
		}
		nodes = append(nodes, n)
	}
	return nodes, keyed
}

func indexKeyed(children []*VNode) map[string]*VNode {
	var keyed map[string]*VNode
	for _, c := range children {
		if c.Key == "" {
			continue
		}
		if keyed == nil {
			keyed = make(map[string]*VNode)
		}
		keyed[c.Key] = c
	}
	return keyed
}

func countSlots(children []*VNode) int {
	n := 0
	for _, c := range children {
		n += Advance(c)
	}
	return n
}

func composeMapper(outer, inner Mapper) Mapper {
	switch {
	case inner == nil:
		return outer
	case outer == nil:
		return inner
	default:
		return func(msg any) any { return outer(inner(msg)) }
	}
}
