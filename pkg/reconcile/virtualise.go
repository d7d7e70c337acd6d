package reconcile

import (
	"github.com/vango-dev/plop/pkg/surface"
	"github.com/vango-dev/plop/pkg/vdom"
)

var inputElements = map[string]bool{"input": true, "select": true, "textarea": true}

// Virtualise reads the markup already under the root and returns the
// virtual tree that describes it, adopting the live nodes so that the next
// patch applies in place. Key attributes are consumed. Unsupported nodes
// are removed.
//
// An empty root gets an empty text node and virtualises to vdom.None. A
// root with several children gets an empty head text node and virtualises
// to a fragment. Children before the offset are left alone.
func (r *Reconciler) Virtualise() *vdom.VNode {
	children := r.virtualiseChildren(r.root, r.offset)
	switch len(children) {
	case 0:
		empty := r.doc.CreateText("")
		r.initMeta(empty, "")
		r.root.InsertBefore(empty, nil)
		return vdom.None()
	case 1:
		return children[0]
	default:
		head := r.doc.CreateText("")
		r.initMeta(head, "")
		r.root.InsertBefore(head, r.root.ChildAt(r.offset))
		return vdom.Fragment(children)
	}
}

func (r *Reconciler) virtualiseNode(n surface.Node) *vdom.VNode {
	switch n.Type() {
	case surface.ElementNode:
		key, _ := n.Attribute(KeyAttribute)
		r.initMeta(n, key)
		if key != "" {
			n.RemoveAttribute(KeyAttribute)
		}
		ns := n.Namespace()
		html := ns == "" || ns == vdom.NamespaceHTML
		if html && inputElements[n.Tag()] {
			r.replayInput(n)
		}

		names := n.AttributeNames()
		attrs := make([]vdom.Attribute, 0, len(names))
		for _, name := range names {
			if name == KeyAttribute {
				continue
			}
			v, _ := n.Attribute(name)
			attrs = append(attrs, vdom.Attr(name, v))
		}

		var v *vdom.VNode
		if inner := n.InnerHTML(); inner != "" && n.ChildCount() == 0 {
			v = vdom.RawHTML(nsOf(html, ns), n.Tag(), attrs, inner)
		} else {
			children := r.virtualiseChildren(n, 0)
			if html {
				v = vdom.Element(n.Tag(), attrs, children)
			} else {
				v = vdom.Namespaced(ns, n.Tag(), attrs, children)
			}
		}
		if key != "" {
			v = vdom.ToKeyed(key, v)
		}
		return v

	case surface.TextNode:
		r.initMeta(n, "")
		return vdom.Text(n.Data())

	case surface.FragmentNode:
		r.initMeta(n, "")
		if n.ChildCount() == 0 {
			return nil
		}
		return vdom.Fragment(r.virtualiseChildren(n, 0))
	}
	return nil
}

func nsOf(html bool, ns string) string {
	if html {
		return ""
	}
	return ns
}

func (r *Reconciler) virtualiseChildren(parent surface.Node, from int) []*vdom.VNode {
	var out []*vdom.VNode
	for i := from; i < parent.ChildCount(); {
		child := parent.ChildAt(i)
		v := r.virtualiseNode(child)
		if v == nil {
			parent.RemoveChild(child)
			continue
		}
		r.addKeyedChild(parent, child)
		out = append(out, v)
		i++
	}
	return out
}

// replayInput re-announces a control's pre-filled state once the runtime
// is listening, so the model learns what the user typed before start-up.
func (r *Reconciler) replayInput(n surface.Node) {
	typ, _ := n.Attribute("type")
	checkable := n.Tag() == "input" && (typ == "checkbox" || typ == "radio")
	value := surface.Value(n)
	checked := surface.Checked(n)
	if checkable && !checked {
		return
	}
	if !checkable && value == "" {
		return
	}
	r.sched.QueueMicrotask(func() {
		n.SetProperty("value", value)
		n.SetProperty("checked", checked)
		n.DispatchEvent(&surface.Event{Type: "input", Bubbles: true})
		n.DispatchEvent(&surface.Event{Type: "change", Bubbles: true})
		if r.doc.ActiveElement() != n {
			n.DispatchEvent(&surface.Event{Type: "blur", Bubbles: true})
		}
	})
}
