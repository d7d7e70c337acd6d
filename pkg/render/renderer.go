package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/vango-dev/plop/pkg/surface"
	"github.com/vango-dev/plop/pkg/vdom"
)

// KeyAttribute carries a node's key in rendered markup so that a runtime
// virtualising the page can recover it.
const KeyAttribute = "data-plop-key"

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables indented output. Development only; it adds text
	// nodes a virtualising runtime would see.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces.
	Indent string

	// Keys emits KeyAttribute on keyed elements.
	Keys bool
}

// Renderer turns virtual trees and live surfaces into HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders a VNode tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a VNode tree to w.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	ew := &errWriter{w: w}
	r.renderNode(ew, node, 0)
	return ew.err
}

// RenderSurface streams the children of a live node to w. Event listeners
// and properties are not part of the markup.
func (r *Renderer) RenderSurface(w io.Writer, root surface.Node) error {
	ew := &errWriter{w: w}
	for i := 0; i < root.ChildCount(); i++ {
		r.renderLive(ew, root.ChildAt(i), 0)
	}
	return ew.err
}

// SurfaceString renders the children of a live node to a string.
func SurfaceString(root surface.Node) string {
	var sb strings.Builder
	_ = NewRenderer(RendererConfig{}).RenderSurface(&sb, root)
	return sb.String()
}

// errWriter remembers the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) WriteString(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

func (r *Renderer) renderNode(w *errWriter, node *vdom.VNode, depth int) {
	if node == nil {
		return
	}
	switch node.Kind {
	case vdom.KindElement:
		r.renderElement(w, node, depth)
	case vdom.KindText:
		w.WriteString(escapeHTML(node.Text))
	case vdom.KindFragment:
		for _, child := range node.Children {
			r.renderNode(w, child, depth)
		}
	case vdom.KindRaw:
		r.openTag(w, node, depth)
		w.WriteString(">")
		w.WriteString(node.InnerHTML)
		r.closeTag(w, node.Tag, false, depth)
	default:
		if w.err == nil {
			w.err = fmt.Errorf("render: unknown node kind %d", node.Kind)
		}
	}
}

func (r *Renderer) renderElement(w *errWriter, node *vdom.VNode, depth int) {
	r.openTag(w, node, depth)
	switch {
	case node.SelfClosing:
		w.WriteString("/>")
		r.newline(w)
		return
	case node.Void:
		w.WriteString(">")
		r.newline(w)
		return
	}
	w.WriteString(">")

	block := hasElementChild(node.Children) && !isInlineElement(node.Tag)
	if r.config.Pretty && block {
		w.WriteString("\n")
	}
	for _, child := range node.Children {
		r.renderNode(w, child, depth+1)
	}
	r.closeTag(w, node.Tag, block, depth)
}

func (r *Renderer) openTag(w *errWriter, node *vdom.VNode, depth int) {
	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}
	w.WriteString("<")
	w.WriteString(node.Tag)
	for _, a := range node.Attrs {
		if a.Kind != vdom.AttrAttribute {
			continue
		}
		writeAttr(w, a.Name, a.Value)
	}
	if r.config.Keys && node.Key != "" {
		writeAttr(w, KeyAttribute, node.Key)
	}
}

func (r *Renderer) closeTag(w *errWriter, tag string, block bool, depth int) {
	if r.config.Pretty && block {
		r.writeIndent(w, depth)
	}
	w.WriteString("</" + tag + ">")
	r.newline(w)
}

func (r *Renderer) newline(w *errWriter) {
	if r.config.Pretty {
		w.WriteString("\n")
	}
}

func (r *Renderer) renderLive(w *errWriter, n surface.Node, depth int) {
	switch n.Type() {
	case surface.TextNode:
		w.WriteString(escapeHTML(n.Data()))
		return
	case surface.FragmentNode:
		for i := 0; i < n.ChildCount(); i++ {
			r.renderLive(w, n.ChildAt(i), depth)
		}
		return
	}

	tag := n.Tag()
	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}
	w.WriteString("<" + tag)
	for _, name := range n.AttributeNames() {
		v, _ := n.Attribute(name)
		writeAttr(w, name, v)
	}
	if vdom.IsVoidElement(tag, n.Namespace()) && n.ChildCount() == 0 {
		w.WriteString(">")
		r.newline(w)
		return
	}
	w.WriteString(">")
	if inner := n.InnerHTML(); inner != "" && n.ChildCount() == 0 {
		w.WriteString(inner)
		r.closeTag(w, tag, false, depth)
		return
	}
	block := !isInlineElement(tag) && liveHasElementChild(n)
	if r.config.Pretty && block {
		w.WriteString("\n")
	}
	for i := 0; i < n.ChildCount(); i++ {
		r.renderLive(w, n.ChildAt(i), depth+1)
	}
	r.closeTag(w, tag, block, depth)
}

func hasElementChild(children []*vdom.VNode) bool {
	for _, c := range children {
		if c.Kind != vdom.KindText {
			return true
		}
	}
	return false
}

func liveHasElementChild(n surface.Node) bool {
	for i := 0; i < n.ChildCount(); i++ {
		if n.ChildAt(i).Type() != surface.TextNode {
			return true
		}
	}
	return false
}

// writeAttr writes a boolean attribute bare when its value is empty.
func writeAttr(w *errWriter, name, value string) {
	if value == "" && isBooleanAttr(name) {
		w.WriteString(" " + name)
		return
	}
	w.WriteString(" " + name + `="` + escapeAttr(value) + `"`)
}

func (r *Renderer) writeIndent(w *errWriter, depth int) {
	w.WriteString(strings.Repeat(r.config.Indent, depth))
}
