package vdom

import "fmt"

var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement reports whether tag is an HTML void element. Namespaced
// elements are never void.
func IsVoidElement(tag, namespace string) bool {
	return namespace == "" && voidElements[tag]
}

// build assembles an element from variadic builder arguments.
//
// Accepted argument types: Attribute, []Attribute, *VNode, []*VNode,
// KeyedChild, []KeyedChild, string (text child), fmt.Stringer and nil.
// Anything else panics, since it indicates a programming error in a view.
func build(tag string, args []any) *VNode {
	var attrs []Attribute
	var children []*VNode

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
		case Attribute:
			if !v.IsEmpty() {
				attrs = append(attrs, v)
			}
		case []Attribute:
			for _, a := range v {
				if !a.IsEmpty() {
					attrs = append(attrs, a)
				}
			}
		case *VNode:
			if v != nil {
				children = append(children, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					children = append(children, c)
				}
			}
		case KeyedChild:
			if v.Node != nil {
				children = append(children, ToKeyed(v.Key, v.Node))
			}
		case []KeyedChild:
			for _, kc := range v {
				if kc.Node != nil {
					children = append(children, ToKeyed(kc.Key, kc.Node))
				}
			}
		case string:
			children = append(children, Text(v))
		case fmt.Stringer:
			children = append(children, Text(v.String()))
		default:
			panic(fmt.Sprintf("vdom: unsupported argument %T for <%s>", arg, tag))
		}
	}

	return Element(tag, attrs, children)
}

// CustomElement creates an element with a custom tag name.
func CustomElement(tag string, args ...any) *VNode { return build(tag, args) }

// Document structure

func Html(args ...any) *VNode  { return build("html", args) }
func Head(args ...any) *VNode  { return build("head", args) }
func Body(args ...any) *VNode  { return build("body", args) }
func Title(args ...any) *VNode { return build("title", args) }
func Meta(args ...any) *VNode  { return build("meta", args) }
func Link(args ...any) *VNode  { return build("link", args) }

// Sectioning

func Header(args ...any) *VNode  { return build("header", args) }
func Footer(args ...any) *VNode  { return build("footer", args) }
func Main(args ...any) *VNode    { return build("main", args) }
func Nav(args ...any) *VNode     { return build("nav", args) }
func Section(args ...any) *VNode { return build("section", args) }
func Article(args ...any) *VNode { return build("article", args) }
func Aside(args ...any) *VNode   { return build("aside", args) }
func H1(args ...any) *VNode      { return build("h1", args) }
func H2(args ...any) *VNode      { return build("h2", args) }
func H3(args ...any) *VNode      { return build("h3", args) }

// Text content

func Div(args ...any) *VNode  { return build("div", args) }
func P(args ...any) *VNode    { return build("p", args) }
func Span(args ...any) *VNode { return build("span", args) }
func Pre(args ...any) *VNode  { return build("pre", args) }
func Ul(args ...any) *VNode   { return build("ul", args) }
func Ol(args ...any) *VNode   { return build("ol", args) }
func Li(args ...any) *VNode   { return build("li", args) }
func Hr(args ...any) *VNode   { return build("hr", args) }
func Br(args ...any) *VNode   { return build("br", args) }

// Inline

func A(args ...any) *VNode      { return build("a", args) }
func Strong(args ...any) *VNode { return build("strong", args) }
func Em(args ...any) *VNode     { return build("em", args) }
func Code(args ...any) *VNode   { return build("code", args) }
func Small(args ...any) *VNode  { return build("small", args) }

// Forms

func Form(args ...any) *VNode     { return build("form", args) }
func Input(args ...any) *VNode    { return build("input", args) }
func Textarea(args ...any) *VNode { return build("textarea", args) }
func Select(args ...any) *VNode   { return build("select", args) }
func Option(args ...any) *VNode   { return build("option", args) }
func Button(args ...any) *VNode   { return build("button", args) }
func Label(args ...any) *VNode    { return build("label", args) }
func Fieldset(args ...any) *VNode { return build("fieldset", args) }

// Tables

func Table(args ...any) *VNode { return build("table", args) }
func Thead(args ...any) *VNode { return build("thead", args) }
func Tbody(args ...any) *VNode { return build("tbody", args) }
func Tr(args ...any) *VNode    { return build("tr", args) }
func Th(args ...any) *VNode    { return build("th", args) }
func Td(args ...any) *VNode    { return build("td", args) }

// Media

func Img(args ...any) *VNode    { return build("img", args) }
func Video(args ...any) *VNode  { return build("video", args) }
func Audio(args ...any) *VNode  { return build("audio", args) }
func Source(args ...any) *VNode { return build("source", args) }

// Svg creates an <svg> element in the SVG namespace. Children built with the
// HTML helpers keep the HTML namespace; use Namespaced for SVG shapes.
func Svg(args ...any) *VNode {
	n := build("svg", args)
	n.Namespace = NamespaceSVG
	n.Void = false
	return n
}

// Namespace URIs.
const (
	NamespaceHTML = "http://www.w3.org/1999/xhtml"
	NamespaceSVG  = "http://www.w3.org/2000/svg"
)
