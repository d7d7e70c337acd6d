package vdom

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// AttrKind discriminates the Attribute union.
type AttrKind uint8

const (
	AttrAttribute AttrKind = iota // Surface attribute, string valued
	AttrProperty                  // Live node property, any value
	AttrEvent                     // Event binding
)

// String returns the string representation of the AttrKind.
func (k AttrKind) String() string {
	switch k {
	case AttrAttribute:
		return "Attribute"
	case AttrProperty:
		return "Property"
	case AttrEvent:
		return "Event"
	default:
		return "Unknown"
	}
}

// LimitKind is the rate limiting policy of an event binding.
type LimitKind uint8

const (
	NoLimit LimitKind = iota
	LimitDebounce
	LimitThrottle
)

// Limit is a rate limiting policy with its delay.
type Limit struct {
	Kind  LimitKind
	Delay time.Duration
}

// Equal reports whether two limits have the same policy and delay.
func (l Limit) Equal(o Limit) bool {
	if l.Kind == NoLimit && o.Kind == NoLimit {
		return true
	}
	return l.Kind == o.Kind && l.Delay == o.Delay
}

// Attribute is a single attribute, property or event binding on a node.
type Attribute struct {
	Kind  AttrKind
	Name  string
	Value string // AttrAttribute
	Prop  any    // AttrProperty

	// AttrEvent only.
	Handler         Decoder
	Include         []string
	PreventDefault  bool
	StopPropagation bool
	Immediate       bool
	Limit           Limit
}

// IsEmpty reports whether the attribute is the zero value. Empty attributes
// are dropped by the element builders, which makes conditional helpers cheap.
func (a Attribute) IsEmpty() bool {
	return a.Name == ""
}

// Attr creates a plain attribute.
func Attr(name, value string) Attribute {
	return Attribute{Kind: AttrAttribute, Name: name, Value: value}
}

// Prop creates a property binding. Properties are set on the live node
// rather than written as markup.
func Prop(name string, value any) Attribute {
	return Attribute{Kind: AttrProperty, Name: name, Prop: value}
}

// BoolAttr sets name="" when on, and otherwise sets the property to false so
// a previously present attribute is also reflected on the live node.
func BoolAttr(name string, on bool) Attribute {
	if on {
		return Attr(name, "")
	}
	return Prop(name, false)
}

// Prepare canonicalises an attribute list: sorted by name, with adjacent
// class attributes joined by " " and style attributes joined by ";".
// The relative order of equal names is preserved.
func Prepare(attrs []Attribute) []Attribute {
	if len(attrs) < 2 {
		return attrs
	}
	sorted := make([]Attribute, len(attrs))
	copy(sorted, attrs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	out := sorted[:0:0]
	for _, a := range sorted {
		if n := len(out); n > 0 && a.Kind == AttrAttribute && out[n-1].Kind == AttrAttribute && out[n-1].Name == a.Name {
			switch a.Name {
			case "class":
				out[n-1].Value = out[n-1].Value + " " + a.Value
				continue
			case "style":
				out[n-1].Value = out[n-1].Value + ";" + a.Value
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// Identity

// ID sets the id attribute.
func ID(id string) Attribute { return Attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attribute { return Attr("class", strings.Join(classes, " ")) }

// Classes builds a class attribute from a set of toggles. Names are sorted
// so the output is stable.
func Classes(toggles map[string]bool) Attribute {
	names := make([]string, 0, len(toggles))
	for name, on := range toggles {
		if on && name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return Attr("class", strings.Join(names, " "))
}

// Style sets a single style declaration.
func Style(property, value string) Attribute { return Attr("style", property+":"+value) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attribute { return Attr("data-"+key, value) }

// Role sets the role attribute.
func Role(role string) Attribute { return Attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attribute { return Attr("aria-label", label) }

// Links and media

func Href(url string) Attribute      { return Attr("href", url) }
func Src(url string) Attribute       { return Attr("src", url) }
func Alt(text string) Attribute      { return Attr("alt", text) }
func Target(name string) Attribute   { return Attr("target", name) }
func Width(w int) Attribute          { return Attr("width", fmt.Sprint(w)) }
func Height(h int) Attribute         { return Attr("height", fmt.Sprint(h)) }
func Autoplay(on bool) Attribute     { return BoolAttr("autoplay", on) }
func Draggable(on bool) Attribute    { return Attr("draggable", fmt.Sprint(on)) }
func TabIndex(n int) Attribute       { return Attr("tabindex", fmt.Sprint(n)) }
func Title_(text string) Attribute   { return Attr("title", text) }
func Name(name string) Attribute     { return Attr("name", name) }
func Type(t string) Attribute        { return Attr("type", t) }
func For(id string) Attribute        { return Attr("for", id) }
func Placeholder(s string) Attribute { return Attr("placeholder", s) }

// Form state. These are the attributes the reconciler mirrors onto live
// node properties.

// Value sets the value attribute.
func Value(v string) Attribute { return Attr("value", v) }

// Checked sets or clears the checked state.
func Checked(on bool) Attribute { return BoolAttr("checked", on) }

// Selected sets or clears the selected state.
func Selected(on bool) Attribute { return BoolAttr("selected", on) }

// Disabled sets or clears the disabled state.
func Disabled(on bool) Attribute { return BoolAttr("disabled", on) }

// Autofocus focuses the element once it is attached.
func Autofocus(on bool) Attribute { return BoolAttr("autofocus", on) }

// ClassIf adds a class conditionally.
func ClassIf(condition bool, class string) Attribute {
	if condition {
		return Attr("class", class)
	}
	return Attribute{}
}

// AttrIf adds any attribute conditionally.
func AttrIf(condition bool, a Attribute) Attribute {
	if condition {
		return a
	}
	return Attribute{}
}
