package reconcile

import (
	"testing"

	"github.com/vango-dev/plop/pkg/render"
	"github.com/vango-dev/plop/pkg/surface"
	"github.com/vango-dev/plop/pkg/vdom"
)

// prerender builds what a server-rendered page would hold under the root.
func prerender(f *fixture, build func(d *surface.MemoryDocument) []surface.Node) {
	for _, n := range build(f.doc) {
		f.doc.Body().InsertBefore(n, nil)
	}
}

func keyedItem(d *surface.MemoryDocument, key string) surface.Node {
	li := d.CreateElement("", "li")
	li.SetAttribute(KeyAttribute, key)
	li.InsertBefore(d.CreateText(key), nil)
	return li
}

func TestVirtualiseEmptyRoot(t *testing.T) {
	f := newFixture()
	v := f.r.Virtualise()
	if v.Kind != vdom.KindText || v.Text != "" {
		t.Errorf("Virtualise() = %v %q, want empty text", v.Kind, v.Text)
	}
	if f.doc.Body().ChildCount() != 1 {
		t.Errorf("root has %d children, want the placeholder", f.doc.Body().ChildCount())
	}

	f.view = v
	f.update(vdom.P("hello"))
	expectHTML(t, f, vdom.P("hello"))
}

func TestVirtualiseKeyedList(t *testing.T) {
	f := newFixture()
	prerender(f, func(d *surface.MemoryDocument) []surface.Node {
		ul := d.CreateElement("", "ul")
		ul.SetAttribute("class", "items")
		ul.InsertBefore(keyedItem(d, "a"), nil)
		ul.InsertBefore(keyedItem(d, "b"), nil)
		return []surface.Node{ul}
	})
	ul := f.doc.Body().ChildAt(0)
	b := ul.ChildAt(1)

	v := f.r.Virtualise()
	if v.Tag != "ul" || len(v.KeyedChildren) != 2 {
		t.Fatalf("Virtualise() = <%s> with %d keyed children", v.Tag, len(v.KeyedChildren))
	}
	if _, ok := b.Attribute(KeyAttribute); ok {
		t.Error("key attribute left on the live node")
	}

	f.view = v
	next := vdom.KeyedElement("ul", []vdom.Attribute{vdom.Class("items")}, []vdom.KeyedChild{
		vdom.Keyed("b", vdom.Li("b")),
		vdom.Keyed("a", vdom.Li("a")),
	})
	f.update(next)
	expectHTML(t, f, next)
	if ul.ChildAt(0) != b {
		t.Error("adopted keyed node was not moved in place")
	}
}

func TestVirtualiseSeveralChildren(t *testing.T) {
	f := newFixture()
	prerender(f, func(d *surface.MemoryDocument) []surface.Node {
		h := d.CreateElement("", "h1")
		h.InsertBefore(d.CreateText("Title"), nil)
		p := d.CreateElement("", "p")
		return []surface.Node{h, p}
	})

	v := f.r.Virtualise()
	if v.Kind != vdom.KindFragment || len(v.Children) != 2 {
		t.Fatalf("Virtualise() = %v with %d children, want fragment of 2", v.Kind, len(v.Children))
	}
	if head := f.doc.Body().ChildAt(0); head.Type() != surface.TextNode || head.Data() != "" {
		t.Error("fragment head not inserted")
	}

	f.view = v
	next := vdom.Fragment([]*vdom.VNode{vdom.H1("Title"), vdom.P("body")})
	f.update(next)
	expectHTML(t, f, next)
}

func TestVirtualiseRoundTripsRenderedPage(t *testing.T) {
	view := vdom.Div(
		vdom.ID("app"),
		vdom.KeyedElement("ol", nil, []vdom.KeyedChild{
			vdom.Keyed("1", vdom.Li("one")),
			vdom.Keyed("2", vdom.Li("two")),
		}),
	)
	f := newFixture()
	f.r.Mount(view)
	markup := render.SurfaceString(f.doc.Body())

	// Re-key the mounted tree the way a rendered page would carry it.
	g := newFixture()
	g.r.Mount(view)
	ol := g.doc.Body().ChildAt(0).ChildAt(0)
	ol.ChildAt(0).SetAttribute(KeyAttribute, "1")
	ol.ChildAt(1).SetAttribute(KeyAttribute, "2")

	h := newFixture()
	h.doc.Body().InsertBefore(g.doc.Body().ChildAt(0), nil)
	v := h.r.Virtualise()

	if got := render.SurfaceString(h.doc.Body()); got != markup {
		t.Errorf("virtualised markup = %q, want %q", got, markup)
	}
	p, _ := vdom.Diff(vdom.NewRegistry(), v, view)
	if !p.IsEmpty() {
		t.Errorf("diff against the source view is not empty:\n%s", p)
	}
}

func TestVirtualiseReplaysInputs(t *testing.T) {
	f := newFixture()
	prerender(f, func(d *surface.MemoryDocument) []surface.Node {
		in := d.CreateElement("", "input")
		in.SetAttribute("value", "typed")
		empty := d.CreateElement("", "input")
		box := d.CreateElement("", "input")
		box.SetAttribute("type", "checkbox")
		return []surface.Node{in, empty, box}
	})

	f.view = f.r.Virtualise()
	onInput := vdom.OnInput(func(v string) any { return v })
	f.update(vdom.Fragment([]*vdom.VNode{
		vdom.Input(vdom.Value("typed"), onInput),
		vdom.Input(onInput),
		vdom.Input(vdom.Type("checkbox"), onInput),
	}))
	if len(f.events) != 0 {
		t.Fatal("events replayed before microtasks ran")
	}

	f.sched.Flush()
	if len(f.events) != 1 {
		t.Fatalf("replayed %d events, want 1", len(f.events))
	}
	ev := f.events[0]
	if ev.name != "input" || ev.path != "1" {
		t.Errorf("replayed %q at %q, want input at 1", ev.name, ev.path)
	}
	_, msg, ok, _ := f.reg.Handle(ev.path, ev.name, ev.payload)
	if !ok || msg != "typed" {
		t.Errorf("decoded %v, %v; want typed", msg, ok)
	}
}

func TestVirtualiseSkipsOffset(t *testing.T) {
	f := newFixture(WithOffset(1))
	prerender(f, func(d *surface.MemoryDocument) []surface.Node {
		h := d.CreateElement("", "header")
		h.InsertBefore(d.CreateText("kept"), nil)
		p := d.CreateElement("", "p")
		p.InsertBefore(d.CreateText("old"), nil)
		return []surface.Node{h, p}
	})

	v := f.r.Virtualise()
	if v.Tag != "p" {
		t.Fatalf("Virtualise() = <%s>, want the node after the offset", v.Tag)
	}

	f.view = v
	f.update(vdom.P("new"))
	want := "<header>kept</header><p>new</p>"
	if got := render.SurfaceString(f.doc.Body()); got != want {
		t.Errorf("surface = %q, want %q", got, want)
	}
}
