package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/vango-dev/plop/pkg/surface"
	"github.com/vango-dev/plop/pkg/vdom"
)

func TestRenderNodes(t *testing.T) {
	tests := []struct {
		name string
		node *vdom.VNode
		want string
	}{
		{"text", vdom.Text("Hello, World!"), "Hello, World!"},
		{"escaped text", vdom.Text("<b>&'\""), "&lt;b&gt;&amp;&#39;&quot;"},
		{"element", vdom.Div(vdom.Class("box"), vdom.H1("Title"), vdom.P("Body")),
			`<div class="box"><h1>Title</h1><p>Body</p></div>`},
		{"void", vdom.Input(vdom.Type("text"), vdom.Name("email")), `<input name="email" type="text">`},
		{"br", vdom.Br(), "<br>"},
		{"self closing", vdom.SelfClose(vdom.CustomElement("x-icon")), "<x-icon/>"},
		{"boolean", vdom.Input(vdom.Checked(true)), "<input checked>"},
		{"property skipped", vdom.Input(vdom.Checked(false)), "<input>"},
		{"event skipped", vdom.Button(vdom.OnClick("go"), "Go"), "<button>Go</button>"},
		{"fragment", vdom.Fragment([]*vdom.VNode{vdom.Text("a"), vdom.Span("b")}), "a<span>b</span>"},
		{"raw", vdom.RawHTML("", "div", nil, "<i>x</i>"), "<div><i>x</i></div>"},
		{"attr escape", vdom.Div(vdom.Title_("a\"b\nc")), `<div title="a&quot;b&#10;c"></div>`},
		{"nil", nil, ""},
	}
	r := NewRenderer(RendererConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.RenderToString(tt.node)
			if err != nil {
				t.Fatalf("RenderToString() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderKeys(t *testing.T) {
	node := vdom.KeyedElement("ul", nil, []vdom.KeyedChild{
		vdom.Keyed("a", vdom.Li("A")),
	})

	plain, _ := NewRenderer(RendererConfig{}).RenderToString(node)
	if plain != "<ul><li>A</li></ul>" {
		t.Errorf("plain = %q", plain)
	}
	keyed, _ := NewRenderer(RendererConfig{Keys: true}).RenderToString(node)
	if keyed != `<ul><li data-plop-key="a">A</li></ul>` {
		t.Errorf("keyed = %q", keyed)
	}
}

func TestRenderPretty(t *testing.T) {
	r := NewRenderer(RendererConfig{Pretty: true})
	got, err := r.RenderToString(vdom.Div(vdom.P("x"), vdom.Span("y")))
	if err != nil {
		t.Fatal(err)
	}
	want := "<div>\n  <p>x</p>\n  <span>y</span>\n</div>\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderSurface(t *testing.T) {
	doc := surface.NewDocument()
	root := doc.Body()
	div := doc.CreateElement("", "div")
	div.SetAttribute("id", "x")
	div.SetAttribute("hidden", "")
	div.SetProperty("value", "ignored")
	div.InsertBefore(doc.CreateText("a<b"), nil)
	div.InsertBefore(doc.CreateElement("", "br"), nil)
	raw := doc.CreateElement("", "section")
	raw.SetInnerHTML("<em>!</em>")
	root.InsertBefore(div, nil)
	root.InsertBefore(raw, nil)

	want := `<div hidden id="x">a&lt;b<br></div><section><em>!</em></section>`
	if got := SurfaceString(root); got != want {
		t.Errorf("SurfaceString() = %q, want %q", got, want)
	}
}

type failWriter struct{ after int }

func (f *failWriter) Write(p []byte) (int, error) {
	if f.after <= 0 {
		return 0, errors.New("disk full")
	}
	f.after--
	return len(p), nil
}

func TestRenderWriteError(t *testing.T) {
	r := NewRenderer(RendererConfig{})
	err := r.RenderToWriter(&failWriter{after: 2}, vdom.Div(vdom.P("a"), vdom.P("b")))
	if err == nil || err.Error() != "disk full" {
		t.Errorf("RenderToWriter() error = %v, want disk full", err)
	}
}

func TestRenderPage(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(RendererConfig{})
	err := r.RenderPage(&buf, PageData{
		Title:       "Plop & Lift",
		Body:        vdom.KeyedElement("ul", nil, []vdom.KeyedChild{vdom.Keyed("k", vdom.Li("x"))}),
		Meta:        []MetaTag{{Name: "description", Content: "demo"}},
		StyleSheets: []string{"/app.css"},
		Scripts:     []ScriptTag{{Src: "/app.js", Module: true}},
	})
	if err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		`<html lang="en">`,
		"<title>Plop &amp; Lift</title>",
		`<meta name="description" content="demo">`,
		`<link rel="stylesheet" href="/app.css">`,
		`<div id="app"><ul><li data-plop-key="k">x</li></ul></div>`,
		`<script src="/app.js" type="module"></script>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q:\n%s", want, html)
		}
	}
}

func TestStreamingRendererFlushes(t *testing.T) {
	var buf bytes.Buffer
	w := &FlushableWriter{Writer: &buf}
	s := NewStreamingRenderer(w, RendererConfig{})
	if err := s.RenderPage(PageData{Body: vdom.P("hi"), MountID: "root"}); err != nil {
		t.Fatal(err)
	}
	if w.FlushCount != 3 {
		t.Errorf("FlushCount = %d, want 3", w.FlushCount)
	}
	if !strings.Contains(buf.String(), `<div id="root"><p>hi</p></div>`) {
		t.Errorf("body missing:\n%s", buf.String())
	}
}
