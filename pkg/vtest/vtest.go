package vtest

import (
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/plop/pkg/app"
	"github.com/vango-dev/plop/pkg/loop"
	"github.com/vango-dev/plop/pkg/render"
	"github.com/vango-dev/plop/pkg/surface"
	"github.com/vango-dev/plop/pkg/vdom"
)

// Epoch is the starting time of every harness clock.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// MountID is the id of the element a harness mounts its app on.
const MountID = "app"

// maxSettleFrames bounds Settle against apps that render forever.
const maxSettleFrames = 100

// Harness runs an app on an in-memory document with a manual clock.
type Harness[Model, Msg any] struct {
	tb      testing.TB
	Doc     *surface.MemoryDocument
	Sched   *loop.Manual
	Runtime *app.Runtime[Model, Msg]
}

// Start mounts a on a fresh document and renders it. Scheduler options are
// supplied by the harness.
//
// Example:
//
//	h := vtest.Start(t, counter)
//	h.Click("button")
//	h.Settle()
//	h.ExpectContains("1")
func Start[Model, Msg any](tb testing.TB, a app.App[Model, Msg], opts ...app.Option) *Harness[Model, Msg] {
	tb.Helper()
	doc := surface.NewDocument()
	mount := doc.CreateElement("", "div")
	mount.SetAttribute("id", MountID)
	doc.Body().InsertBefore(mount, nil)

	sched := loop.NewManual(Epoch)
	opts = append([]app.Option{app.WithScheduler(sched)}, opts...)
	rt, err := app.Start(a, doc, "#"+MountID, opts...)
	if err != nil {
		tb.Fatalf("vtest: start: %v", err)
	}
	sched.Flush()
	return &Harness[Model, Msg]{tb: tb, Doc: doc, Sched: sched, Runtime: rt}
}

// Model returns the runtime's current model.
func (h *Harness[Model, Msg]) Model() Model {
	return h.Runtime.Model()
}

// HTML renders what is currently on the surface under the mount.
func (h *Harness[Model, Msg]) HTML() string {
	return render.SurfaceString(h.Runtime.Root())
}

// Find returns the first node matching selector, failing the test if there
// is none.
func (h *Harness[Model, Msg]) Find(selector string) surface.Node {
	h.tb.Helper()
	n := h.Doc.QuerySelector(selector)
	if n == nil {
		h.tb.Fatalf("vtest: no node matches %q in:\n%s", selector, truncate(h.HTML(), 500))
	}
	return n
}

// Dispatch fires ev on the node matching selector and runs the microtasks
// it queued.
func (h *Harness[Model, Msg]) Dispatch(selector string, ev *surface.Event) {
	h.tb.Helper()
	h.Find(selector).DispatchEvent(ev)
	h.Sched.Flush()
}

// Click fires a bubbling click.
func (h *Harness[Model, Msg]) Click(selector string) {
	h.tb.Helper()
	h.Dispatch(selector, &surface.Event{Type: "click", Bubbles: true})
}

// Input sets the value of a form control and fires input.
func (h *Harness[Model, Msg]) Input(selector, value string) {
	h.tb.Helper()
	h.Find(selector).SetProperty("value", value)
	h.Dispatch(selector, &surface.Event{Type: "input", Bubbles: true})
}

// Check sets a checkbox and fires change.
func (h *Harness[Model, Msg]) Check(selector string, on bool) {
	h.tb.Helper()
	h.Find(selector).SetProperty("checked", on)
	h.Dispatch(selector, &surface.Event{Type: "change", Bubbles: true})
}

// KeyDown fires keydown with the given key.
func (h *Harness[Model, Msg]) KeyDown(selector, key string) {
	h.tb.Helper()
	h.Dispatch(selector, &surface.Event{Type: "keydown", Bubbles: true, Data: map[string]any{"key": key}})
}

// Submit fires submit on a form.
func (h *Harness[Model, Msg]) Submit(selector string) {
	h.tb.Helper()
	h.Dispatch(selector, &surface.Event{Type: "submit", Bubbles: true})
}

// Frame runs one paint frame.
func (h *Harness[Model, Msg]) Frame() {
	h.Sched.Frame()
}

// Settle runs frames until none are pending.
func (h *Harness[Model, Msg]) Settle() {
	h.tb.Helper()
	for i := 0; h.Sched.PendingFrames() > 0; i++ {
		if i == maxSettleFrames {
			h.tb.Fatalf("vtest: still rendering after %d frames", maxSettleFrames)
		}
		h.Sched.Frame()
	}
}

// Advance moves the clock forward, firing due timers.
func (h *Harness[Model, Msg]) Advance(d time.Duration) {
	h.Sched.Advance(d)
}

// ExpectHTML asserts the surface renders exactly want.
func (h *Harness[Model, Msg]) ExpectHTML(want string) {
	h.tb.Helper()
	if got := h.HTML(); got != want {
		h.tb.Errorf("surface = %s\nwant      %s", got, want)
	}
}

// ExpectView asserts the surface matches what node renders to.
func (h *Harness[Model, Msg]) ExpectView(node *vdom.VNode) {
	h.tb.Helper()
	h.ExpectHTML(RenderToString(node))
}

// ExpectContains asserts the surface contains expected.
func (h *Harness[Model, Msg]) ExpectContains(expected string) {
	h.tb.Helper()
	if html := h.HTML(); !strings.Contains(html, expected) {
		h.tb.Errorf("expected surface to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// RenderToString renders a VNode and returns the HTML string.
func RenderToString(node *vdom.VNode) string {
	r := render.NewRenderer(render.RendererConfig{})
	html, err := r.RenderToString(node)
	if err != nil {
		return ""
	}
	return html
}

// ExpectContains asserts that rendered output contains expected substring.
//
// Example:
//
//	vtest.ExpectContains(t, view(model), "Welcome")
func ExpectContains(t testing.TB, node *vdom.VNode, expected string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
func ExpectNotContains(t testing.TB, node *vdom.VNode, unexpected string) {
	t.Helper()
	html := RenderToString(node)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that rendered output contains a specific tag.
func ExpectElement(t testing.TB, node *vdom.VNode, tag string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, "<"+tag) {
		t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(html, 500))
	}
}

// ExpectAttribute asserts that rendered output contains an attribute value.
func ExpectAttribute(t testing.TB, node *vdom.VNode, attr, value string) {
	t.Helper()
	html := RenderToString(node)
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
