package app

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	plerrors "github.com/vango-dev/plop/internal/errors"
	"github.com/vango-dev/plop/pkg/loop"
	"github.com/vango-dev/plop/pkg/render"
	"github.com/vango-dev/plop/pkg/surface"
	"github.com/vango-dev/plop/pkg/vdom"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type model struct {
	count int
	text  string
	log   []string
}

type msg struct {
	kind string
	text string
}

func view(m model) *vdom.VNode {
	return vdom.Div(
		vdom.Button(vdom.OnClick(msg{kind: "inc"}), strconv.Itoa(m.count)),
		vdom.Input(vdom.Value(m.text), vdom.OnInput(func(v string) any { return msg{kind: "text", text: v} })),
		vdom.P(m.text),
	)
}

func update(m model, ms msg) model {
	m.log = append(m.log, ms.kind)
	switch ms.kind {
	case "inc":
		m.count++
	case "text":
		m.text = ms.text
	}
	return m
}

func counter() App[model, msg] {
	return Simple(func() model { return model{} }, update, view)
}

type harness struct {
	doc     *surface.MemoryDocument
	sched   *loop.Manual
	metrics *Metrics
	reg     *prometheus.Registry
}

func newHarness() *harness {
	doc := surface.NewDocument()
	mount := doc.CreateElement("", "div")
	mount.SetAttribute("id", "app")
	doc.Body().InsertBefore(mount, nil)
	reg := prometheus.NewRegistry()
	return &harness{
		doc:     doc,
		sched:   loop.NewManual(epoch),
		metrics: NewMetrics(WithRegistry(reg)),
		reg:     reg,
	}
}

func start[M, Msg any](t *testing.T, h *harness, a App[M, Msg], opts ...Option) *Runtime[M, Msg] {
	t.Helper()
	opts = append([]Option{WithScheduler(h.sched), WithMetrics(h.metrics)}, opts...)
	rt, err := Start(a, h.doc, "#app", opts...)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return rt
}

func expectView(t *testing.T, rt *Runtime[model, msg], m model) {
	t.Helper()
	want, err := render.NewRenderer(render.RendererConfig{}).RenderToString(view(m))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, render.SurfaceString(rt.Root())); diff != "" {
		t.Errorf("surface mismatch (-want +got):\n%s", diff)
	}
}

func button(rt *Runtime[model, msg]) surface.Node { return rt.Root().ChildAt(0).ChildAt(0) }
func input(rt *Runtime[model, msg]) surface.Node  { return rt.Root().ChildAt(0).ChildAt(1) }

func click(n surface.Node) {
	n.DispatchEvent(&surface.Event{Type: "click", Bubbles: true})
}

func typeInto(n surface.Node, text string) {
	n.SetProperty("value", text)
	n.DispatchEvent(&surface.Event{Type: "input", Bubbles: true})
}

func TestStartRendersInline(t *testing.T) {
	h := newHarness()
	rt := start(t, h, counter())

	expectView(t, rt, model{})
	if h.sched.PendingFrames() != 0 {
		t.Errorf("PendingFrames() = %d, want 0", h.sched.PendingFrames())
	}
	if rt.ID() == "" {
		t.Error("runtime has no id")
	}
	if got := testutil.ToFloat64(h.metrics.renders); got != 1 {
		t.Errorf("renders_total = %v, want 1", got)
	}
}

func TestStartErrors(t *testing.T) {
	h := newHarness()
	tests := []struct {
		name     string
		doc      surface.Document
		selector string
		opts     []Option
		want     error
	}{
		{"no document", nil, "#app", []Option{WithScheduler(h.sched)}, plerrors.ErrNotInteractive},
		{"no scheduler", h.doc, "#app", nil, plerrors.ErrNotInteractive},
		{"missing element", h.doc, "#nope", []Option{WithScheduler(h.sched)}, plerrors.ErrElementNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := Start(counter(), tt.doc, tt.selector, tt.opts...)
			if rt != nil {
				t.Error("Start() returned a runtime")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Start() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEventsRenderOnNextFrame(t *testing.T) {
	h := newHarness()
	rt := start(t, h, counter())

	click(button(rt))
	click(button(rt))
	if rt.Model().count != 2 {
		t.Fatalf("count = %d, want 2", rt.Model().count)
	}
	expectView(t, rt, model{})
	if h.sched.PendingFrames() != 1 {
		t.Fatalf("PendingFrames() = %d, want 1", h.sched.PendingFrames())
	}

	h.sched.Frame()
	expectView(t, rt, model{count: 2})
	if got := testutil.ToFloat64(h.metrics.dispatched.WithLabelValues("click")); got != 2 {
		t.Errorf("events_dispatched_total{click} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(h.metrics.messages); got != 2 {
		t.Errorf("messages_total = %v, want 2", got)
	}
}

func TestImmediateEventFlushesPendingFrame(t *testing.T) {
	h := newHarness()
	rt := start(t, h, counter())

	click(button(rt))
	typeInto(input(rt), "hi")

	if h.sched.PendingFrames() != 0 {
		t.Errorf("PendingFrames() = %d, want the frame cancelled", h.sched.PendingFrames())
	}
	expectView(t, rt, model{count: 1, text: "hi"})
	if h.sched.Frame() != 0 {
		t.Error("a cancelled frame still ran")
	}
}

func TestRemoteEventPayloads(t *testing.T) {
	h := newHarness()
	rt := start(t, h, counter(), WithRemoteEvents(true))

	typeInto(input(rt), "remote")
	if rt.Model().text != "remote" {
		t.Errorf("text = %q, want remote", rt.Model().text)
	}
}

func TestQueuedMessagesApplyInOrder(t *testing.T) {
	h := newHarness()
	a := App[model, msg]{
		Init: func() (model, Effect[msg]) {
			return model{}, From(func(act Actions[msg]) {
				act.Dispatch(msg{kind: "a"}, false)
				act.Dispatch(msg{kind: "b"}, false)
			})
		},
		Update: func(m model, ms msg) (model, Effect[msg]) {
			m = update(m, ms)
			if ms.kind == "a" {
				return m, Send(msg{kind: "c"})
			}
			return m, None[msg]()
		},
		View: view,
	}
	rt := start(t, h, a)

	if diff := cmp.Diff([]string{"a", "b", "c"}, rt.Model().log); diff != "" {
		t.Errorf("update order (-want +got):\n%s", diff)
	}
	if got := testutil.ToFloat64(h.metrics.renders); got != 1 {
		t.Errorf("renders_total = %v, want 1", got)
	}
	if h.sched.PendingFrames() != 0 {
		t.Error("queued messages scheduled an extra frame")
	}
}

func TestPaintEffects(t *testing.T) {
	h := newHarness()
	var seen []string
	a := App[model, msg]{
		Init: func() (model, Effect[msg]) { return model{}, None[msg]() },
		Update: func(m model, ms msg) (model, Effect[msg]) {
			m = update(m, ms)
			if ms.kind != "inc" {
				return m, None[msg]()
			}
			return m, Batch(
				BeforePaint(func(act Actions[msg]) {
					seen = append(seen, "before:"+render.SurfaceString(act.Root().ChildAt(0).ChildAt(0)))
					act.Dispatch(msg{kind: "text", text: "painted"}, false)
				}),
				AfterPaint(func(act Actions[msg]) {
					seen = append(seen, "after")
				}),
			)
		},
		View: view,
	}
	rt := start(t, h, a)

	click(button(rt))
	if len(seen) != 0 {
		t.Fatal("paint effects ran before the render")
	}

	h.sched.Frame()
	if diff := cmp.Diff([]string{"before:1"}, seen); diff != "" {
		t.Errorf("after first frame (-want +got):\n%s", diff)
	}
	expectView(t, rt, model{count: 1, text: "painted"})

	h.sched.Frame()
	if diff := cmp.Diff([]string{"before:1", "after"}, seen); diff != "" {
		t.Errorf("after second frame (-want +got):\n%s", diff)
	}
	if h.sched.PendingFrames() != 0 {
		t.Errorf("PendingFrames() = %d, want 0", h.sched.PendingFrames())
	}
}

func TestEmit(t *testing.T) {
	h := newHarness()
	rt := start(t, h, counter())

	var got *surface.Event
	h.doc.Body().AddEventListener("saved", false, func(ev *surface.Event) { got = ev })
	rt.Emit("saved", map[string]any{"id": 7})

	if got == nil {
		t.Fatal("emitted event did not bubble to the body")
	}
	if got.Target != rt.Root() || got.Detail["id"] != 7 {
		t.Errorf("event = %+v", got)
	}
}

func TestDroppedEvents(t *testing.T) {
	h := newHarness()
	failing := vdom.On("click", func(any) (any, error) { return nil, errors.New("nope") })
	a := Simple(func() model { return model{} }, update, func(m model) *vdom.VNode {
		return vdom.Div(
			vdom.Button(failing, "fail"),
			vdom.Button(vdom.OnClick(42), "wrong type"),
		)
	})
	rt := start(t, h, a)

	click(rt.Root().ChildAt(0).ChildAt(0))
	click(rt.Root().ChildAt(0).ChildAt(1))

	if len(rt.Model().log) != 0 {
		t.Errorf("updates ran: %v", rt.Model().log)
	}
	for reason, want := range map[string]float64{DropDecode: 1, DropType: 1, DropUnhandled: 0} {
		if got := testutil.ToFloat64(h.metrics.dropped.WithLabelValues(reason)); got != want {
			t.Errorf("events_dropped_total{%s} = %v, want %v", reason, got, want)
		}
	}
}

func TestAdoptsExistingMarkup(t *testing.T) {
	h := newHarness()
	mount := h.doc.Body().ChildAt(0)
	div := h.doc.CreateElement("", "div")
	b := h.doc.CreateElement("", "button")
	b.InsertBefore(h.doc.CreateText("0"), nil)
	div.InsertBefore(b, nil)
	mount.InsertBefore(div, nil)

	rt := start(t, h, counter())

	expectView(t, rt, model{})
	if button(rt) != b {
		t.Error("prerendered button was replaced instead of adopted")
	}
}

func TestMetricsRecordChanges(t *testing.T) {
	h := newHarness()
	rt := start(t, h, counter())
	click(button(rt))
	h.sched.Frame()

	if got := testutil.ToFloat64(h.metrics.changes.WithLabelValues("ReplaceText")); got != 1 {
		t.Errorf("patch_changes_total{ReplaceText} = %v, want 1", got)
	}
	if n, err := testutil.GatherAndCount(h.reg, "plop_renders_total"); err != nil || n != 1 {
		t.Errorf("GatherAndCount() = %d, %v", n, err)
	}
}

func TestEffectHelpers(t *testing.T) {
	noop := func(Actions[int]) {}
	if !None[int]().IsNone() {
		t.Error("None() is not empty")
	}
	e := Batch(From(noop), BeforePaint(noop), AfterPaint(noop), From(noop))
	if len(e.Synchronous) != 2 || len(e.BeforePaint) != 1 || len(e.AfterPaint) != 1 {
		t.Errorf("Batch() = %d/%d/%d", len(e.Synchronous), len(e.BeforePaint), len(e.AfterPaint))
	}
}

func TestRenderObserverSeesEveryPatch(t *testing.T) {
	h := newHarness()
	var patches []*vdom.Patch
	rt := start(t, h, counter(), WithRenderObserver(func(p *vdom.Patch) {
		patches = append(patches, p)
	}))
	if len(patches) != 1 {
		t.Fatalf("observed %d patches after start, want 1", len(patches))
	}

	click(button(rt))
	h.sched.Frame()
	if len(patches) != 2 {
		t.Fatalf("observed %d patches after click, want 2", len(patches))
	}
	if got := patches[1].CountChanges()[vdom.OpReplaceText]; got != 1 {
		t.Errorf("ReplaceText changes = %d, want 1", got)
	}
}

func TestHandleEventFromRemoteSurface(t *testing.T) {
	h := newHarness()
	rt := start(t, h, counter())

	path := vdom.Root.Add(0, "").Add(0, "").String()
	rt.HandleEvent(path, "click", map[string]any{}, true)
	if got := render.SurfaceString(button(rt)); got != "1" {
		t.Errorf("button = %q after remote click, want 1", got)
	}

	rt.HandleEvent(path, "dblclick", map[string]any{}, true)
	if rt.Model().count != 1 {
		t.Errorf("count = %d after unhandled event", rt.Model().count)
	}
}
