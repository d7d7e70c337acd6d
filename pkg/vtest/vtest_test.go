package vtest_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/vango-dev/plop/pkg/app"
	"github.com/vango-dev/plop/pkg/vdom"
	"github.com/vango-dev/plop/pkg/vtest"
)

type todo struct {
	draft string
	items []string
	count int
}

type todoMsg struct {
	kind  string
	value string
}

func todoView(m todo) *vdom.VNode {
	items := make([]any, 0, len(m.items))
	for _, it := range m.items {
		items = append(items, vdom.Li(it))
	}
	return vdom.Div(
		vdom.Input(
			vdom.ID("draft"),
			vdom.Debounce(vdom.OnInput(func(v string) any { return todoMsg{kind: "draft", value: v} }), 100*time.Millisecond),
			vdom.OnKeyDown(func(k string) any { return todoMsg{kind: "key", value: k} }),
		),
		vdom.P(vdom.ID("echo"), m.draft),
		vdom.Button(vdom.ID("inc"), vdom.OnClick(todoMsg{kind: "inc"}), "+"),
		vdom.Button(vdom.ID("now"), vdom.Immediate(vdom.OnClick(todoMsg{kind: "inc"}), true), "!"),
		vdom.Span(vdom.ID("count"), strconv.Itoa(m.count)),
		vdom.Ul(items...),
	)
}

func todoUpdate(m todo, msg todoMsg) todo {
	switch msg.kind {
	case "draft":
		m.draft = msg.value
	case "key":
		if msg.value == "Enter" && m.draft != "" {
			m.items = append(m.items, m.draft)
			m.draft = ""
		}
	case "inc":
		m.count++
	}
	return m
}

func todoApp() app.App[todo, todoMsg] {
	return app.Simple(func() todo { return todo{} }, todoUpdate, todoView)
}

func TestStartRendersView(t *testing.T) {
	h := vtest.Start(t, todoApp())
	h.ExpectView(todoView(todo{}))
	if h.Sched.PendingFrames() != 0 {
		t.Errorf("PendingFrames() = %d after start, want 0", h.Sched.PendingFrames())
	}
}

func TestClickRendersOnFrame(t *testing.T) {
	h := vtest.Start(t, todoApp())
	h.Click("#inc")
	if h.Model().count != 1 {
		t.Fatalf("count = %d, want 1", h.Model().count)
	}
	h.ExpectContains(">0</span>")

	h.Settle()
	h.ExpectContains(">1</span>")
}

func TestImmediateClickRendersAtOnce(t *testing.T) {
	h := vtest.Start(t, todoApp())
	h.Click("#now")
	h.ExpectContains(">1</span>")
}

func TestDebouncedInputWaitsForClock(t *testing.T) {
	h := vtest.Start(t, todoApp())
	h.Input("#draft", "milk")
	if h.Model().draft != "" {
		t.Fatalf("draft = %q before the debounce elapsed", h.Model().draft)
	}

	h.Advance(99 * time.Millisecond)
	if h.Model().draft != "" {
		t.Fatalf("draft = %q at 99ms", h.Model().draft)
	}

	h.Advance(time.Millisecond)
	h.Settle()
	if h.Model().draft != "milk" {
		t.Fatalf("draft = %q, want milk", h.Model().draft)
	}
	h.ExpectContains(">milk</p>")
}

func TestKeyDownAddsItem(t *testing.T) {
	h := vtest.Start(t, todoApp())
	h.Input("#draft", "eggs")
	h.Advance(100 * time.Millisecond)
	h.KeyDown("#draft", "Enter")
	h.Settle()

	want := todo{items: []string{"eggs"}}
	h.ExpectView(todoView(want))
	if got := h.Model(); got.draft != "" || len(got.items) != 1 {
		t.Errorf("model = %+v, want %+v", got, want)
	}
}

func TestRenderAssertions(t *testing.T) {
	node := vdom.Div(
		vdom.Class("card active"),
		vdom.H1("Welcome"),
	)
	vtest.ExpectContains(t, node, "Welcome")
	vtest.ExpectNotContains(t, node, "Goodbye")
	vtest.ExpectElement(t, node, "h1")
	vtest.ExpectAttribute(t, node, "class", "card active")

	if got := vtest.RenderToString(vdom.P("x")); got != "<p>x</p>" {
		t.Errorf("RenderToString() = %q", got)
	}
}
