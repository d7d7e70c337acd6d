package vdom

import (
	"errors"
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegistryHandle(t *testing.T) {
	_, reg := Diff(NewRegistry(), None(), Div(Button(OnClick("save"))))

	next, msg, ok, err := reg.Handle("0\n0", "click", nil)
	if err != nil || !ok {
		t.Fatalf("Handle = ok %v err %v, want ok", ok, err)
	}
	if msg != "save" {
		t.Errorf("msg = %v, want save", msg)
	}
	if next == reg {
		t.Error("Handle returned the same registry")
	}

	_, _, ok, _ = reg.Handle("0\n0", "dblclick", nil)
	if ok {
		t.Error("Handle(unbound event) ok = true, want false")
	}
}

func TestRegistryHandleDecodeError(t *testing.T) {
	boom := errors.New("boom")
	failing := On("input", func(any) (any, error) { return nil, boom })
	_, reg := Diff(nil, None(), Input(failing))

	_, msg, ok, err := reg.Handle("0", "input", map[string]any{})
	if ok || msg != nil {
		t.Errorf("Handle = (%v, %v), want no message", msg, ok)
	}
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestRegistryMapper(t *testing.T) {
	view := Map(Div(OnClick("inner")), func(m any) any { return "outer:" + m.(string) })
	_, reg := Diff(nil, None(), view)

	_, msg, ok, _ := reg.Handle("0", "click", nil)
	if !ok || msg != "outer:inner" {
		t.Errorf("msg = %v (ok %v), want outer:inner", msg, ok)
	}
}

func TestRegistryNotMutatedByDiff(t *testing.T) {
	base := NewRegistry()
	withClick := Div(OnClick(1))

	_, r1 := Diff(base, None(), withClick)
	if base.Len() != 0 {
		t.Errorf("base.Len() = %d, want 0", base.Len())
	}
	if r1.Len() != 1 {
		t.Fatalf("r1.Len() = %d, want 1", r1.Len())
	}

	_, r2 := Diff(r1, withClick, Div())
	if r2.Len() != 0 {
		t.Errorf("r2.Len() = %d, want 0", r2.Len())
	}
	if r1.Len() != 1 {
		t.Errorf("r1.Len() = %d after later diff, want 1", r1.Len())
	}
}

func TestRegistryDispatchGenerations(t *testing.T) {
	view := Input(OnInput(func(v string) any { return v }))
	_, reg := Diff(nil, None(), view)

	reg, _, _, _ = reg.Handle("0", "input", map[string]any{"target": map[string]any{"value": "a"}})
	if reg.HasDispatchedEvents("0") {
		t.Error("dispatch visible before the next diff")
	}

	_, reg = Diff(reg, view, view)
	if !reg.HasDispatchedEvents("0") {
		t.Error("dispatch not visible after one diff")
	}

	_, reg = Diff(reg, view, view)
	if reg.HasDispatchedEvents("0") {
		t.Error("dispatch still visible after two diffs")
	}
}

func TestRegistryKeyedPaths(t *testing.T) {
	list := KeyedElement("ul", nil, []KeyedChild{
		Keyed("a", Li(OnClick("A"))),
		Keyed("b", Li(OnClick("B"))),
	})
	_, reg := Diff(nil, None(), list)

	if !reg.Has("0\ta", "click") || !reg.Has("0\tb", "click") {
		t.Fatal("keyed handlers not registered by key")
	}

	reordered := KeyedElement("ul", nil, []KeyedChild{
		Keyed("b", Li(OnClick("B"))),
		Keyed("a", Li(OnClick("A"))),
	})
	_, reg = Diff(reg, list, reordered)
	if !reg.Has("0\ta", "click") || !reg.Has("0\tb", "click") {
		t.Error("handlers lost after reorder")
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}
}

func TestRegistryFragmentIndices(t *testing.T) {
	view := Div(Fragment([]*VNode{Button(OnClick(1)), Button(OnClick(2))}), Button(OnClick(3)))
	_, reg := Diff(nil, None(), view)

	// Fragment head occupies slot 0 inside the div.
	for _, path := range []string{"0\n1", "0\n2", "0\n3"} {
		if !reg.Has(path, "click") {
			t.Errorf("no click handler at %q", path)
		}
	}
}

func handlerKeys(r *Registry) []string {
	return slices.Sorted(maps.Keys(r.handlers))
}

func TestRegistryDropsHandlersOfShiftedNodes(t *testing.T) {
	texts := func(s ...string) *VNode {
		nodes := make([]*VNode, len(s))
		for i, v := range s {
			nodes[i] = Text(v)
		}
		return Fragment(nodes)
	}
	tests := []struct {
		name      string
		old, next *VNode
		gone      []string
	}{
		{
			name: "replaced after a grown fragment",
			old:  Div(Text("a"), Button(OnClick("stale"))),
			next: Div(texts("a", "b"), Text("c")),
			gone: []string{"0\n1"},
		},
		{
			name: "trailing removal after a shrunk fragment",
			old:  Div(texts("a", "b", "c"), Button(OnClick("stale"))),
			next: Div(texts("a")),
			gone: []string{"0\n4"},
		},
		{
			name: "kept node shifted right",
			old:  Div(texts("a"), Button(OnClick("x"))),
			next: Div(texts("a", "b"), Button(OnClick("x"))),
			gone: []string{"0\n2"},
		},
		{
			name: "kept subtree shifted left",
			old:  Div(texts("a", "b"), Div(Button(OnClick("x")))),
			next: Div(texts("a"), Div(Button(OnClick("x")))),
			gone: []string{"0\n3\n0"},
		},
		{
			name: "removed before a keyed match",
			old: KeyedElement("ul", nil, []KeyedChild{
				Keyed("a", Li(OnClick("a"))),
				Keyed("b", Li(OnClick("b"))),
			}),
			next: KeyedElement("ul", nil, []KeyedChild{
				Keyed("b", Li(OnClick("b"))),
			}),
			gone: []string{"0\ta"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, before := Diff(nil, None(), tt.old)
			_, after := Diff(before, tt.old, tt.next)
			_, fresh := Diff(nil, None(), tt.next)

			if d := cmp.Diff(handlerKeys(fresh), handlerKeys(after)); d != "" {
				t.Errorf("handlers mismatch (-fresh +diffed):\n%s", d)
			}
			for _, path := range tt.gone {
				if _, msg, ok, _ := after.Handle(path, "click", nil); ok {
					t.Errorf("Handle(%q) = %v, want no handler", path, msg)
				}
			}
		})
	}
}

func TestRegistryKeepsHandlerBoundAtRemovedPath(t *testing.T) {
	old := Div(Text("a"), Button(OnClick("old")))
	next := Div(Fragment([]*VNode{Button(OnClick("new"))}), Text("a"))

	_, reg := Diff(nil, None(), old)
	_, reg = Diff(reg, old, next)

	_, msg, ok, _ := reg.Handle("0\n1", "click", nil)
	if !ok || msg != "new" {
		t.Errorf("Handle = %v (ok %v), want new", msg, ok)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
}

// randomView builds a small tree mixing fragments, keyed lists and handlers.
func randomView(rng *rand.Rand, depth int) *VNode {
	children := make([]*VNode, rng.IntN(4))
	for i := range children {
		children[i] = randomNode(rng, depth)
	}
	return Div(children)
}

func randomNode(rng *rand.Rand, depth int) *VNode {
	kind := rng.IntN(6)
	if depth == 0 {
		kind %= 2
	}
	switch kind {
	case 0:
		return Text("t")
	case 1:
		return Button(OnClick(rng.IntN(3)))
	case 2:
		children := make([]*VNode, rng.IntN(4))
		for i := range children {
			children[i] = randomNode(rng, depth-1)
		}
		return Fragment(children)
	case 3:
		keys := rng.Perm(5)[:rng.IntN(5)]
		items := make([]KeyedChild, len(keys))
		for i, k := range keys {
			items[i] = Keyed(fmt.Sprint(k), Li(OnClick(k), randomNode(rng, depth-1)))
		}
		return KeyedElement("ul", nil, items)
	default:
		return randomView(rng, depth-1)
	}
}

func TestRegistryMatchesFreshRegistration(t *testing.T) {
	for seed := range uint64(200) {
		rng := rand.New(rand.NewPCG(seed, 7))
		views := []*VNode{randomView(rng, 3), randomView(rng, 3), randomView(rng, 3)}

		_, reg := Diff(nil, None(), views[0])
		for i := 1; i < len(views); i++ {
			_, reg = Diff(reg, views[i-1], views[i])
			_, fresh := Diff(nil, None(), views[i])
			if d := cmp.Diff(handlerKeys(fresh), handlerKeys(reg)); d != "" {
				t.Fatalf("seed %d, step %d: handlers mismatch (-fresh +diffed):\n%s", seed, i, d)
			}
		}
	}
}
