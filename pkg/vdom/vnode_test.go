package vdom

import "testing"

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindFragment, "Fragment"},
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindRaw, "Raw"},
		{VKind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("VKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestVoidInference(t *testing.T) {
	tests := []struct {
		tag       string
		namespace string
		want      bool
	}{
		{"img", "", true},
		{"input", "", true},
		{"br", "", true},
		{"wbr", "", true},
		{"div", "", false},
		{"span", "", false},
		{"img", NamespaceSVG, false},
	}
	for _, tt := range tests {
		n := Namespaced(tt.namespace, tt.tag, nil, nil)
		if n.Void != tt.want {
			t.Errorf("Namespaced(%q, %q).Void = %v, want %v", tt.namespace, tt.tag, n.Void, tt.want)
		}
	}

	if !ForceVoid(Div()).Void {
		t.Error("ForceVoid(div).Void = false, want true")
	}
}

func TestClassMerge(t *testing.T) {
	n := Element("div", []Attribute{Class("x"), Class("y")}, nil)
	if len(n.Attrs) != 1 {
		t.Fatalf("len(Attrs) = %d, want 1", len(n.Attrs))
	}
	if n.Attrs[0].Name != "class" || n.Attrs[0].Value != "x y" {
		t.Errorf("Attrs[0] = %s=%q, want class=\"x y\"", n.Attrs[0].Name, n.Attrs[0].Value)
	}
}

func TestStyleMerge(t *testing.T) {
	n := Div(Style("color", "red"), ID("a"), Style("margin", "0"))
	want := []struct{ name, value string }{
		{"id", "a"},
		{"style", "color:red;margin:0"},
	}
	if len(n.Attrs) != len(want) {
		t.Fatalf("len(Attrs) = %d, want %d", len(n.Attrs), len(want))
	}
	for i, w := range want {
		if n.Attrs[i].Name != w.name || n.Attrs[i].Value != w.value {
			t.Errorf("Attrs[%d] = %s=%q, want %s=%q", i, n.Attrs[i].Name, n.Attrs[i].Value, w.name, w.value)
		}
	}
}

func TestPrepareSortsByName(t *testing.T) {
	attrs := Prepare([]Attribute{Attr("title", "t"), Attr("alt", "a"), Attr("id", "i")})
	names := []string{attrs[0].Name, attrs[1].Name, attrs[2].Name}
	want := []string{"alt", "id", "title"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestPrepareKeepsPropertyClassSeparate(t *testing.T) {
	attrs := Prepare([]Attribute{Class("a"), Prop("class", "b")})
	if len(attrs) != 2 {
		t.Errorf("len = %d, want 2 (only attributes merge)", len(attrs))
	}
}

func TestAdvance(t *testing.T) {
	inner := Fragment([]*VNode{Text("a"), Text("b")})
	outer := Fragment([]*VNode{Text("x"), inner})

	if got := Advance(Text("a")); got != 1 {
		t.Errorf("Advance(text) = %d, want 1", got)
	}
	if got := Advance(inner); got != 3 {
		t.Errorf("Advance(inner) = %d, want 3", got)
	}
	// x, inner head, a, b
	if outer.ChildrenCount != 4 {
		t.Errorf("outer.ChildrenCount = %d, want 4", outer.ChildrenCount)
	}
	if got := Advance(outer); got != 5 {
		t.Errorf("Advance(outer) = %d, want 5", got)
	}
}

func TestToKeyedFragment(t *testing.T) {
	frag := Fragment([]*VNode{
		ToKeyed("a", Text("A")),
		Fragment([]*VNode{ToKeyed("b", Text("B"))}),
		Text("plain"),
	})
	keyed := ToKeyed("row", frag)

	if keyed.Key != "row" {
		t.Errorf("Key = %q, want row", keyed.Key)
	}
	if got := keyed.Children[0].Key; got != "row::a" {
		t.Errorf("Children[0].Key = %q, want row::a", got)
	}
	if _, ok := keyed.KeyedChildren["row::a"]; !ok {
		t.Error("KeyedChildren missing row::a")
	}
	nested := keyed.Children[1]
	if nested.Key != "" {
		t.Errorf("nested fragment Key = %q, want empty", nested.Key)
	}
	if got := nested.Children[0].Key; got != "row::1::b" {
		t.Errorf("nested child Key = %q, want row::1::b", got)
	}
	if got := keyed.Children[2].Key; got != "" {
		t.Errorf("plain child Key = %q, want empty", got)
	}
	if frag.Children[0].Key != "a" {
		t.Error("ToKeyed mutated its input")
	}
}

func TestKeyedElementIndex(t *testing.T) {
	ul := KeyedElement("ul", nil, []KeyedChild{
		Keyed("a", Li("A")),
		Keyed("b", Li("B")),
	})
	if len(ul.KeyedChildren) != 2 {
		t.Fatalf("len(KeyedChildren) = %d, want 2", len(ul.KeyedChildren))
	}
	if ul.KeyedChildren["b"] != ul.Children[1] {
		t.Error("KeyedChildren[b] is not Children[1]")
	}
}

func TestBuilderArguments(t *testing.T) {
	n := Div(
		Class("card"),
		nil,
		AttrIf(false, ID("hidden")),
		"hello",
		Span("x"),
		Keyed("k", P()),
		[]*VNode{Em(), nil},
	)
	if len(n.Attrs) != 1 {
		t.Errorf("len(Attrs) = %d, want 1", len(n.Attrs))
	}
	if len(n.Children) != 4 {
		t.Fatalf("len(Children) = %d, want 4", len(n.Children))
	}
	if n.Children[0].Kind != KindText || n.Children[0].Text != "hello" {
		t.Errorf("Children[0] = %v %q, want text hello", n.Children[0].Kind, n.Children[0].Text)
	}
	if n.KeyedChildren["k"] != n.Children[2] {
		t.Error("keyed child not indexed")
	}
}

func TestMapComposes(t *testing.T) {
	n := Map(Map(Div(), func(m any) any { return m.(int) + 1 }), func(m any) any { return m.(int) * 10 })
	if got := n.Mapper(1); got != 20 {
		t.Errorf("Mapper(1) = %v, want 20", got)
	}
}
