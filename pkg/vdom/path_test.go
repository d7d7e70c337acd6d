package vdom

import "testing"

func TestPathString(t *testing.T) {
	tests := []struct {
		name string
		path *Path
		want string
	}{
		{"root", Root, ""},
		{"nil", nil, ""},
		{"index", Root.Add(0, ""), "0"},
		{"key", Root.Add(3, "a"), "a"},
		{"nested", Root.Add(0, "").Add(2, "").Add(1, "item"), "0\n2\titem"},
		{"key then index", Root.Add(0, "list").Add(4, ""), "list\n4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.path.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventKey(t *testing.T) {
	if got := Root.Add(0, "").Add(1, "").EventKey("click"); got != "0\n1\fclick" {
		t.Errorf("EventKey = %q, want %q", got, "0\n1\fclick")
	}
	if got := EventKey("", "click"); got != "click" {
		t.Errorf("EventKey(root) = %q, want click", got)
	}
}

func TestPathBuilderMatchesPath(t *testing.T) {
	var b PathBuilder
	// Walk from leaf to root.
	b.PrependKey("item")
	b.PrependIndex(2)
	b.PrependIndex(0)

	want := Root.Add(0, "").Add(2, "").Add(1, "item").String()
	if got := b.String(); got != want {
		t.Errorf("builder = %q, want %q", got, want)
	}

	var empty PathBuilder
	if got := empty.String(); got != "" {
		t.Errorf("empty builder = %q, want empty", got)
	}
}

func TestMatchesPrefix(t *testing.T) {
	tests := []struct {
		path, candidate string
		want            bool
	}{
		{"0", "0", true},
		{"0", "0\n1", true},
		{"0\n1", "0\n12", false},
		{"0\n1", "0\n1\tk", true},
		{"0\n1", "0", false},
		{"", "anything", true},
		{"a", "ab", false},
	}
	for _, tt := range tests {
		if got := MatchesPrefix(tt.path, tt.candidate); got != tt.want {
			t.Errorf("MatchesPrefix(%q, %q) = %v, want %v", tt.path, tt.candidate, got, tt.want)
		}
	}
}
