package seq

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// valid checks the size and balance annotations of every node.
func valid[T any](t *testing.T, s Seq[T]) {
	t.Helper()
	var walk func(n *node[T]) (int, int)
	walk = func(n *node[T]) (int, int) {
		if n == nil {
			return 0, 0
		}
		ls, lh := walk(n.left)
		rs, rh := walk(n.right)
		if n.size != ls+rs+1 {
			t.Fatalf("size annotation %d, want %d", n.size, ls+rs+1)
		}
		if n.height != max(lh, rh)+1 {
			t.Fatalf("height annotation %d, want %d", n.height, max(lh, rh)+1)
		}
		if lh-rh > 1 || rh-lh > 1 {
			t.Fatalf("unbalanced node: heights %d and %d", lh, rh)
		}
		return n.size, n.height
	}
	walk(s.root)
}

func ints(n int) Seq[int] {
	return Initialise(n, func(i int) int { return i })
}

func TestInitialiseAndGet(t *testing.T) {
	s := ints(100)
	valid(t, s)
	if s.Len() != 100 {
		t.Fatalf("Len() = %d", s.Len())
	}
	for i := 0; i < 100; i++ {
		if v, ok := s.Get(i); !ok || v != i {
			t.Fatalf("Get(%d) = %d, %v", i, v, ok)
		}
	}
	for _, i := range []int{-1, 100} {
		if _, ok := s.Get(i); ok {
			t.Errorf("Get(%d) succeeded", i)
		}
	}
	if !Initialise(0, func(int) int { return 0 }).IsEmpty() {
		t.Error("Initialise(0) is not empty")
	}
}

func TestSetIsPersistent(t *testing.T) {
	s := Of("a", "b", "c")
	s2, ok := s.Set(1, "B")
	if !ok {
		t.Fatal("Set(1) failed")
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, s.ToSlice()); diff != "" {
		t.Errorf("original changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "B", "c"}, s2.ToSlice()); diff != "" {
		t.Errorf("updated (-want +got):\n%s", diff)
	}
	if s3, ok := s.Set(3, "x"); ok || s3.root != s.root {
		t.Error("Set out of range changed the sequence")
	}
}

func TestInsertClamped(t *testing.T) {
	tests := []struct {
		index int
		want  []string
	}{
		{-5, []string{"x", "a", "b", "c"}},
		{0, []string{"x", "a", "b", "c"}},
		{1, []string{"a", "x", "b", "c"}},
		{3, []string{"a", "b", "c", "x"}},
		{99, []string{"a", "b", "c", "x"}},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.index), func(t *testing.T) {
			got := Of("a", "b", "c").InsertClamped(tt.index, "x")
			valid(t, got)
			if diff := cmp.Diff(tt.want, got.ToSlice()); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	s := Of(1, 2, 3, 4)
	got, ok := s.Delete(2)
	if !ok {
		t.Fatal("Delete(2) failed")
	}
	valid(t, got)
	if diff := cmp.Diff([]int{1, 2, 4}, got.ToSlice()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	for _, i := range []int{-1, 4} {
		if out := s.TryDelete(i); out.root != s.root {
			t.Errorf("TryDelete(%d) changed the sequence", i)
		}
	}
}

func TestSplitAndConcat(t *testing.T) {
	s := ints(37)
	for i := -1; i <= 38; i++ {
		l, r := s.Split(i)
		valid(t, l)
		valid(t, r)
		want := clamp(i, 37)
		if l.Len() != want || r.Len() != 37-want {
			t.Fatalf("Split(%d) lengths = %d, %d", i, l.Len(), r.Len())
		}
		joined := Concat(l, r)
		valid(t, joined)
		if diff := cmp.Diff(s.ToSlice(), joined.ToSlice()); diff != "" {
			t.Fatalf("Concat(Split(%d)) (-want +got):\n%s", i, diff)
		}
	}
}

func TestSplitOutOfRangeKeepsOriginal(t *testing.T) {
	s := ints(5)
	if l, r := s.Split(0); !l.IsEmpty() || r.root != s.root {
		t.Error("Split(0) did not return the original on the right")
	}
	if l, r := s.Split(9); l.root != s.root || !r.IsEmpty() {
		t.Error("Split(9) did not return the original on the left")
	}
}

func TestConcatUnevenHeights(t *testing.T) {
	small, large := ints(3), Map(ints(500), func(i int) int { return i + 3 })
	got := Concat(small, large)
	valid(t, got)
	if got.Len() != 503 {
		t.Fatalf("Len() = %d", got.Len())
	}
	for i := 0; i < 503; i++ {
		if v, _ := got.Get(i); v != i {
			t.Fatalf("Get(%d) = %d", i, v)
		}
	}
	valid(t, Concat(large, small))
}

func TestAppendPrependStayBalanced(t *testing.T) {
	var s Seq[int]
	for i := 0; i < 200; i++ {
		s = s.Append(i)
	}
	for i := -1; i >= -50; i-- {
		s = s.Prepend(i)
	}
	valid(t, s)
	if first, _ := s.Get(0); first != -50 {
		t.Errorf("first = %d", first)
	}
	if last, _ := s.Get(s.Len() - 1); last != 199 {
		t.Errorf("last = %d", last)
	}
	if s.root.height > 12 {
		t.Errorf("height %d for %d items", s.root.height, s.Len())
	}
}

func TestFoldAndFind(t *testing.T) {
	s := Of("a", "b", "c")
	if got := Fold(s, "", func(acc, v string) string { return acc + v }); got != "abc" {
		t.Errorf("Fold() = %q", got)
	}
	if got := FoldRight(s, "", func(acc, v string) string { return acc + v }); got != "cba" {
		t.Errorf("FoldRight() = %q", got)
	}
	if v, ok := s.Find(func(v string) bool { return v > "a" }); !ok || v != "b" {
		t.Errorf("Find() = %q, %v", v, ok)
	}
	if i := s.FindIndex(func(v string) bool { return v == "c" }); i != 2 {
		t.Errorf("FindIndex() = %d", i)
	}
	if i := s.FindIndex(func(v string) bool { return v == "z" }); i != -1 {
		t.Errorf("FindIndex(missing) = %d", i)
	}
	if _, ok := s.Find(func(string) bool { return false }); ok {
		t.Error("Find(never) succeeded")
	}
}

func TestIteratorsStopEarly(t *testing.T) {
	var seen []int
	for i, v := range ints(10).All() {
		if i == 3 {
			break
		}
		seen = append(seen, v)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, seen); diff != "" {
		t.Errorf("All() (-want +got):\n%s", diff)
	}

	seen = nil
	for i := range ints(4).Backward() {
		seen = append(seen, i)
	}
	if diff := cmp.Diff([]int{3, 2, 1, 0}, seen); diff != "" {
		t.Errorf("Backward() (-want +got):\n%s", diff)
	}
}
