package pagination

import (
	"fmt"
	"testing"
)

type item struct {
	ID string
}

func itemID(i item) string { return i.ID }

func makeItems(from, to int) []item {
	var out []item
	for i := from; i < to; i++ {
		out = append(out, item{ID: fmt.Sprintf("p%d", i)})
	}
	return out
}

func TestCursor_MergeFullPage(t *testing.T) {
	c := NewCursor(1, 20, itemID)

	added := c.Merge(makeItems(0, 20))
	if added != 20 {
		t.Errorf("added = %d, want 20", added)
	}
	if c.Page() != 2 {
		t.Errorf("Page() = %d, want 2", c.Page())
	}
	if !c.HasMore() {
		t.Error("HasMore() should be true after a full page")
	}
}

func TestCursor_RepeatedPageDoesNotAdvance(t *testing.T) {
	c := NewCursor(1, 20, itemID)
	c.Merge(makeItems(0, 20))

	added := c.Merge(makeItems(0, 20))
	if added != 0 {
		t.Errorf("added = %d, want 0", added)
	}
	if c.Len() != 20 {
		t.Errorf("Len() = %d, want 20", c.Len())
	}
	if c.Page() != 2 {
		t.Errorf("Page() = %d, want 2 (unchanged)", c.Page())
	}
	if c.HasMore() {
		t.Error("HasMore() should be false after a repeated page")
	}
}

func TestCursor_OverlapKeepsFirstSeenOrder(t *testing.T) {
	c := NewCursor(1, 3, itemID)
	c.Merge([]item{{"a"}, {"b"}, {"c"}})
	added := c.Merge([]item{{"c"}, {"d"}, {"a"}})

	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
	want := []string{"a", "b", "c", "d"}
	got := c.Items()
	if len(got) != len(want) {
		t.Fatalf("Items() = %v", got)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("Items()[%d] = %s, want %s", i, got[i].ID, want[i])
		}
	}
	if !c.HasMore() {
		t.Error("full page with a new item should keep HasMore")
	}
}

func TestCursor_ShortPageEnds(t *testing.T) {
	c := NewCursor(0, 20, itemID)
	c.Merge(makeItems(0, 7))

	if c.HasMore() {
		t.Error("short page should end pagination")
	}
	if c.Page() != 1 {
		t.Errorf("Page() = %d, want 1", c.Page())
	}
}

func TestCursor_Reset(t *testing.T) {
	c := NewCursor(1, 20, itemID)
	c.Merge(makeItems(0, 5))
	c.Reset()

	if c.Len() != 0 || c.Page() != 1 || !c.HasMore() {
		t.Errorf("after Reset: len=%d page=%d hasMore=%v", c.Len(), c.Page(), c.HasMore())
	}

	// Items seen before the reset are new again
	if added := c.Merge(makeItems(0, 5)); added != 5 {
		t.Errorf("added after reset = %d, want 5", added)
	}
}

func TestCursor_NearEnd(t *testing.T) {
	c := NewCursor(1, 20, itemID)
	c.Merge(makeItems(0, 20))

	tests := []struct {
		index int
		want  bool
	}{
		{0, false},
		{14, false},
		{15, true},
		{19, true},
	}
	for _, tt := range tests {
		if got := c.NearEnd(tt.index, DefaultLookahead); got != tt.want {
			t.Errorf("NearEnd(%d) = %v, want %v", tt.index, got, tt.want)
		}
	}

	if _, ok := c.At(20); ok {
		t.Error("At() out of range should report false")
	}
	if got, ok := c.At(3); !ok || got.ID != "p3" {
		t.Errorf("At(3) = %v, %v", got, ok)
	}
}
