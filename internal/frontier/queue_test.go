package frontier_test

import (
	"testing"

	"github.com/rohmanhakim/docs-crawler/internal/frontier"
)

func TestPriorityQueue_EmptyPopReturnsFalse(t *testing.T) {
	q := frontier.NewPriorityQueue()
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
	_, ok := q.Pop()
	if ok {
		t.Error("Pop() on empty queue returned ok=true")
	}
}

func TestPriorityQueue_PopsHighestPriorityFirst(t *testing.T) {
	q := frontier.NewPriorityQueue()
	q.Push(frontier.UrlItem{URL: "low", Priority: 1.0})
	q.Push(frontier.UrlItem{URL: "high", Priority: 9.0})
	q.Push(frontier.UrlItem{URL: "mid", Priority: 5.0})

	want := []string{"high", "mid", "low"}
	for _, w := range want {
		item, ok := q.Pop()
		if !ok {
			t.Fatalf("expected an item, queue emptied early")
		}
		if item.URL != w {
			t.Errorf("Pop() = %q, want %q", item.URL, w)
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len() after draining = %d, want 0", q.Len())
	}
}

func TestPriorityQueue_CarriesDepthAndPriorityThrough(t *testing.T) {
	q := frontier.NewPriorityQueue()
	q.Push(frontier.UrlItem{URL: "http://example.com/a", Depth: 3, Priority: 2.5})

	item, ok := q.Pop()
	if !ok {
		t.Fatal("expected an item")
	}
	if item.Depth != 3 || item.Priority != 2.5 || item.URL != "http://example.com/a" {
		t.Errorf("Pop() = %+v, want Depth=3 Priority=2.5 URL=http://example.com/a", item)
	}
}
