package frontier

import "container/heap"

// PriorityQueue is a max-heap of UrlItem ordered by Priority descending:
// Pop always returns the highest-priority item currently enqueued. Push
// and Pop are O(log n); Len and Peek are O(1).
type PriorityQueue struct {
	items urlItemHeap
}

// NewPriorityQueue returns an empty queue ready for use.
func NewPriorityQueue() *PriorityQueue {
	pq := &PriorityQueue{}
	heap.Init(&pq.items)
	return pq
}

// Push enqueues item.
func (q *PriorityQueue) Push(item UrlItem) {
	heap.Push(&q.items, item)
}

// Pop removes and returns the highest-priority item. The second return
// value is false when the queue is empty.
func (q *PriorityQueue) Pop() (UrlItem, bool) {
	if len(q.items) == 0 {
		return UrlItem{}, false
	}
	item := heap.Pop(&q.items).(UrlItem)
	return item, true
}

// Len reports how many items are currently enqueued.
func (q *PriorityQueue) Len() int {
	return len(q.items)
}

// urlItemHeap implements container/heap.Interface over []UrlItem, ordered
// so that the item with the largest Priority is the heap root.
type urlItemHeap []UrlItem

func (h urlItemHeap) Len() int { return len(h) }

func (h urlItemHeap) Less(i, j int) bool { return h[i].Priority > h[j].Priority }

func (h urlItemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *urlItemHeap) Push(x any) {
	*h = append(*h, x.(UrlItem))
}

func (h *urlItemHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
