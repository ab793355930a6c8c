package engine

import (
	"sort"
	"strings"
	"sync"
)

// itemQueue is a FIFO queue of items.
//
// Engines are single-threaded, but a child engine resuming its parent
// enqueues into the parent's queue while the parent is inside a rule's
// Apply, so access is serialized with a mutex.
type itemQueue struct {
	mu    sync.Mutex
	items []*Item
}

func newItemQueue() *itemQueue {
	return &itemQueue{items: make([]*Item, 0, 4)}
}

// Enqueue adds an item to the back of the queue.
func (q *itemQueue) Enqueue(it *Item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, it)
}

// TryDequeue removes and returns the front item.
// Returns (nil, false) if the queue is empty.
func (q *itemQueue) TryDequeue() (*Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	it := q.items[0]

	// CRITICAL: nil out the slot so the backing array does not retain the item.
	q.items[0] = nil
	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return it, true
}

// Peek returns the front item without removing it.
func (q *itemQueue) Peek() (*Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	return q.items[0], true
}

// Len returns the current queue length.
func (q *itemQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Since returns the items at positions >= n.
func (q *itemQueue) Since(n int) []*Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n >= len(q.items) {
		return nil
	}
	out := make([]*Item, len(q.items)-n)
	copy(out, q.items[n:])
	return out
}

// Fingerprint renders the queue contents as an order-insensitive key.
// Two queues holding the same multiset of payloads share a fingerprint.
func (q *itemQueue) Fingerprint() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	parts := make([]string, len(q.items))
	for i, it := range q.items {
		parts[i] = it.Node.String()
	}
	sort.Strings(parts)
	return strings.Join(parts, "\x00")
}
