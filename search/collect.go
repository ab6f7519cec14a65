package search

import (
	"container/heap"
	"context"
	"slices"
)

// Hit is a matching document and its score.
type Hit struct {
	Doc   uint32
	Score float32
}

// checkEvery is the number of documents between context checks.
const checkEvery = 256

// Collect drains it into hits in document order. A limit <= 0 collects
// every match.
func Collect(it DocIterator, limit int) []Hit {
	hits, _ := CollectContext(context.Background(), it, limit)
	return hits
}

// CollectContext is Collect with cancellation checked between documents.
func CollectContext(ctx context.Context, it DocIterator, limit int) ([]Hit, error) {
	var hits []Hit
	for n := 0; it.Next(); n++ {
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		hits = append(hits, Hit{Doc: it.Doc(), Score: it.Score()})
		if limit > 0 && len(hits) == limit {
			break
		}
	}
	return hits, nil
}

// Order is the ranking direction of TopK.
type Order uint8

const (
	// Descending ranks the highest scores first.
	Descending Order = iota
	// Ascending ranks the lowest scores first, e.g. nearest first with
	// RawDistance.
	Ascending
)

// hitQueue is a bounded heap whose top is the worst retained hit.
type hitQueue struct {
	order Order
	items []Hit
}

var _ heap.Interface = (*hitQueue)(nil)

// better reports whether a ranks before b. Ties rank the lower document first.
func (q *hitQueue) better(a, b Hit) bool {
	if a.Score != b.Score {
		if q.order == Ascending {
			return a.Score < b.Score
		}
		return a.Score > b.Score
	}
	return a.Doc < b.Doc
}

func (q *hitQueue) Len() int           { return len(q.items) }
func (q *hitQueue) Less(i, j int) bool { return q.better(q.items[j], q.items[i]) }
func (q *hitQueue) Swap(i, j int)      { q.items[i], q.items[j] = q.items[j], q.items[i] }
func (q *hitQueue) Push(x any)         { q.items = append(q.items, x.(Hit)) }

func (q *hitQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	q.items = old[:n-1]
	return item
}

// pushBounded inserts h into a heap of at most k hits. If the heap is full
// and h ranks after the top, it is skipped.
func (q *hitQueue) pushBounded(h Hit, k int) {
	if len(q.items) < k {
		heap.Push(q, h)
		return
	}
	if q.better(h, q.items[0]) {
		q.items[0] = h
		heap.Fix(q, 0)
	}
}

// TopK returns the k best hits of it, ranked by order.
func TopK(ctx context.Context, it DocIterator, k int, order Order) ([]Hit, error) {
	if k <= 0 {
		return nil, nil
	}
	q := &hitQueue{order: order, items: make([]Hit, 0, k)}
	for n := 0; it.Next(); n++ {
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		q.pushBounded(Hit{Doc: it.Doc(), Score: it.Score()}, k)
	}
	hits := q.items
	slices.SortFunc(hits, func(a, b Hit) int {
		switch {
		case q.better(a, b):
			return -1
		case q.better(b, a):
			return 1
		default:
			return 0
		}
	})
	return hits, nil
}
