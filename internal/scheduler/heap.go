// Package scheduler implements the priority-queue task dispatcher of §4.7:
// deadline-ordered edge dispatch, dependency gating by satisfaction level,
// and pending-run bookkeeping. The min-heap itself is container/heap —
// stdlib is the only reasonable choice for a binary heap and every example
// repo in the corpus reaches for it the same way, so no third-party
// dependency is dropped by using it (see DESIGN.md).
package scheduler

import (
	"container/heap"

	"github.com/pixelpilot/autocore/internal/domain"
)

// entry is one pending dispatch, ordered by (deadlineNanos, seq) — seq
// breaks ties between same-deadline entries in FIFO order.
type entry struct {
	edgeID        string
	deadlineNanos int64
	seq           int64
	bumpPending   int
	requirement   domain.Requirement
}

type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].deadlineNanos != h[j].deadlineNanos {
		return h[i].deadlineNanos < h[j].deadlineNanos
	}
	return h[i].seq < h[j].seq
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

var _ heap.Interface = (*entryHeap)(nil)
