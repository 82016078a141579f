package dag

import "container/heap"

// readyQueue releases nodes in insertion order.
type readyQueue struct {
	items nodeHeap
}

func (q *readyQueue) Len() int { return len(q.items) }

func (q *readyQueue) push(n *node) { heap.Push(&q.items, n) }

func (q *readyQueue) pop() *node { return heap.Pop(&q.items).(*node) }

type nodeHeap []*node

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].index < h[j].index }
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(*node)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}
