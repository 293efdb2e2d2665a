package vector

// queueItem pairs a node id with its distance from a reference vector.
type queueItem struct {
	id   int
	dist float32
}

// distQueue is a heap of queueItems for use with container/heap. With
// max set it is a max-heap on distance (holds the ef closest found so
// far, worst on top for cheap eviction); otherwise a min-heap (the
// expansion frontier, best first).
type distQueue struct {
	items []queueItem
	max   bool
}

func (q *distQueue) Len() int { return len(q.items) }

func (q *distQueue) Less(i, j int) bool {
	if q.max {
		return q.items[i].dist > q.items[j].dist
	}
	return q.items[i].dist < q.items[j].dist
}

func (q *distQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
}

func (q *distQueue) Push(x any) {
	q.items = append(q.items, x.(queueItem))
}

func (q *distQueue) Pop() any {
	old := q.items
	n := len(old)
	it := old[n-1]
	q.items = old[:n-1]
	return it
}

// top returns the root item without removing it.
func (q *distQueue) top() queueItem { return q.items[0] }
