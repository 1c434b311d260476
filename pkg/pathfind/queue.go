package pathfind

// item is a queue entry. Entries are never updated in place; a better
// route pushes a new entry and the old one is dropped when popped.
type item struct {
	id  int64
	f   float64
	seq int
}

// queue orders by f, then by insertion so ties resolve first-in first-out.
type queue []item

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}

func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queue) Push(x any) { *q = append(*q, x.(item)) }

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}
