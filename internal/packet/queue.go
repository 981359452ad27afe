package packet

// Queue is a bounded per-neighbor FIFO of outgoing packets, sized by the
// MAC_QUEUE_SIZE configuration field (spec.md §4.7, §7.2: queue overflow
// is a counted drop, never a panic or a silent expansion).
type Queue struct {
	limit int
	items []*Packet
}

// NewQueue builds a Queue that rejects enqueues once it holds limit
// packets.
func NewQueue(limit int) *Queue {
	if limit <= 0 {
		limit = 1
	}
	return &Queue{limit: limit}
}

// Enqueue appends p to the tail of the queue. It reports false without
// modifying the queue when the queue is already full; the caller is
// responsible for counting the drop and completing the packet.
func (q *Queue) Enqueue(p *Packet) bool {
	if len(q.items) >= q.limit {
		return false
	}
	q.items = append(q.items, p)
	return true
}

// Dequeue removes and returns the head of the queue, or nil if empty.
func (q *Queue) Dequeue() *Packet {
	if len(q.items) == 0 {
		return nil
	}
	p := q.items[0]
	q.items = q.items[1:]
	return p
}

// Peek returns the head of the queue without removing it, or nil if
// empty.
func (q *Queue) Peek() *Packet {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

// PeekMatching returns the first queued packet satisfying pred without
// removing it, or nil if none match. Used by the scheduler to find a
// packet pinned to the cell currently being serviced.
func (q *Queue) PeekMatching(pred func(*Packet) bool) *Packet {
	for _, p := range q.items {
		if pred(p) {
			return p
		}
	}
	return nil
}

// Remove deletes the first occurrence of p from the queue, preserving
// FIFO order of the rest. It reports whether p was found.
func (q *Queue) Remove(p *Packet) bool {
	for i, item := range q.items {
		if item == p {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Len reports the number of packets currently queued.
func (q *Queue) Len() int { return len(q.items) }

// Full reports whether the queue is at capacity.
func (q *Queue) Full() bool { return len(q.items) >= q.limit }

// Drain removes and returns every queued packet, in FIFO order, leaving
// the queue empty. Used when a desynchronized node flushes its queues.
func (q *Queue) Drain() []*Packet {
	items := q.items
	q.items = nil
	return items
}
