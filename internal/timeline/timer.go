package timeline

// Callback is invoked when a timer fires. arg is whatever was passed to
// AddTimer, unboxed by the caller.
type Callback func(arg any)

// Handle identifies a scheduled timer for later removal. It stays valid
// even after the timer moves around inside the heap.
type Handle uint64

// timer is one entry in the timeline's heap. index tracks its current
// slot so RemoveTimer is O(log n) instead of a linear scan.
type timer struct {
	handle     Handle
	fireAt     float64
	interval   float64
	isPeriodic bool
	arg        any
	cb         Callback
	index      int
	seq        uint64 // insertion order, for stable tie-breaking on fireAt
}
