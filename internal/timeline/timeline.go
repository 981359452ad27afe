// Package timeline implements the simulator's single global clock: an
// Absolute Slot Number (ASN) counter, a real-seconds clock advanced by a
// table of per-slot durations, and a min-heap of timers dispatched as the
// clock crosses their fire time. See spec.md §4.1.
package timeline

import (
	"fmt"
	"math"

	"github.com/tschsim/engine/internal/heap"
)

// timerHeap adapts []*timer to heap.Interface, keeping each timer's index
// field current on every swap.
type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].fireAt != h[j].fireAt {
		return h[i].fireAt < h[j].fireAt
	}
	return h[i].seq < h[j].seq
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// Timeline advances ASN and a real-seconds clock through a repeating table
// of per-slot durations, firing due timers at each step.
type Timeline struct {
	asn         uint64
	seconds     float64
	slotTimings []float64
	h           timerHeap
	byHandle    map[Handle]*timer
	nextHandle  Handle
	nextSeq     uint64
}

// New builds a Timeline over the given slot-duration table (seconds). The
// table must have at least one entry; slotTimings[asn % len] is the
// duration of slot asn.
func New(slotTimings []float64) *Timeline {
	if len(slotTimings) == 0 {
		slotTimings = []float64{0.01}
	}
	return &Timeline{
		slotTimings: append([]float64(nil), slotTimings...),
		byHandle:    make(map[Handle]*timer),
	}
}

// Reset clears the heap and resets ASN/seconds to zero, per spec.md §4.1.
func (tl *Timeline) Reset() {
	tl.asn = 0
	tl.seconds = 0
	tl.h = nil
	tl.byHandle = make(map[Handle]*timer)
	tl.nextHandle = 0
	tl.nextSeq = 0
}

// ASN returns the current absolute slot number.
func (tl *Timeline) ASN() uint64 { return tl.asn }

// Seconds returns the current simulated-time clock.
func (tl *Timeline) Seconds() float64 { return tl.seconds }

// slotDuration returns the duration of slot i under the duration table.
func (tl *Timeline) slotDuration(i uint64) float64 {
	return tl.slotTimings[i%uint64(len(tl.slotTimings))]
}

// GetNextSeconds predicts the next slot boundary without advancing.
func (tl *Timeline) GetNextSeconds() float64 {
	return tl.seconds + tl.slotDuration(tl.asn)
}

// AddTimer inserts a timer firing at now+interval. Fails only if interval
// is not finite, per spec.md §4.1.
func (tl *Timeline) AddTimer(interval float64, isPeriodic bool, arg any, cb Callback) (Handle, error) {
	if math.IsNaN(interval) || math.IsInf(interval, 0) {
		return 0, fmt.Errorf("timeline: non-finite interval %v", interval)
	}
	tl.nextHandle++
	h := tl.nextHandle
	t := &timer{
		handle:     h,
		fireAt:     tl.seconds + interval,
		interval:   interval,
		isPeriodic: isPeriodic,
		arg:        arg,
		cb:         cb,
		seq:        tl.nextSeq,
	}
	tl.nextSeq++
	heap.Push(&tl.h, t)
	tl.byHandle[h] = t
	return h, nil
}

// RemoveTimer removes a timer by handle in O(log n). A no-op if the timer
// already fired (and was not periodic) or was never added.
func (tl *Timeline) RemoveTimer(h Handle) {
	t, ok := tl.byHandle[h]
	if !ok {
		return
	}
	heap.RemoveAt(&tl.h, t.index)
	delete(tl.byHandle, h)
}

// Step advances the clock by one slot, firing every timer whose fireAt has
// been crossed. Periodic timers are re-inserted only after every timer due
// in this step has fired, at original_fire_at + interval — this preserves
// cadence exactly as spec.md §4.1 and §9 require; using seconds+interval
// instead would let cadence drift whenever a step runs late relative to a
// timer's nominal schedule.
func (tl *Timeline) Step() {
	next := tl.seconds + tl.slotDuration(tl.asn)
	tl.seconds = next
	tl.asn++

	var dueForReinsert []*timer
	for tl.h.Len() > 0 && tl.h[0].fireAt <= tl.seconds {
		t := heap.Pop(&tl.h).(*timer)
		delete(tl.byHandle, t.handle)
		if t.cb != nil {
			t.cb(t.arg)
		}
		if t.isPeriodic {
			dueForReinsert = append(dueForReinsert, t)
		}
	}
	for _, t := range dueForReinsert {
		t.fireAt = t.fireAt + t.interval
		t.seq = tl.nextSeq
		tl.nextSeq++
		heap.Push(&tl.h, t)
		tl.byHandle[t.handle] = t
	}
}
