package heap

import (
	"math/rand"
	"testing"
)

type intHeap struct {
	data []int
}

func (h *intHeap) Len() int            { return len(h.data) }
func (h *intHeap) Less(i, j int) bool  { return h.data[i] < h.data[j] }
func (h *intHeap) Swap(i, j int)       { h.data[i], h.data[j] = h.data[j], h.data[i] }
func (h *intHeap) Push(x any)          { h.data = append(h.data, x.(int)) }
func (h *intHeap) Pop() any {
	n := len(h.data) - 1
	v := h.data[n]
	h.data = h.data[:n]
	return v
}

func TestHeapOrdering(t *testing.T) {
	h := &intHeap{}
	for _, v := range []int{11, 5, 8, 4, 3} {
		Push(h, v)
	}
	want := []int{3, 4, 5, 8, 11}
	for _, w := range want {
		got := Pop(h).(int)
		if got != w {
			t.Fatalf("got %d want %d", got, w)
		}
	}
}

func TestHeapRandomNonDecreasing(t *testing.T) {
	h := &intHeap{}
	r := rand.New(rand.NewSource(42))
	const n = 500
	for i := 0; i < n; i++ {
		Push(h, r.Intn(100000))
	}
	prev := -1
	for h.Len() > 0 {
		v := Pop(h).(int)
		if v < prev {
			t.Fatalf("non-decreasing violated: %d after %d", v, prev)
		}
		prev = v
	}
}

func TestHeapRemoveAt(t *testing.T) {
	h := &intHeap{}
	for _, v := range []int{10, 20, 30, 40, 50} {
		Push(h, v)
	}
	// remove the element currently at index 2 (heap-order dependent, but
	// the invariant must hold regardless of which slot it is in).
	RemoveAt(h, 2)
	if h.Len() != 4 {
		t.Fatalf("len = %d, want 4", h.Len())
	}
	prev := -1
	for h.Len() > 0 {
		v := Pop(h).(int)
		if v < prev {
			t.Fatalf("non-decreasing violated after RemoveAt: %d after %d", v, prev)
		}
		prev = v
	}
}
