package packet

import (
	"sort"

	"github.com/tschsim/engine/internal/timeline"
)

// Fragmenter splits an oversized application payload into link-layer-sized
// fragments, tagging each with a per-sender monotonic counter (spec.md
// §4.7) so the receiver can reassemble them independent of arrival order.
type Fragmenter struct {
	nextTag uint32
}

// Fragment splits p into ceil(AppLength/maxPayload) fragments, each
// carrying maxPayload bytes of AppLength except the last, which carries
// the remainder, and copying every link-layer field of the original. If p already fits within maxPayload, Fragment returns
// []*Packet{p} unchanged.
func (f *Fragmenter) Fragment(p *Packet, maxPayload int) []*Packet {
	if maxPayload <= 0 || p.AppLength <= maxPayload {
		return []*Packet{p}
	}
	total := (p.AppLength + maxPayload - 1) / maxPayload
	tag := f.nextTag
	f.nextTag++

	frags := make([]*Packet, 0, total)
	remaining := p.AppLength
	for i := 0; i < total; i++ {
		share := maxPayload
		if remaining < share {
			share = remaining
		}
		remaining -= share

		frag := *p
		frag.AppLength = share
		frag.Fragment = &Fragment{Tag: tag, Index: i, Total: total}
		frag.Receivers = make(map[int]*ReceiveRecord)
		frags = append(frags, &frag)
	}
	return frags
}

// ReassemblyKey identifies one in-flight reassembly set.
type ReassemblyKey struct {
	SourceID int
	Tag      uint32
}

type reassemblyContext struct {
	fragments   map[int]*Packet
	total       int
	timerHandle timeline.Handle
}

// Reassembler collects fragments keyed by (source node, tag) and emits the
// whole packet once every index 0..total-1 has arrived. An incomplete set
// is discarded IP_REASSEMBLY_TIMEOUT_SEC after its first fragment arrived;
// later fragments do not restart that timer (spec.md §4.7).
type Reassembler struct {
	tl         *timeline.Timeline
	timeoutSec float64
	contexts   map[ReassemblyKey]*reassemblyContext
}

// NewReassembler builds a Reassembler that arms a timeoutSec timer on the
// Timeline for each new fragment set.
func NewReassembler(tl *timeline.Timeline, timeoutSec float64) *Reassembler {
	return &Reassembler{
		tl:         tl,
		timeoutSec: timeoutSec,
		contexts:   make(map[ReassemblyKey]*reassemblyContext),
	}
}

// Receive folds one fragment into its reassembly set. It returns the
// reassembled whole packet and true once every fragment has arrived;
// otherwise it returns nil, false. Non-fragmented packets (Fragment ==
// nil) pass through untouched.
func (r *Reassembler) Receive(p *Packet) (*Packet, bool) {
	if p.Fragment == nil {
		return p, true
	}
	key := ReassemblyKey{SourceID: p.SourceNodeID, Tag: p.Fragment.Tag}
	ctx, ok := r.contexts[key]
	if !ok {
		ctx = &reassemblyContext{
			fragments: make(map[int]*Packet),
			total:     p.Fragment.Total,
		}
		if r.tl != nil {
			ctx.timerHandle, _ = r.tl.AddTimer(r.timeoutSec, false, key, func(arg any) {
				r.expire(arg.(ReassemblyKey))
			})
		}
		r.contexts[key] = ctx
	}
	ctx.fragments[p.Fragment.Index] = p

	if len(ctx.fragments) < ctx.total {
		return nil, false
	}

	if r.tl != nil {
		r.tl.RemoveTimer(ctx.timerHandle)
	}
	delete(r.contexts, key)
	return r.reassemble(ctx), true
}

// expire discards an incomplete reassembly set on timeout, matching
// spec.md §4.7's drop-on-timeout behavior. The partial fragments are lost;
// callers observing drops should count this against reassembly-timeout
// stats.
func (r *Reassembler) expire(key ReassemblyKey) {
	delete(r.contexts, key)
}

// Pending reports how many reassembly contexts are currently in flight.
func (r *Reassembler) Pending() int { return len(r.contexts) }

func (r *Reassembler) reassemble(ctx *reassemblyContext) *Packet {
	indices := make([]int, 0, len(ctx.fragments))
	for i := range ctx.fragments {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	whole := *ctx.fragments[indices[0]]
	whole.Fragment = nil
	whole.AppLength = 0
	for _, i := range indices {
		whole.AppLength += ctx.fragments[i].AppLength
	}
	return &whole
}
