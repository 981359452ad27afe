package node

import (
	"github.com/tschsim/engine/internal/config"
	"github.com/tschsim/engine/internal/packet"
	"github.com/tschsim/engine/internal/prng"
)

// BroadcastNeighborID and EBNeighborID are the two virtual neighbors
// every node carries in addition to its real per-ID neighbors (spec.md
// §3 Neighbor invariant).
const (
	BroadcastNeighborID = packet.BroadcastNeighborID
	EBNeighborID        = -1
)

// Neighbor is one node's per-neighbor link-quality and CSMA bookkeeping
// record (spec.md §3, §4.5).
type Neighbor struct {
	id int

	Queue *packet.Queue

	BackoffExponent int
	BackoffWindow   int

	Freshness int
	ETX       int // scaled by 128

	LastTxSeconds float64
	LastRxSeconds float64
	LastRSSI      float64

	DedicatedTxCells int // count of TX cells pointing exclusively at this neighbor
}

// NewNeighbor builds a Neighbor with its CSMA state and ETX initialized
// to the configured defaults.
func NewNeighbor(id int, cfg *config.Config) *Neighbor {
	return &Neighbor{
		id:              id,
		Queue:           packet.NewQueue(cfg.QueueSize),
		BackoffExponent: cfg.MinBE,
		ETX:             cfg.ETXDefault,
	}
}

// ID satisfies plugin.NeighborHandle.
func (nb *Neighbor) ID() int { return nb.id }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// BootstrapETXFromRSSI seeds ETX from an initial RSSI sample via a linear
// map from [RSSILow, RSSIHigh] to [BootstrapLow, BootstrapHigh] (spec.md
// §4.5).
func (nb *Neighbor) BootstrapETXFromRSSI(rssiDbm float64, cfg *config.Config) {
	span := cfg.ETXBootstrapRSSIHighDbm - cfg.ETXBootstrapRSSILowDbm
	frac := 0.0
	if span != 0 {
		frac = clamp01((rssiDbm - cfg.ETXBootstrapRSSILowDbm) / span)
	}
	nb.ETX = cfg.ETXBootstrapLow + int(frac*float64(cfg.ETXBootstrapHigh-cfg.ETXBootstrapLow))
}

// IsFresh reports whether this neighbor's link statistics are still
// representative: freshness counter at or above 4, and a TX within the
// last 10 minutes (spec.md §4.5).
func (nb *Neighbor) IsFresh(nowSeconds float64) bool {
	return nb.Freshness >= 4 && (nowSeconds-nb.LastTxSeconds) < 600
}

// OnTxOutcome updates ETX and the freshness counter after a unicast
// attempt completes (acked or not), per spec.md §4.5's EWMA.
func (nb *Neighbor) OnTxOutcome(acked bool, numTransmissions int, cfg *config.Config, nowSeconds float64) {
	alpha := cfg.ETXAlphaNotFresh
	if nb.IsFresh(nowSeconds) {
		alpha = cfg.ETXAlphaFresh
	}
	n := numTransmissions
	if !acked {
		n = cfg.ETXNoAckPenalty
	}
	nb.ETX = int((1-alpha)*float64(nb.ETX) + alpha*float64(n*128))

	nb.Freshness += numTransmissions
	if nb.Freshness > cfg.FreshnessMax {
		nb.Freshness = cfg.FreshnessMax
	}
	nb.LastTxSeconds = nowSeconds
}

// HalveFreshness halves the freshness counter; called by the periodic
// 15-minute halving timer across every neighbor of every node.
func (nb *Neighbor) HalveFreshness() { nb.Freshness /= 2 }

// OnSharedCellOutcome updates CSMA backoff state after a shared-cell TX
// attempt (spec.md §4.5): success resets to MinBE/0; failure increments
// the exponent (saturating at MaxBE) and redraws the window.
func (nb *Neighbor) OnSharedCellOutcome(success bool, cfg *config.Config, rng *prng.Source) {
	if success {
		nb.ResetBackoff(cfg)
		return
	}
	if nb.BackoffExponent < cfg.MaxBE {
		nb.BackoffExponent++
	}
	nb.BackoffWindow = rng.IntRange(0, 1<<uint(nb.BackoffExponent)) + 1
}

// ResetBackoff resets CSMA state to its idle defaults: called on a
// successful shared-cell TX or whenever the neighbor's queue empties.
func (nb *Neighbor) ResetBackoff(cfg *config.Config) {
	nb.BackoffExponent = cfg.MinBE
	nb.BackoffWindow = 0
}

// DecrementBackoffWindow counts down the CSMA backoff window by one slot,
// never going below zero.
func (nb *Neighbor) DecrementBackoffWindow() {
	if nb.BackoffWindow > 0 {
		nb.BackoffWindow--
	}
}
