package node

import (
	"github.com/tschsim/engine/internal/linkmodel"
	"github.com/tschsim/engine/internal/prng"
)

// Link is a directed edge from one node to another, owned by the Network
// (spec.md §3): (from, to) order matters, and A→B may have a different
// model instance (and therefore different quality) than B→A.
type Link struct {
	FromID int
	ToID   int

	IsActive bool
	Model    linkmodel.Model
}

// NewLink builds an inactive Link over the given model; callers activate
// it once both endpoints are known to be connectable (spec.md's
// distinction between an active Link and a Potential Link).
func NewLink(fromID, toID int, model linkmodel.Model) *Link {
	return &Link{FromID: fromID, ToID: toID, Model: model}
}

// Update recomputes the link's parameters from both endpoints' current
// positions.
func (l *Link) Update(from, to linkmodel.Position) {
	if l.Model != nil {
		l.Model.Update(from, to)
	}
}

// TrySend attempts delivery on channel. An inactive link (or one with no
// model) never succeeds.
func (l *Link) TrySend(rng *prng.Source, channel int) bool {
	if !l.IsActive || l.Model == nil {
		return false
	}
	return l.Model.TrySend(rng, channel)
}

// AverageSuccessRate reports the link's expected delivery probability for
// UI/metrics purposes.
func (l *Link) AverageSuccessRate(channel int) float64 {
	if !l.IsActive || l.Model == nil {
		return 0
	}
	return l.Model.AverageSuccessRate(channel)
}

// LastRSSI reports the most recent TrySend's RSSI sample.
func (l *Link) LastRSSI() float64 {
	if l.Model == nil {
		return 0
	}
	return l.Model.LastRSSI()
}
