// Package linkmodel computes per-attempt delivery success and RSSI between
// ordered node pairs. See spec.md §4.2. Every variant models a directed
// link: (A→B) and (B→A) may hold independent Model instances with
// different outcomes, matching the Link data model's direction invariant.
package linkmodel

import (
	"math"

	"github.com/tschsim/engine/internal/prng"
)

// Position is a 2-D node placement in meters.
type Position struct {
	X, Y float64
}

// Distance returns the Euclidean distance between two positions, clamped
// to a 1 cm floor so log-distance path-loss formulas never divide by zero
// or blow up to infinity when two nodes sit at the same coordinate
// (spec.md §8 boundary behavior).
func Distance(a, b Position) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	d := math.Sqrt(dx*dx + dy*dy)
	if d < minDistanceMeters {
		return minDistanceMeters
	}
	return d
}

const minDistanceMeters = 0.01

// Model is implemented by every link-quality variant (Fixed, UDGM,
// LogisticLoss, PisterHack, Trace). A Model is owned by exactly one
// directed Link.
type Model interface {
	// TrySend returns a stochastic delivery-success decision for one
	// attempt on the given channel, and records the RSSI that produced
	// it (retrievable via LastRSSI).
	TrySend(rng *prng.Source, channel int) bool

	// AverageSuccessRate returns the model's expected probability for a
	// channel, for UI/metrics use — it does not consume randomness and
	// does not affect LastRSSI.
	AverageSuccessRate(channel int) float64

	// LastRSSI returns the RSSI computed by the most recent TrySend.
	LastRSSI() float64

	// Update recomputes any position-dependent cached state. Called
	// whenever either endpoint moves.
	Update(from, to Position)
}

// Advancer is optionally implemented by models whose parameters mutate on
// a timestamp schedule rather than (or in addition to) node movement —
// currently only Trace. The network step calls Advance once per slot, with
// the simulated seconds, for any link model that implements it.
type Advancer interface {
	Advance(nowSeconds float64)
}
