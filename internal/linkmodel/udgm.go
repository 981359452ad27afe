package linkmodel

import "github.com/tschsim/engine/internal/prng"

// UDGM is the unit-disc graph model with distance-squared success decay:
// success falls off as the square of distance inside TxRangeMeters, and is
// zero beyond it — the simplest model that still discriminates "close"
// from "far" without a full path-loss computation.
type UDGM struct {
	TxRangeMeters float64
	RSSIAtZero    float64 // RSSI at distance 0 (clamped), decays linearly with distance to -100 at TxRange
	NoiseStdDb    float64

	distance float64
	lastRSSI float64
}

func (u *UDGM) Update(from, to Position) {
	u.distance = Distance(from, to)
}

func (u *UDGM) successRate() float64 {
	if u.TxRangeMeters <= 0 || u.distance > u.TxRangeMeters {
		return 0
	}
	ratio := u.distance / u.TxRangeMeters
	return clamp01(1 - ratio*ratio)
}

func (u *UDGM) TrySend(rng *prng.Source, channel int) bool {
	rate := u.successRate()
	floorRSSI := -100.0
	frac := 0.0
	if u.TxRangeMeters > 0 {
		frac = clamp01(u.distance / u.TxRangeMeters)
	}
	u.lastRSSI = u.RSSIAtZero + (floorRSSI-u.RSSIAtZero)*frac + noise(rng, u.NoiseStdDb)
	if u.distance > u.TxRangeMeters {
		return false
	}
	return rng.Bernoulli(rate)
}

func (u *UDGM) AverageSuccessRate(channel int) float64 { return u.successRate() }

func (u *UDGM) LastRSSI() float64 { return u.lastRSSI }
