package linkmodel

import (
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tschsim/engine/internal/prng"
)

const shadowFadingCacheSize = 4096

// LogisticLoss derives RSSI from a log-distance path-loss model plus a
// per-link shadow-fading offset, and turns RSSI into a delivery
// probability through a logistic curve centered on InflectionRSSIDbm.
// Below SensitivityDbm reception fails outright regardless of the
// logistic curve, matching real receiver noise floors.
type LogisticLoss struct {
	TxPowerDbm          float64
	RefRSSIAt1mDbm      float64 // mean RSSI at 1 m separation
	PathLossExponent    float64
	InflectionRSSIDbm   float64
	SteepnessDb         float64
	SensitivityDbm      float64
	ShadowFadingSigmaDb float64
	NoiseStdDb          float64

	// shadowFading caches a per-link-position shadow-fading offset so
	// repeated TrySend calls on the same (from,to) pair see a stable
	// value instead of redrawing noise every attempt — mirrors the
	// teacher pack's fading-model cache, but bounded by an LRU instead
	// of an unbounded map manually purged past a size threshold.
	shadowFading *lru.Cache[int64, float64]

	distance float64
	fadeKey  int64
	lastRSSI float64
}

// NewLogisticLoss constructs a LogisticLoss model with its shadow-fading
// cache initialized.
func NewLogisticLoss() *LogisticLoss {
	c, _ := lru.New[int64, float64](shadowFadingCacheSize)
	return &LogisticLoss{shadowFading: c}
}

// Update recomputes distance and the shadow-fading cache key for the
// (from,to) pair. A→B and B→A get distinct keys since from/to are not
// sorted, matching that the two directions are independent links
// (spec.md §3 Link).
func (l *LogisticLoss) Update(from, to Position) {
	l.distance = Distance(from, to)
	fx := int64(math.Round(from.X * 10))
	fy := int64(math.Round(from.Y * 10))
	tx := int64(math.Round(to.X * 10))
	ty := int64(math.Round(to.Y * 10))
	l.fadeKey = fx + fy<<16 + tx<<32 + ty<<48
	if l.shadowFading == nil {
		c, _ := lru.New[int64, float64](shadowFadingCacheSize)
		l.shadowFading = c
	}
}

func (l *LogisticLoss) shadowFadingDb(rng *prng.Source) float64 {
	if l.ShadowFadingSigmaDb <= 0 {
		return 0
	}
	if v, ok := l.shadowFading.Get(l.fadeKey); ok {
		return v
	}
	v := rng.Gaussian(0, l.ShadowFadingSigmaDb)
	l.shadowFading.Add(l.fadeKey, v)
	return v
}

func (l *LogisticLoss) meanRSSI() float64 {
	d := l.distance
	if d < minDistanceMeters {
		d = minDistanceMeters
	}
	pathLoss := 10 * l.PathLossExponent * math.Log10(d)
	return l.RefRSSIAt1mDbm - pathLoss
}

func (l *LogisticLoss) successRateFor(rssi float64) float64 {
	if rssi < l.SensitivityDbm {
		return 0
	}
	steep := l.SteepnessDb
	if steep <= 0 {
		steep = 1
	}
	return logistic((rssi - l.InflectionRSSIDbm) / steep)
}

// TrySend draws a fresh noise sample each call (so repeated attempts over
// the same link vary) but reuses the cached shadow-fading offset for that
// link, and returns whether the frame was delivered.
func (l *LogisticLoss) TrySend(rng *prng.Source, channel int) bool {
	rssi := l.meanRSSI() + l.shadowFadingDb(rng) + noise(rng, l.NoiseStdDb)
	l.lastRSSI = rssi
	return rng.Bernoulli(l.successRateFor(rssi))
}

func (l *LogisticLoss) AverageSuccessRate(channel int) float64 {
	return l.successRateFor(l.meanRSSI())
}

func (l *LogisticLoss) LastRSSI() float64 { return l.lastRSSI }

// DistanceFromSuccessRate inverts the logistic + path-loss chain, giving
// back an estimated separation for a given success probability — the
// round-trip law in spec.md §8. It ignores shadow fading and per-call
// noise (both zero-mean), so it is only exact when those are disabled;
// otherwise it recovers the underlying mean-path distance to within the
// fading/noise magnitude.
func (l *LogisticLoss) DistanceFromSuccessRate(rate float64) float64 {
	steep := l.SteepnessDb
	if steep <= 0 {
		steep = 1
	}
	rssi := logit(rate)*steep + l.InflectionRSSIDbm
	exponent := (l.RefRSSIAt1mDbm - rssi) / (10 * l.PathLossExponent)
	return math.Pow(10, exponent)
}
