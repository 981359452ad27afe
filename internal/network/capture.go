package network

import (
	"math"
	"sort"

	"github.com/tschsim/engine/internal/config"
	"github.com/tschsim/engine/internal/packet"
)

// rxAttempt is one sender's delivery attempt at a candidate receiver,
// bucketed by subslot in Phase B ready for Phase C's resolution.
type rxAttempt struct {
	pkt    *packet.Packet
	fromID int
	rssi   float64
}

// dbmToMW and mwToDBm convert between dBm and milliwatts so the
// mathematically-correct capture-effect mode can sum interferer power
// linearly before converting back (spec.md §4.4 Phase C).
func dbmToMW(dbm float64) float64  { return math.Pow(10, dbm/10) }
func mwToDBm(mw float64) float64 {
	if mw <= 0 {
		return math.Inf(-1)
	}
	return 10 * math.Log10(mw)
}

// resolveCapture runs one receiver/subslot's capture-effect resolution
// (spec.md §4.4 Phase C) over the rx_ok and rx_failed buckets accumulated
// during Phase B. It returns the delivered attempt (nil if none), the set
// of rx_ok attempts that lost the capture contest and must be counted as
// MAC-level collisions, and whether failed-only traffic was observed as
// noise.
func resolveCapture(ok, failed []rxAttempt, cfg *config.Config) (winner *rxAttempt, collisions []rxAttempt, noise bool) {
	if len(ok) == 0 {
		return nil, nil, len(failed) > 0
	}
	if len(ok) == 1 && len(failed) == 0 {
		return &ok[0], nil, false
	}

	sorted := make([]rxAttempt, len(ok))
	copy(sorted, ok)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].rssi > sorted[j].rssi })
	best := sorted[0]
	others := sorted[1:]

	var interferingRSSI float64
	if cfg.CaptureEffectExact {
		mw := 0.0
		for _, a := range others {
			mw += dbmToMW(a.rssi)
		}
		for _, a := range failed {
			mw += dbmToMW(a.rssi)
		}
		interferingRSSI = mwToDBm(mw)
	} else {
		interferingRSSI = math.Inf(-1)
		if len(others) > 0 {
			interferingRSSI = others[0].rssi
		}
		for _, a := range failed {
			if a.rssi > interferingRSSI {
				interferingRSSI = a.rssi
			}
		}
	}

	// spec.md's worked example states PHY_CO_CHANNEL_REJECTION_DB as a
	// negative quantity (best_rssi + (-3) > interfering); config.go stores
	// the same rejection margin as a positive magnitude, so the
	// equivalent comparison here subtracts it.
	if best.rssi-cfg.CoChannelRejectionDb > interferingRSSI {
		return &best, others, false
	}
	// Capture failed outright: nobody is decodable, and every rx_ok
	// sender at this receiver/subslot collided with every other.
	return nil, sorted, false
}
