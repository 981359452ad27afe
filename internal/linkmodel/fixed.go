package linkmodel

import "github.com/tschsim/engine/internal/prng"

// Fixed is the simplest variant: a constant success probability (either one
// scalar for every channel, or a per-channel override map) and a constant
// mean RSSI, optionally perturbed by Gaussian noise per call.
type Fixed struct {
	SuccessRate        float64
	PerChannelSuccess  map[int]float64
	MeanRSSIDbm        float64
	NoiseStdDb         float64
	lastRSSI           float64
}

func (f *Fixed) rateFor(channel int) float64 {
	if f.PerChannelSuccess != nil {
		if r, ok := f.PerChannelSuccess[channel]; ok {
			return r
		}
	}
	return f.SuccessRate
}

func (f *Fixed) TrySend(rng *prng.Source, channel int) bool {
	f.lastRSSI = f.MeanRSSIDbm + noise(rng, f.NoiseStdDb)
	return rng.Bernoulli(f.rateFor(channel))
}

func (f *Fixed) AverageSuccessRate(channel int) float64 { return f.rateFor(channel) }

func (f *Fixed) LastRSSI() float64 { return f.lastRSSI }

// Update is a no-op: a Fixed link's quality does not depend on position.
func (f *Fixed) Update(from, to Position) {}
