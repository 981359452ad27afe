package linkmodel

import (
	"math"

	"github.com/tschsim/engine/internal/prng"
)

// rssiToPdr is the empirical piecewise-linear RSSI→PDR table used by the
// Pister-hack model, covering the band where real 802.15.4 radios
// transition from unusable to fully reliable (spec.md §4.2). Below the
// first entry PDR is 0; above the last entry PDR is 1.
var rssiToPdr = []struct {
	rssi float64
	pdr  float64
}{
	{-97, 0.0},
	{-95, 0.0},
	{-93, 0.15},
	{-91, 0.35},
	{-89, 0.55},
	{-87, 0.72},
	{-85, 0.85},
	{-83, 0.93},
	{-81, 0.98},
	{-79, 1.0},
}

func interpolatePdr(rssi float64) float64 {
	if rssi <= rssiToPdr[0].rssi {
		return rssiToPdr[0].pdr
	}
	n := len(rssiToPdr)
	if rssi >= rssiToPdr[n-1].rssi {
		return rssiToPdr[n-1].pdr
	}
	for i := 1; i < n; i++ {
		if rssi <= rssiToPdr[i].rssi {
			lo, hi := rssiToPdr[i-1], rssiToPdr[i]
			frac := (rssi - lo.rssi) / (hi.rssi - lo.rssi)
			return lo.pdr + frac*(hi.pdr-lo.pdr)
		}
	}
	return rssiToPdr[n-1].pdr
}

// PisterHack computes RSSI from free-space Friis path loss and maps it to
// a delivery probability through the empirical table above.
type PisterHack struct {
	TxPowerDbm       float64
	FrequencyMhz     float64 // e.g. 2400 for the 2.4 GHz ISM band
	AntennaGainDb    float64
	NoiseStdDb       float64

	distance float64
	lastRSSI float64
}

// friisPathLossDb returns the free-space path loss in dB for distance d
// meters at frequencyMhz.
func friisPathLossDb(d, frequencyMhz float64) float64 {
	if d < minDistanceMeters {
		d = minDistanceMeters
	}
	// FSPL(dB) = 20log10(d_km) + 20log10(f_MHz) + 32.44
	dKm := d / 1000
	return 20*math.Log10(dKm) + 20*math.Log10(frequencyMhz) + 32.44
}

func (p *PisterHack) Update(from, to Position) {
	p.distance = Distance(from, to)
}

func (p *PisterHack) meanRSSI() float64 {
	freq := p.FrequencyMhz
	if freq <= 0 {
		freq = 2400
	}
	return p.TxPowerDbm + p.AntennaGainDb - friisPathLossDb(p.distance, freq)
}

func (p *PisterHack) TrySend(rng *prng.Source, channel int) bool {
	rssi := p.meanRSSI() + noise(rng, p.NoiseStdDb)
	p.lastRSSI = rssi
	return rng.Bernoulli(interpolatePdr(rssi))
}

func (p *PisterHack) AverageSuccessRate(channel int) float64 {
	return interpolatePdr(p.meanRSSI())
}

func (p *PisterHack) LastRSSI() float64 { return p.lastRSSI }
