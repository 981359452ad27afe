package timeline

import (
	"math"
	"testing"
)

func TestStepAdvancesASNAndSeconds(t *testing.T) {
	tl := New([]float64{0.01, 0.015})
	var want float64
	for i := 0; i < 37; i++ {
		want += tl.slotDuration(uint64(i))
		tl.Step()
		if tl.ASN() != uint64(i+1) {
			t.Fatalf("asn = %d want %d", tl.ASN(), i+1)
		}
		if diff := tl.Seconds() - want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("seconds = %v want %v", tl.Seconds(), want)
		}
	}
}

func TestTimerFiresAndReinsertsWithCompensatedCadence(t *testing.T) {
	tl := New([]float64{0.01})
	var fireCount int
	var lastFire float64
	_, err := tl.AddTimer(0.05, true, nil, func(any) {
		fireCount++
		lastFire = tl.Seconds()
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		tl.Step()
	}
	if fireCount == 0 {
		t.Fatal("periodic timer never fired")
	}
	// cadence should remain close to multiples of 0.05 from origin, not
	// drift to multiples of (lastFire+interval) measured from "now".
	remainder := lastFire - 0.05*math.Round(lastFire/0.05)
	if remainder > 1e-6 || remainder < -1e-6 {
		t.Fatalf("cadence drifted: last fire at %v", lastFire)
	}
}

func TestRemoveTimerIsNoOpAfterFire(t *testing.T) {
	tl := New([]float64{0.01})
	h, _ := tl.AddTimer(0.01, false, nil, func(any) {})
	tl.Step()
	tl.RemoveTimer(h) // must not panic
}

func TestNonFiniteIntervalRejected(t *testing.T) {
	tl := New([]float64{0.01})
	if _, err := tl.AddTimer(posInf(), false, nil, func(any) {}); err == nil {
		t.Fatal("expected error for non-finite interval")
	}
}

func posInf() float64 {
	return math.Inf(1)
}
