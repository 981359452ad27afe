package network

import (
	"testing"

	"github.com/tschsim/engine/internal/config"
	"github.com/tschsim/engine/internal/packet"
)

func TestResolveCaptureDeliversSoleAttempt(t *testing.T) {
	cfg := config.Default()
	p := packet.New(1, 3, 1, 10, 3)
	ok := []rxAttempt{{pkt: p, fromID: 1, rssi: -70}}

	winner, collisions, noise := resolveCapture(ok, nil, &cfg)
	if winner == nil || winner.pkt != p {
		t.Fatal("expected the sole rx_ok attempt to be delivered")
	}
	if len(collisions) != 0 || noise {
		t.Fatal("a single attempt should neither collide nor count as noise")
	}
}

func TestResolveCaptureNoiseOnlyFailedTraffic(t *testing.T) {
	cfg := config.Default()
	failed := []rxAttempt{{rssi: -80}}

	winner, collisions, noise := resolveCapture(nil, failed, &cfg)
	if winner != nil || len(collisions) != 0 {
		t.Fatal("failed-only traffic must not deliver or count collisions")
	}
	if !noise {
		t.Fatal("expected failed-only traffic to be reported as noise")
	}
}

// TestResolveCaptureWorkedExample mirrors spec.md's collision/capture
// example: A (RSSI -60) and B (RSSI -90) both reach C; REJECTION_DB=-3
// (stored here as a positive magnitude subtracted from best_rssi). C delivers
// A's packet; B counts as a collision.
func TestResolveCaptureWorkedExample(t *testing.T) {
	cfg := config.Default()
	cfg.CoChannelRejectionDb = 3

	pA := packet.New(1, 3, 1, 10, 3)
	pB := packet.New(2, 3, 1, 10, 3)
	ok := []rxAttempt{
		{pkt: pB, fromID: 2, rssi: -90},
		{pkt: pA, fromID: 1, rssi: -60},
	}

	winner, collisions, _ := resolveCapture(ok, nil, &cfg)
	if winner == nil || winner.pkt != pA {
		t.Fatal("expected A's packet (higher RSSI) to be delivered")
	}
	if len(collisions) != 1 || collisions[0].pkt != pB {
		t.Fatal("expected B to be the sole counted collision")
	}
}

func TestResolveCaptureSuppressesBothBelowRejectionThreshold(t *testing.T) {
	cfg := config.Default()
	cfg.CoChannelRejectionDb = 3

	pA := packet.New(1, 3, 1, 10, 3)
	pB := packet.New(2, 3, 1, 10, 3)
	ok := []rxAttempt{
		{pkt: pA, fromID: 1, rssi: -60},
		{pkt: pB, fromID: 2, rssi: -61}, // too close: capture condition fails
	}

	winner, collisions, _ := resolveCapture(ok, nil, &cfg)
	if winner != nil {
		t.Fatal("expected no delivery when neither signal clears the rejection threshold")
	}
	if len(collisions) != 2 {
		t.Fatalf("expected both attempts to count as collisions, got %d", len(collisions))
	}
}

func TestResolveCaptureExactModeSumsInterfererPower(t *testing.T) {
	cfg := config.Default()
	cfg.CaptureEffectExact = true
	cfg.CoChannelRejectionDb = 3

	pA := packet.New(1, 3, 1, 10, 3)
	ok := []rxAttempt{{pkt: pA, fromID: 1, rssi: -60}}
	failed := []rxAttempt{{rssi: -90}, {rssi: -90}}

	winner, _, _ := resolveCapture(ok, failed, &cfg)
	if winner == nil || winner.pkt != pA {
		t.Fatal("expected A to still win against weak summed interference")
	}
}
