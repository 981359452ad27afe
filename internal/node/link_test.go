package node

import (
	"testing"

	"github.com/tschsim/engine/internal/linkmodel"
	"github.com/tschsim/engine/internal/prng"
)

func TestInactiveLinkNeverSucceeds(t *testing.T) {
	l := NewLink(1, 2, &linkmodel.Fixed{SuccessRate: 1.0})
	rng := prng.New(1)
	if l.TrySend(rng, 0) {
		t.Fatal("inactive link must never succeed")
	}
	if rate := l.AverageSuccessRate(0); rate != 0 {
		t.Fatalf("inactive link average success rate = %v, want 0", rate)
	}
}

func TestActiveLinkDelegatesToModel(t *testing.T) {
	l := NewLink(1, 2, &linkmodel.Fixed{SuccessRate: 1.0})
	l.IsActive = true
	rng := prng.New(1)
	if !l.TrySend(rng, 0) {
		t.Fatal("expected guaranteed success to delegate through")
	}
	if rate := l.AverageSuccessRate(0); rate != 1.0 {
		t.Fatalf("average success rate = %v, want 1.0", rate)
	}
}
