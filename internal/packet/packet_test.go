package packet

import "testing"

func TestNewDerivesAckRequired(t *testing.T) {
	unicast := New(1, 99, 1, 10, 2)
	if !unicast.IsAckRequired {
		t.Fatal("unicast packet should require an ACK")
	}

	broadcast := New(1, 99, 2, 10, BroadcastNeighborID)
	if broadcast.IsAckRequired {
		t.Fatal("broadcast packet should never require an ACK")
	}
}

func TestSentCallbackFiresExactlyOnce(t *testing.T) {
	calls := 0
	p := New(1, 2, 1, 10, 2)
	p.SentCallback = func(ok bool) { calls++ }

	p.Complete(true)
	p.Complete(true)

	if calls != 1 {
		t.Fatalf("sent callback fired %d times, want exactly 1", calls)
	}
}

func TestNextHopSucceededReflectsRecordedAttempt(t *testing.T) {
	p := New(1, 2, 1, 10, 2)
	if p.NextHopSucceeded() {
		t.Fatal("no attempt recorded yet, should not have succeeded")
	}
	p.RecordAttempt(2, -70, true)
	if !p.NextHopSucceeded() {
		t.Fatal("expected recorded success for next hop")
	}
	p.RecordAttempt(2, -90, false)
	if p.NextHopSucceeded() {
		t.Fatal("expected recorded failure to override prior success")
	}
}
