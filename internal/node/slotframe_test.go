package node

import "testing"

func TestAddCellRejectsOverlapByDefault(t *testing.T) {
	sf := NewSlotframe(0, 11)
	c1 := NewCell(3, 0, 2, CellTX)
	if err := sf.AddCell(c1, false); err != nil {
		t.Fatalf("unexpected error adding first cell: %v", err)
	}
	c2 := NewCell(3, 0, 4, CellRX)
	if err := sf.AddCell(c2, false); err == nil {
		t.Fatal("expected overlap rejection")
	}
	if err := sf.AddCell(c2, true); err != nil {
		t.Fatalf("expected overlap to be allowed explicitly: %v", err)
	}
}

func TestAddCellRejectsOutOfRangeTimeslot(t *testing.T) {
	sf := NewSlotframe(0, 5)
	c := NewCell(5, 0, 1, CellTX)
	if err := sf.AddCell(c, false); err == nil {
		t.Fatal("expected timeslot out of range to be rejected")
	}
}

func TestTimeToTimeslotWrapsAroundSlotframe(t *testing.T) {
	sf := NewSlotframe(0, 10)
	c := NewCell(2, 0, 1, CellTX)
	sf.AddCell(c, false)

	if got := sf.TimeToTimeslot(0, c); got != 2 {
		t.Fatalf("time to timeslot from asn=0 = %d, want 2", got)
	}
	if got := sf.TimeToTimeslot(2, c); got != 0 {
		t.Fatalf("time to timeslot from asn=2 = %d, want 0", got)
	}
	if got := sf.TimeToTimeslot(3, c); got != 9 {
		t.Fatalf("time to timeslot from asn=3 = %d, want 9 (wrap)", got)
	}
}

func TestRemoveCellClearsIndex(t *testing.T) {
	sf := NewSlotframe(0, 5)
	c := NewCell(1, 0, 1, CellTX)
	sf.AddCell(c, false)
	sf.RemoveCell(c)

	if len(sf.Cells()) != 0 {
		t.Fatal("expected cell list to be empty after removal")
	}
	if _, ok := sf.CellAt(1, 0); ok {
		t.Fatal("expected index to be cleared after removal")
	}
}
