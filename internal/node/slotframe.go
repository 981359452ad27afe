package node

import "fmt"

type cellKey struct {
	timeslot      int
	channelOffset int
}

// Slotframe is a cyclic schedule of Size slots holding at most one Cell
// per (timeslot, channel_offset) pair unless a caller explicitly permits
// overlap (spec.md §3). Cells are kept in insertion order so schedule()'s
// per-slot scan is reproducible across runs with the same configuration.
type Slotframe struct {
	Handle int
	Size   int

	cells []*Cell
	index map[cellKey]*Cell
}

// NewSlotframe builds a Slotframe. Size must be ≥ 1 per spec.md §3's
// invariant; a size below 1 is clamped to 1 rather than rejected, since
// the core never returns configuration errors mid-construction (spec.md
// §7.1 policy of falling back to a documented default).
func NewSlotframe(handle, size int) *Slotframe {
	if size < 1 {
		size = 1
	}
	return &Slotframe{Handle: handle, Size: size, index: make(map[cellKey]*Cell)}
}

// AddCell inserts c. It rejects a timeslot outside [0, Size) and, unless
// allowOverlap is set, rejects a (timeslot, channel_offset) pair already
// occupied.
func (sf *Slotframe) AddCell(c *Cell, allowOverlap bool) error {
	if c.timeslot < 0 || c.timeslot >= sf.Size {
		return fmt.Errorf("node: cell timeslot %d out of range [0,%d) for slotframe %d", c.timeslot, sf.Size, sf.Handle)
	}
	key := cellKey{c.timeslot, c.channelOffset}
	if !allowOverlap {
		if _, exists := sf.index[key]; exists {
			return fmt.Errorf("node: slotframe %d already has a cell at (timeslot=%d, channel=%d)", sf.Handle, c.timeslot, c.channelOffset)
		}
	}
	sf.cells = append(sf.cells, c)
	sf.index[key] = c
	return nil
}

// RemoveCell deletes c from the slotframe.
func (sf *Slotframe) RemoveCell(c *Cell) {
	for i, existing := range sf.cells {
		if existing == c {
			sf.cells = append(sf.cells[:i], sf.cells[i+1:]...)
			break
		}
	}
	key := cellKey{c.timeslot, c.channelOffset}
	if sf.index[key] == c {
		delete(sf.index, key)
	}
}

// Cells returns every cell in insertion order.
func (sf *Slotframe) Cells() []*Cell { return sf.cells }

// CellAt returns the cell occupying (timeslot, channelOffset), if any.
func (sf *Slotframe) CellAt(timeslot, channelOffset int) (*Cell, bool) {
	c, ok := sf.index[cellKey{timeslot, channelOffset}]
	return c, ok
}

// TimeToTimeslot computes the number of slots until cell c's timeslot
// next occurs, per spec.md §4.3 step 3: (cell.timeslot - asn mod
// sf.size) mod sf.size.
func (sf *Slotframe) TimeToTimeslot(asn uint64, c *Cell) int {
	offset := (c.timeslot - int(asn%uint64(sf.Size))) % sf.Size
	if offset < 0 {
		offset += sf.Size
	}
	return offset
}
