package connections

// CellID is a dense identifier for a cell, flattened across columns:
// cell = column*cellsPerColumn + indexInColumn.
// It is strictly 32-bit, keeping hot-path structures (bitsets, indexes)
// compact.
type CellID uint32

// SegmentID identifies a dendrite segment. IDs are assigned from a
// monotonically increasing counter at creation time and are never reused,
// which makes them a stable tie-break sort key across cycles.
type SegmentID uint64

// Synapse is a permanence-weighted connection from a presynaptic cell to a
// dendrite segment. The segment's owning cell is the postsynaptic side.
type Synapse struct {
	segment     *Segment
	presynaptic CellID
	permanence  float32
}

// Segment returns the dendrite segment this synapse belongs to.
func (s *Synapse) Segment() *Segment { return s.segment }

// Presynaptic returns the presynaptic cell.
func (s *Synapse) Presynaptic() CellID { return s.presynaptic }

// Permanence returns the current permanence value in [0, 1].
func (s *Synapse) Permanence() float32 { return s.permanence }

// Segment is one distal dendrite branch of a cell.
type Segment struct {
	id        SegmentID
	cell      CellID
	synapses  []*Synapse
	lastUsed  uint64
	destroyed bool
}

// ID returns the segment's creation ordinal.
func (s *Segment) ID() SegmentID { return s.id }

// Cell returns the owning (postsynaptic) cell.
func (s *Segment) Cell() CellID { return s.cell }

// NumSynapses returns the number of synapses currently on the segment.
func (s *Segment) NumSynapses() int { return len(s.synapses) }

// Synapses returns the segment's synapses in creation order. The returned
// slice is a copy and stays valid across destroy operations.
func (s *Segment) Synapses() []*Synapse {
	out := make([]*Synapse, len(s.synapses))
	copy(out, s.synapses)
	return out
}

// HasPresynapticCell reports whether the segment already has a synapse from
// the given presynaptic cell.
func (s *Segment) HasPresynapticCell(cell CellID) bool {
	for _, syn := range s.synapses {
		if syn.presynaptic == cell {
			return true
		}
	}
	return false
}

// Destroyed reports whether the segment has been removed from the store.
// Callers holding a segment across destroy operations must check this
// before reusing it.
func (s *Segment) Destroyed() bool { return s.destroyed }

// LastUsed returns the engine iteration at which the segment was last
// active, used by the least-recently-used segment cap.
func (s *Segment) LastUsed() uint64 { return s.lastUsed }

// MarkUsed records that the segment was active at the given iteration.
func (s *Segment) MarkUsed(iteration uint64) { s.lastUsed = iteration }
