package connections

import (
	"fmt"
	"sort"
)

// PermanenceEpsilon is the threshold below which a synapse is considered
// degenerate and destroyed. Permanence values are clamped to [0, 1] before
// this check, so only values driven to (effectively) zero are affected.
const PermanenceEpsilon = 1e-5

// Options configures structural limits of the store.
type Options struct {
	// MaxSegmentsPerCell caps the number of segments on a single cell.
	// When the cap is reached, creating a new segment destroys the least
	// recently used segment on that cell first. Zero means unlimited.
	MaxSegmentsPerCell int

	// MaxSynapsesPerSegment caps the number of synapses on a single
	// segment. When the cap is reached, creating a new synapse destroys
	// the weakest (minimum permanence) synapse on that segment first.
	// Zero means unlimited.
	MaxSynapsesPerSegment int
}

// DefaultOptions places no structural limits on the store.
var DefaultOptions = Options{}

// Connections is the single source of truth for the connectivity graph:
// columns, cells, dendrite segments and synapses. The cell population is
// fixed at creation; segments and synapses churn during learning.
//
// The store is exclusively owned by one engine instance at a time. It is
// not safe for concurrent mutation.
type Connections struct {
	numColumns     int
	cellsPerColumn int

	// segments holds each cell's segments in creation order, indexed by
	// flattened CellID.
	segments [][]*Segment

	// presynaptic indexes live synapses by their presynaptic cell. This is
	// the hot path for ComputeActivity: activity is computed by scanning
	// the synapses of active cells, never by scanning all segments.
	presynaptic map[CellID][]*Synapse

	nextSegmentID SegmentID
	numSegments   int
	numSynapses   int

	opts Options
}

// New creates a store with numColumns*cellsPerColumn cells.
func New(numColumns, cellsPerColumn int, optFns ...func(o *Options)) (*Connections, error) {
	if numColumns <= 0 {
		return nil, fmt.Errorf("connections: numColumns must be positive, got %d", numColumns)
	}
	if cellsPerColumn <= 0 {
		return nil, fmt.Errorf("connections: cellsPerColumn must be positive, got %d", cellsPerColumn)
	}

	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Connections{
		numColumns:     numColumns,
		cellsPerColumn: cellsPerColumn,
		segments:       make([][]*Segment, numColumns*cellsPerColumn),
		presynaptic:    make(map[CellID][]*Synapse),
		opts:           opts,
	}, nil
}

// NumColumns returns the column count.
func (c *Connections) NumColumns() int { return c.numColumns }

// CellsPerColumn returns the number of cells per column.
func (c *Connections) CellsPerColumn() int { return c.cellsPerColumn }

// NumCells returns the total cell count.
func (c *Connections) NumCells() int { return c.numColumns * c.cellsPerColumn }

// NumSegments returns the number of live segments in the store.
func (c *Connections) NumSegments() int { return c.numSegments }

// NumSynapses returns the number of live synapses in the store.
func (c *Connections) NumSynapses() int { return c.numSynapses }

// ColumnForCell returns the column the cell belongs to.
func (c *Connections) ColumnForCell(cell CellID) int {
	return int(cell) / c.cellsPerColumn
}

// CellsForColumn returns the cells of a column in ascending order.
func (c *Connections) CellsForColumn(column int) []CellID {
	start := CellID(column * c.cellsPerColumn)
	cells := make([]CellID, c.cellsPerColumn)
	for i := range cells {
		cells[i] = start + CellID(i)
	}
	return cells
}

// SegmentsForCell returns the cell's live segments in creation order.
func (c *Connections) SegmentsForCell(cell CellID) []*Segment {
	return c.segments[cell]
}

// NumSegmentsForCell returns the number of live segments on the cell.
func (c *Connections) NumSegmentsForCell(cell CellID) int {
	return len(c.segments[cell])
}

// CreateSegment appends a new segment to the cell with the next creation
// ordinal. iteration seeds the segment's last-used bookkeeping so a fresh
// segment is not immediately evicted by the least-recently-used cap.
func (c *Connections) CreateSegment(cell CellID, iteration uint64) *Segment {
	if max := c.opts.MaxSegmentsPerCell; max > 0 {
		for len(c.segments[cell]) >= max {
			c.DestroySegment(c.leastRecentlyUsedSegment(cell))
		}
	}

	seg := &Segment{
		id:       c.nextSegmentID,
		cell:     cell,
		lastUsed: iteration,
	}
	c.nextSegmentID++
	c.segments[cell] = append(c.segments[cell], seg)
	c.numSegments++
	return seg
}

// leastRecentlyUsedSegment returns the cell's segment with the lowest
// last-used iteration, ties broken by lowest ID.
func (c *Connections) leastRecentlyUsedSegment(cell CellID) *Segment {
	var lru *Segment
	for _, seg := range c.segments[cell] {
		if lru == nil || seg.lastUsed < lru.lastUsed ||
			(seg.lastUsed == lru.lastUsed && seg.id < lru.id) {
			lru = seg
		}
	}
	return lru
}

// CreateSynapse adds a synapse from presynaptic to the segment at the given
// initial permanence (clamped to [0, 1]). At most one synapse exists per
// (segment, presynaptic cell) pair: on a duplicate the existing synapse is
// returned unchanged with created=false.
func (c *Connections) CreateSynapse(seg *Segment, presynaptic CellID, permanence float32) (syn *Synapse, created bool) {
	for _, existing := range seg.synapses {
		if existing.presynaptic == presynaptic {
			return existing, false
		}
	}

	if max := c.opts.MaxSynapsesPerSegment; max > 0 {
		for len(seg.synapses) >= max {
			// Unlink directly: the empty-segment cascade must not fire
			// while the replacement synapse is still in flight.
			c.removeSynapse(c.weakestSynapse(seg))
		}
	}

	syn = &Synapse{
		segment:     seg,
		presynaptic: presynaptic,
		permanence:  clampPermanence(permanence),
	}
	seg.synapses = append(seg.synapses, syn)
	c.presynaptic[presynaptic] = append(c.presynaptic[presynaptic], syn)
	c.numSynapses++
	return syn, true
}

// weakestSynapse returns the segment's synapse with the lowest permanence,
// first-seen on ties.
func (c *Connections) weakestSynapse(seg *Segment) *Synapse {
	weakest := seg.synapses[0]
	for _, syn := range seg.synapses[1:] {
		if syn.permanence < weakest.permanence {
			weakest = syn
		}
	}
	return weakest
}

// SetPermanence updates a synapse's permanence, clamped to [0, 1]. It never
// destroys the synapse; degenerate-synapse cleanup is the caller's policy.
func (c *Connections) SetPermanence(syn *Synapse, permanence float32) {
	syn.permanence = clampPermanence(permanence)
}

// DestroySynapse removes the synapse from its segment and from the
// presynaptic index. A segment left with zero synapses is destroyed too.
func (c *Connections) DestroySynapse(syn *Synapse) {
	seg := syn.segment
	if seg.destroyed {
		return
	}

	if !c.removeSynapse(syn) {
		return
	}

	if len(seg.synapses) == 0 {
		c.DestroySegment(seg)
	}
}

// removeSynapse unlinks the synapse from segment and index. Returns false
// if the synapse was already removed.
func (c *Connections) removeSynapse(syn *Synapse) bool {
	seg := syn.segment

	found := false
	for i, s := range seg.synapses {
		if s == syn {
			seg.synapses = append(seg.synapses[:i], seg.synapses[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return false
	}

	index := c.presynaptic[syn.presynaptic]
	for i, s := range index {
		if s == syn {
			index = append(index[:i], index[i+1:]...)
			break
		}
	}
	if len(index) == 0 {
		delete(c.presynaptic, syn.presynaptic)
	} else {
		c.presynaptic[syn.presynaptic] = index
	}

	c.numSynapses--
	return true
}

// DestroySegment removes the segment and all its synapses.
func (c *Connections) DestroySegment(seg *Segment) {
	if seg.destroyed {
		return
	}

	for _, syn := range seg.Synapses() {
		c.removeSynapse(syn)
	}

	cellSegs := c.segments[seg.cell]
	for i, s := range cellSegs {
		if s == seg {
			c.segments[seg.cell] = append(cellSegs[:i], cellSegs[i+1:]...)
			break
		}
	}

	seg.destroyed = true
	c.numSegments--
}

// SortSegments orders segments in place by creation ordinal. Iteration over
// sorted segments is how the engine keeps learning reproducible: map-backed
// activity counts have no stable order of their own.
func SortSegments(segs []*Segment) {
	sort.Slice(segs, func(i, j int) bool { return segs[i].id < segs[j].id })
}

func clampPermanence(p float32) float32 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
