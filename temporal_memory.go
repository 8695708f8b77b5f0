package htmgo

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/htmgo/connections"
)

// TemporalMemory learns temporal sequences over sparse column activations.
// Each Compute call consumes the active columns of one timestep and the
// previous cycle's cell and segment state, and produces the new active and
// winner cells plus the active and matching segments that will predict the
// next timestep.
//
// A TemporalMemory exclusively owns its connectivity store. Calls are
// synchronous and single-threaded; no overlapping cycles are permitted.
type TemporalMemory struct {
	params Params
	conns  *connections.Connections
	rng    *rand.Rand
	opts   options

	iteration uint64

	activeCells []connections.CellID
	activeMask  *bitset.BitSet
	winnerCells []connections.CellID
	winnerMask  *bitset.BitSet

	// activeSegments and matchingSegments carry the dendrite evaluation of
	// the previous cycle into the next one, sorted by creation ordinal.
	activeSegments   []*connections.Segment
	matchingSegments []*connections.Segment

	// potential holds the previous evaluation's active potential synapse
	// counts, consulted when topping segments up with new synapses.
	potential map[*connections.Segment]int
}

// New creates a temporal memory engine from validated params.
func New(params Params, optFns ...Option) (*TemporalMemory, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	conns, err := connections.New(params.ColumnCount, params.CellsPerColumn, func(o *connections.Options) {
		o.MaxSegmentsPerCell = params.MaxSegmentsPerCell
		o.MaxSynapsesPerSegment = params.MaxSynapsesPerSegment
	})
	if err != nil {
		return nil, err
	}

	opts := applyOptions(optFns)

	source := opts.source
	if source == nil {
		source = rand.NewSource(params.Seed)
	}

	tm := &TemporalMemory{
		params:    params,
		conns:     conns,
		rng:       rand.New(source),
		opts:      opts,
		potential: make(map[*connections.Segment]int),
	}
	tm.activeMask = bitset.New(uint(conns.NumCells()))
	tm.winnerMask = bitset.New(uint(conns.NumCells()))

	tm.opts.logger.WithSeed(params.Seed).WithColumns(params.ColumnCount).
		Debug("temporal memory created",
			"cells_per_column", params.CellsPerColumn,
			"activation_threshold", params.ActivationThreshold,
		)
	return tm, nil
}

// Params returns the engine configuration.
func (tm *TemporalMemory) Params() Params { return tm.params }

// Connections returns the underlying connectivity store.
func (tm *TemporalMemory) Connections() *connections.Connections { return tm.conns }

// Iteration returns the number of learning cycles computed so far.
func (tm *TemporalMemory) Iteration() uint64 { return tm.iteration }

// ActiveCells returns the cells activated by the last Compute call.
func (tm *TemporalMemory) ActiveCells() []connections.CellID {
	return append([]connections.CellID(nil), tm.activeCells...)
}

// WinnerCells returns the winner cells of the last Compute call.
func (tm *TemporalMemory) WinnerCells() []connections.CellID {
	return append([]connections.CellID(nil), tm.winnerCells...)
}

// IsActiveCell reports whether the cell was activated by the last Compute
// call.
func (tm *TemporalMemory) IsActiveCell(cell connections.CellID) bool {
	return tm.activeMask.Test(uint(cell))
}

// IsWinnerCell reports whether the cell was a winner in the last Compute
// call.
func (tm *TemporalMemory) IsWinnerCell(cell connections.CellID) bool {
	return tm.winnerMask.Test(uint(cell))
}

// ActiveSegments returns the IDs of segments active after the last dendrite
// evaluation, in ascending creation order.
func (tm *TemporalMemory) ActiveSegments() []connections.SegmentID {
	return segmentIDs(tm.activeSegments)
}

// MatchingSegments returns the IDs of segments matching after the last
// dendrite evaluation, in ascending creation order.
func (tm *TemporalMemory) MatchingSegments() []connections.SegmentID {
	return segmentIDs(tm.matchingSegments)
}

// PredictiveCells returns the distinct cells owning at least one active
// segment, in ascending order. These are the cells predicted to become
// active at the next timestep.
func (tm *TemporalMemory) PredictiveCells() []connections.CellID {
	seen := bitset.New(uint(tm.conns.NumCells()))
	cells := make([]connections.CellID, 0, len(tm.activeSegments))
	for _, seg := range tm.activeSegments {
		if !seen.Test(uint(seg.Cell())) {
			seen.Set(uint(seg.Cell()))
			cells = append(cells, seg.Cell())
		}
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i] < cells[j] })
	return cells
}

// PredictedColumns returns the distinct columns owning at least one active
// segment, ascending.
func (tm *TemporalMemory) PredictedColumns() []int {
	cols := make([]int, 0, len(tm.activeSegments))
	last := -1
	for _, cell := range tm.PredictiveCells() {
		col := tm.conns.ColumnForCell(cell)
		if col != last {
			cols = append(cols, col)
			last = col
		}
	}
	return cols
}

// Compute runs one full cycle: cell activation from the given active
// columns and the previous cycle's state, followed by dendrite
// re-evaluation over the new active cells. activeColumns must be strictly
// ascending indices in [0, ColumnCount); an empty input is valid and
// produces empty active and winner sets.
func (tm *TemporalMemory) Compute(ctx context.Context, activeColumns []int, learn bool) error {
	start := time.Now()
	err := tm.compute(activeColumns, learn)
	tm.opts.metricsCollector.RecordCompute(time.Since(start), err)
	tm.opts.logger.LogCompute(ctx, len(activeColumns), len(tm.activeCells), len(tm.winnerCells), learn, err)
	return err
}

// Reset clears all transient per-sequence state: active cells, winner
// cells, active segments and matching segments. Structural state (columns,
// cells, segments, synapses) is untouched. Call at sequence boundaries to
// prevent spurious synapse growth into the next sequence's first input.
func (tm *TemporalMemory) Reset() {
	tm.activeCells = nil
	tm.winnerCells = nil
	tm.activeMask.ClearAll()
	tm.winnerMask.ClearAll()
	tm.activeSegments = nil
	tm.matchingSegments = nil
	tm.potential = make(map[*connections.Segment]int)

	tm.opts.metricsCollector.RecordReset()
	tm.opts.logger.LogReset(context.Background())
}

func (tm *TemporalMemory) compute(activeColumns []int, learn bool) error {
	if err := tm.validateColumns(activeColumns); err != nil {
		return err
	}

	prevActiveMask := tm.activeMask
	prevWinnerCells := tm.winnerCells
	prevPotential := tm.potential

	activeByColumn := tm.groupByColumn(tm.activeSegments)
	matchingByColumn := tm.groupByColumn(tm.matchingSegments)

	tm.activeCells = nil
	tm.winnerCells = nil
	tm.activeMask = bitset.New(uint(tm.conns.NumCells()))
	tm.winnerMask = bitset.New(uint(tm.conns.NumCells()))

	activeSet := make(map[int]bool, len(activeColumns))
	for _, col := range activeColumns {
		activeSet[col] = true
	}

	for _, col := range mergeColumns(activeColumns, activeByColumn, matchingByColumn) {
		switch {
		case activeSet[col] && len(activeByColumn[col]) > 0:
			tm.activatePredictedColumn(activeByColumn[col], prevActiveMask, prevWinnerCells, prevPotential, learn)
		case activeSet[col]:
			tm.burstColumn(col, matchingByColumn[col], prevActiveMask, prevWinnerCells, prevPotential, learn)
		case learn && tm.params.PredictedSegmentDecrement > 0:
			tm.punishPredictedColumn(matchingByColumn[col], prevActiveMask)
		}
	}

	tm.evaluateDendrites(learn)
	return nil
}

func (tm *TemporalMemory) validateColumns(activeColumns []int) error {
	prev := -1
	for _, col := range activeColumns {
		if col < 0 || col >= tm.params.ColumnCount {
			return &ErrInvalidColumn{Index: col, NumColumns: tm.params.ColumnCount}
		}
		if col <= prev {
			return ErrColumnsNotAscending
		}
		prev = col
	}
	return nil
}

// groupByColumn buckets segments by their owning column. Input slices are
// ordinal-sorted, so each bucket inherits a stable order.
func (tm *TemporalMemory) groupByColumn(segs []*connections.Segment) map[int][]*connections.Segment {
	byColumn := make(map[int][]*connections.Segment)
	for _, seg := range segs {
		col := tm.conns.ColumnForCell(seg.Cell())
		byColumn[col] = append(byColumn[col], seg)
	}
	return byColumn
}

// mergeColumns returns the ascending union of the active columns and the
// columns holding active or matching segments.
func mergeColumns(activeColumns []int, activeByColumn, matchingByColumn map[int][]*connections.Segment) []int {
	seen := make(map[int]bool, len(activeColumns)+len(activeByColumn)+len(matchingByColumn))
	cols := make([]int, 0, len(seen))
	for _, col := range activeColumns {
		if !seen[col] {
			seen[col] = true
			cols = append(cols, col)
		}
	}
	for col := range activeByColumn {
		if !seen[col] {
			seen[col] = true
			cols = append(cols, col)
		}
	}
	for col := range matchingByColumn {
		if !seen[col] {
			seen[col] = true
			cols = append(cols, col)
		}
	}
	sort.Ints(cols)
	return cols
}

// activatePredictedColumn activates the cells owning the column's active
// segments. Each distinct cell is added once to both the active and winner
// sets. When learning, every active segment is reinforced and topped up
// with synapses to previous winner cells.
func (tm *TemporalMemory) activatePredictedColumn(activeSegs []*connections.Segment, prevActive *bitset.BitSet, prevWinner []connections.CellID, prevPotential map[*connections.Segment]int, learn bool) {
	for _, seg := range activeSegs {
		cell := seg.Cell()
		if !tm.activeMask.Test(uint(cell)) {
			tm.activeMask.Set(uint(cell))
			tm.activeCells = append(tm.activeCells, cell)
			tm.winnerMask.Set(uint(cell))
			tm.winnerCells = append(tm.winnerCells, cell)
		}

		if learn {
			tm.adaptSegment(seg, prevActive, tm.params.PermanenceIncrement, -tm.params.PermanenceDecrement)
			if !seg.Destroyed() {
				if grow := tm.params.MaxNewSynapseCount - prevPotential[seg]; grow > 0 {
					tm.growSynapses(seg, prevWinner, grow)
				}
			}
		}
	}
}

// burstColumn activates every cell in the column and selects one winner:
// the cell of the best matching segment if any exists, otherwise the least
// used cell. When learning, the chosen segment is reinforced (or a new one
// is created on the least used cell) and grown toward previous winners.
func (tm *TemporalMemory) burstColumn(col int, matchingSegs []*connections.Segment, prevActive *bitset.BitSet, prevWinner []connections.CellID, prevPotential map[*connections.Segment]int, learn bool) {
	for _, cell := range tm.conns.CellsForColumn(col) {
		tm.activeMask.Set(uint(cell))
		tm.activeCells = append(tm.activeCells, cell)
	}

	var winner connections.CellID
	if len(matchingSegs) > 0 {
		best := bestMatchingSegment(matchingSegs, prevPotential)
		winner = best.Cell()
		if learn {
			tm.adaptSegment(best, prevActive, tm.params.PermanenceIncrement, -tm.params.PermanenceDecrement)
			if !best.Destroyed() {
				if grow := tm.params.MaxNewSynapseCount - prevPotential[best]; grow > 0 {
					tm.growSynapses(best, prevWinner, grow)
				}
			}
		}
	} else {
		winner = tm.leastUsedCell(col)
		if learn && len(prevWinner) > 0 {
			seg := tm.conns.CreateSegment(winner, tm.iteration)
			tm.growSynapses(seg, prevWinner, tm.params.MaxNewSynapseCount)
		}
	}

	tm.winnerMask.Set(uint(winner))
	tm.winnerCells = append(tm.winnerCells, winner)
}

// punishPredictedColumn decrements the active synapses of every matching
// segment on a column that was predicted but did not become active.
func (tm *TemporalMemory) punishPredictedColumn(matchingSegs []*connections.Segment, prevActive *bitset.BitSet) {
	for _, seg := range matchingSegs {
		tm.adaptSegment(seg, prevActive, -tm.params.PredictedSegmentDecrement, 0)
	}
}

// adaptSegment applies activeDelta to synapses whose presynaptic cell is in
// prevActive and inactiveDelta to the rest, clamping to [0, 1]. Synapses
// driven below the permanence epsilon are destroyed; a segment left empty
// is destroyed by cascade.
func (tm *TemporalMemory) adaptSegment(seg *connections.Segment, prevActive *bitset.BitSet, activeDelta, inactiveDelta float32) {
	var destroy []*connections.Synapse
	for _, syn := range seg.Synapses() {
		perm := syn.Permanence()
		if prevActive.Test(uint(syn.Presynaptic())) {
			perm += activeDelta
		} else {
			perm += inactiveDelta
		}

		if perm < connections.PermanenceEpsilon {
			destroy = append(destroy, syn)
			continue
		}
		tm.conns.SetPermanence(syn, perm)
	}

	for _, syn := range destroy {
		tm.conns.DestroySynapse(syn)
	}
}

// growSynapses draws up to desired cells without replacement, uniformly at
// random, from the previous winner cells not already presynaptic on the
// segment, creating one synapse per draw at the initial permanence.
func (tm *TemporalMemory) growSynapses(seg *connections.Segment, prevWinner []connections.CellID, desired int) {
	candidates := make([]connections.CellID, 0, len(prevWinner))
	for _, cell := range prevWinner {
		if !seg.HasPresynapticCell(cell) {
			candidates = append(candidates, cell)
		}
	}

	for desired > 0 && len(candidates) > 0 {
		i := tm.rng.Intn(len(candidates))
		tm.conns.CreateSynapse(seg, candidates[i], tm.params.InitialPermanence)
		candidates[i] = candidates[len(candidates)-1]
		candidates = candidates[:len(candidates)-1]
		desired--
	}
}

// bestMatchingSegment returns the matching segment with the highest
// potential synapse count. The first segment seen wins ties, which is
// deterministic because matching segments arrive ordinal-sorted.
func bestMatchingSegment(matchingSegs []*connections.Segment, potential map[*connections.Segment]int) *connections.Segment {
	best := matchingSegs[0]
	bestCount := potential[best]
	for _, seg := range matchingSegs[1:] {
		if count := potential[seg]; count > bestCount {
			best = seg
			bestCount = count
		}
	}
	return best
}

// leastUsedCell returns the column cell with the fewest segments, ties
// broken uniformly at random.
func (tm *TemporalMemory) leastUsedCell(col int) connections.CellID {
	cells := tm.conns.CellsForColumn(col)

	fewest := tm.conns.NumSegmentsForCell(cells[0])
	for _, cell := range cells[1:] {
		if n := tm.conns.NumSegmentsForCell(cell); n < fewest {
			fewest = n
		}
	}

	tied := cells[:0]
	for _, cell := range cells {
		if tm.conns.NumSegmentsForCell(cell) == fewest {
			tied = append(tied, cell)
		}
	}
	return tied[tm.rng.Intn(len(tied))]
}

// evaluateDendrites recomputes segment activity over the new active cells.
// This runs after cell activation on purpose: activation consumes the
// previous cycle's dendrite state, and depolarization for the next cycle is
// computed from the cells just activated.
func (tm *TemporalMemory) evaluateDendrites(learn bool) {
	activity := tm.conns.ComputeActivity(tm.activeCells, tm.params.ConnectedPermanence)

	tm.activeSegments = segmentsAtThreshold(activity.Connected, tm.params.ActivationThreshold)
	tm.matchingSegments = segmentsAtThreshold(activity.Potential, tm.params.MinThreshold)
	tm.potential = activity.Potential

	if learn {
		for _, seg := range tm.activeSegments {
			seg.MarkUsed(tm.iteration)
		}
		tm.iteration++
	}
}

// segmentsAtThreshold collects segments whose count reaches the threshold,
// sorted by creation ordinal for reproducible iteration next cycle.
func segmentsAtThreshold(counts map[*connections.Segment]int, threshold int) []*connections.Segment {
	segs := make([]*connections.Segment, 0, len(counts))
	for seg, count := range counts {
		if count >= threshold {
			segs = append(segs, seg)
		}
	}
	connections.SortSegments(segs)
	return segs
}

func segmentIDs(segs []*connections.Segment) []connections.SegmentID {
	ids := make([]connections.SegmentID, len(segs))
	for i, seg := range segs {
		ids[i] = seg.ID()
	}
	return ids
}
