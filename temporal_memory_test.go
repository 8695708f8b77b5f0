package htmgo

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/htmgo/connections"
)

// testParams returns a small configuration where single synapses matter:
// two connected active synapses activate a segment, one potential synapse
// makes it matching.
func testParams() Params {
	var p Params
	p.Defaults()
	p.ColumnCount = 8
	p.CellsPerColumn = 4
	p.ActivationThreshold = 2
	p.MinThreshold = 1
	p.MaxNewSynapseCount = 4
	return p
}

func TestNewValidatesParams(t *testing.T) {
	p := testParams()
	p.ColumnCount = 0

	_, err := New(p)
	var ep *ErrInvalidParam
	require.ErrorAs(t, err, &ep)
	assert.Equal(t, "ColumnCount", ep.Param)
}

func TestComputeValidatesColumns(t *testing.T) {
	tm, err := New(testParams())
	require.NoError(t, err)
	ctx := context.Background()

	err = tm.Compute(ctx, []int{-1}, true)
	var ec *ErrInvalidColumn
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, -1, ec.Index)

	err = tm.Compute(ctx, []int{8}, true)
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, 8, ec.Index)
	assert.Equal(t, 8, ec.NumColumns)

	assert.ErrorIs(t, tm.Compute(ctx, []int{2, 2}, true), ErrColumnsNotAscending)
	assert.ErrorIs(t, tm.Compute(ctx, []int{3, 1}, true), ErrColumnsNotAscending)

	// Failed validation must not have touched any state.
	assert.Zero(t, tm.Connections().NumSegments())
	assert.Empty(t, tm.ActiveCells())
}

func TestComputeEmptyInput(t *testing.T) {
	tm, err := New(testParams())
	require.NoError(t, err)

	require.NoError(t, tm.Compute(context.Background(), nil, true))
	assert.Empty(t, tm.ActiveCells())
	assert.Empty(t, tm.WinnerCells())
	assert.Empty(t, tm.ActiveSegments())
	assert.Empty(t, tm.MatchingSegments())
}

func TestBurstingActivatesWholeColumn(t *testing.T) {
	tm, err := New(testParams())
	require.NoError(t, err)

	require.NoError(t, tm.Compute(context.Background(), []int{0, 3}, true))

	// Every cell of both unpredicted columns is active.
	assert.ElementsMatch(t,
		[]connections.CellID{0, 1, 2, 3, 12, 13, 14, 15},
		tm.ActiveCells(),
	)

	// Each bursting column contributes exactly one winner.
	winners := tm.WinnerCells()
	require.Len(t, winners, 2)
	assert.Equal(t, 0, tm.Connections().ColumnForCell(winners[0]))
	assert.Equal(t, 3, tm.Connections().ColumnForCell(winners[1]))
	for _, w := range winners {
		assert.True(t, tm.IsWinnerCell(w))
		assert.True(t, tm.IsActiveCell(w))
	}

	// No previous winner cells existed, so nothing was grown.
	assert.Zero(t, tm.Connections().NumSegments())
}

func TestPredictedColumnActivatesSingleCell(t *testing.T) {
	tm, err := New(testParams())
	require.NoError(t, err)
	ctx := context.Background()

	// One segment on cell 4 (column 1) listening to two cells of column 0.
	conns := tm.Connections()
	seg := conns.CreateSegment(4, 0)
	conns.CreateSynapse(seg, 0, 0.5)
	conns.CreateSynapse(seg, 1, 0.5)

	require.NoError(t, tm.Compute(ctx, []int{0}, false))
	assert.Equal(t, []connections.SegmentID{seg.ID()}, tm.ActiveSegments())
	assert.Equal(t, []connections.CellID{4}, tm.PredictiveCells())
	assert.Equal(t, []int{1}, tm.PredictedColumns())

	require.NoError(t, tm.Compute(ctx, []int{1}, false))
	assert.Equal(t, []connections.CellID{4}, tm.ActiveCells())
	assert.Equal(t, []connections.CellID{4}, tm.WinnerCells())
}

func TestPredictedColumnReinforcement(t *testing.T) {
	p := testParams()
	p.MaxNewSynapseCount = 2 // already satisfied: no top-up growth
	tm, err := New(p)
	require.NoError(t, err)
	ctx := context.Background()

	conns := tm.Connections()
	seg := conns.CreateSegment(4, 0)
	syn0, _ := conns.CreateSynapse(seg, 0, 0.5)
	syn1, _ := conns.CreateSynapse(seg, 1, 0.5)

	require.NoError(t, tm.Compute(ctx, []int{0}, true))
	require.NoError(t, tm.Compute(ctx, []int{1}, true))

	// Both presynaptic cells were active last cycle: reinforced.
	assert.InDelta(t, 0.6, syn0.Permanence(), 1e-6)
	assert.InDelta(t, 0.6, syn1.Permanence(), 1e-6)
}

func TestPunishmentDecrementsMatchingSegments(t *testing.T) {
	p := testParams()
	p.PredictedSegmentDecrement = 0.02
	tm, err := New(p)
	require.NoError(t, err)
	ctx := context.Background()

	conns := tm.Connections()
	seg := conns.CreateSegment(4, 0)
	syn0, _ := conns.CreateSynapse(seg, 0, 0.5)
	syn1, _ := conns.CreateSynapse(seg, 1, 0.5)

	// Column 0 bursts; the segment predicts column 1 for the next step.
	require.NoError(t, tm.Compute(ctx, []int{0}, true))
	require.NotEmpty(t, tm.MatchingSegments())

	// Column 1 does not become active: the prediction failed.
	require.NoError(t, tm.Compute(ctx, []int{3}, true))

	assert.InDelta(t, 0.48, syn0.Permanence(), 1e-6)
	assert.InDelta(t, 0.48, syn1.Permanence(), 1e-6)
}

func TestPunishmentDisabledByZeroDecrement(t *testing.T) {
	tm, err := New(testParams()) // PredictedSegmentDecrement is 0
	require.NoError(t, err)
	ctx := context.Background()

	conns := tm.Connections()
	seg := conns.CreateSegment(4, 0)
	syn, _ := conns.CreateSynapse(seg, 0, 0.5)
	conns.CreateSynapse(seg, 1, 0.5)

	require.NoError(t, tm.Compute(ctx, []int{0}, true))
	require.NoError(t, tm.Compute(ctx, []int{3}, true))

	assert.InDelta(t, 0.5, syn.Permanence(), 1e-6)
}

func TestPunishmentDestroysDegenerateSynapses(t *testing.T) {
	p := testParams()
	p.PredictedSegmentDecrement = 0.02
	tm, err := New(p)
	require.NoError(t, err)
	ctx := context.Background()

	conns := tm.Connections()
	seg := conns.CreateSegment(4, 0)
	conns.CreateSynapse(seg, 0, 0.015)

	require.NoError(t, tm.Compute(ctx, []int{0}, true))
	require.NotEmpty(t, tm.MatchingSegments())

	// Punishment drives the only synapse below the epsilon: the synapse
	// and then the empty segment are destroyed.
	require.NoError(t, tm.Compute(ctx, nil, true))
	assert.Zero(t, conns.NumSynapses())
	assert.Zero(t, conns.NumSegments())
}

func TestSingleColumnSequenceLearning(t *testing.T) {
	p := testParams()
	p.ColumnCount = 1
	tm, err := New(p)
	require.NoError(t, err)
	ctx := context.Background()
	conns := tm.Connections()

	// Cycle 1: bursts, but with no previous winner cells there is nothing
	// to grow toward.
	require.NoError(t, tm.Compute(ctx, []int{0}, true))
	assert.Len(t, tm.ActiveCells(), 4)
	assert.Len(t, tm.WinnerCells(), 1)
	assert.Zero(t, conns.NumSegments())
	assert.Empty(t, tm.MatchingSegments())

	// Cycle 2: bursts again and grows a segment on the new winner toward
	// the previous winner; the segment is immediately matching because its
	// presynaptic cell is active in the bursting column.
	require.NoError(t, tm.Compute(ctx, []int{0}, true))
	assert.Equal(t, 1, conns.NumSegments())
	assert.Equal(t, 1, conns.NumSynapses())
	require.Len(t, tm.MatchingSegments(), 1)

	// Cycle 3: the matching segment's cell wins and is reinforced.
	require.NoError(t, tm.Compute(ctx, []int{0}, true))
	winners := tm.WinnerCells()
	require.Len(t, winners, 1)
	assert.Equal(t, 1, conns.NumSegments())

	segs := conns.SegmentsForCell(winners[0])
	require.Len(t, segs, 1)
	for _, syn := range segs[0].Synapses() {
		if tm.IsActiveCell(syn.Presynaptic()) {
			assert.Greater(t, syn.Permanence(), float32(0.21))
		}
	}
}

func TestGrowthCappedByMaxNewSynapseCount(t *testing.T) {
	p := testParams()
	p.ColumnCount = 20
	p.CellsPerColumn = 1
	p.MaxNewSynapseCount = 5
	tm, err := New(p)
	require.NoError(t, err)
	ctx := context.Background()

	// Ten bursting columns leave ten previous winner cells.
	require.NoError(t, tm.Compute(ctx, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, true))

	require.NoError(t, tm.Compute(ctx, []int{10}, true))
	segs := tm.Connections().SegmentsForCell(10)
	require.Len(t, segs, 1)
	assert.Equal(t, 5, segs[0].NumSynapses())

	// No duplicate presynaptic cells among the grown synapses.
	seen := map[connections.CellID]bool{}
	for _, syn := range segs[0].Synapses() {
		assert.False(t, seen[syn.Presynaptic()])
		seen[syn.Presynaptic()] = true
		assert.Less(t, int(syn.Presynaptic()), 10)
	}
}

func TestGrowthLimitedByCandidates(t *testing.T) {
	p := testParams()
	p.ColumnCount = 20
	p.CellsPerColumn = 1
	p.MaxNewSynapseCount = 5
	tm, err := New(p)
	require.NoError(t, err)
	ctx := context.Background()

	// Two previous winners only: growth cannot exceed the candidate pool.
	require.NoError(t, tm.Compute(ctx, []int{0, 1}, true))
	require.NoError(t, tm.Compute(ctx, []int{10}, true))

	segs := tm.Connections().SegmentsForCell(10)
	require.Len(t, segs, 1)
	assert.Equal(t, 2, segs[0].NumSynapses())
}

func TestResetClearsTransientStateOnly(t *testing.T) {
	p := testParams()
	p.ColumnCount = 1
	tm, err := New(p)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, tm.Compute(ctx, []int{0}, true))
	require.NoError(t, tm.Compute(ctx, []int{0}, true))
	require.NotEmpty(t, tm.ActiveCells())
	require.NotZero(t, tm.Connections().NumSegments())

	segments := tm.Connections().NumSegments()
	synapses := tm.Connections().NumSynapses()

	tm.Reset()

	assert.Empty(t, tm.ActiveCells())
	assert.Empty(t, tm.WinnerCells())
	assert.Empty(t, tm.ActiveSegments())
	assert.Empty(t, tm.MatchingSegments())
	assert.Empty(t, tm.PredictiveCells())

	// Structure is untouched.
	assert.Equal(t, segments, tm.Connections().NumSegments())
	assert.Equal(t, synapses, tm.Connections().NumSynapses())
}

func TestIterationAdvancesOnlyWhenLearning(t *testing.T) {
	tm, err := New(testParams())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, tm.Compute(ctx, []int{0}, false))
	require.NoError(t, tm.Compute(ctx, []int{1}, false))
	assert.Zero(t, tm.Iteration())

	require.NoError(t, tm.Compute(ctx, []int{2}, true))
	assert.Equal(t, uint64(1), tm.Iteration())
}

func TestDeterministicRuns(t *testing.T) {
	p := testParams()
	p.ColumnCount = 32
	p.PredictedSegmentDecrement = 0.004
	p.Seed = 7

	stream := randomStream(t, 50, p.ColumnCount, 11)

	run := func() *TemporalMemory {
		tm, err := New(p)
		require.NoError(t, err)
		return tm
	}

	a, b := run(), run()
	ctx := context.Background()

	for i, cols := range stream {
		require.NoError(t, a.Compute(ctx, cols, true))
		require.NoError(t, b.Compute(ctx, cols, true))

		assert.Equal(t, a.ActiveCells(), b.ActiveCells(), "cycle %d", i)
		assert.Equal(t, a.WinnerCells(), b.WinnerCells(), "cycle %d", i)
		assert.Equal(t, a.ActiveSegments(), b.ActiveSegments(), "cycle %d", i)
		assert.Equal(t, a.MatchingSegments(), b.MatchingSegments(), "cycle %d", i)
	}

	assert.Equal(t, a.Connections().NumSegments(), b.Connections().NumSegments())
	assert.Equal(t, a.Connections().NumSynapses(), b.Connections().NumSynapses())
}

func TestWinnersAreActive(t *testing.T) {
	p := testParams()
	p.ColumnCount = 32
	tm, err := New(p)
	require.NoError(t, err)
	ctx := context.Background()

	for _, cols := range randomStream(t, 30, p.ColumnCount, 3) {
		require.NoError(t, tm.Compute(ctx, cols, true))
		for _, w := range tm.WinnerCells() {
			assert.True(t, tm.IsActiveCell(w))
		}
	}
}

// randomStream generates a reproducible stream of ascending distinct
// active-column sets.
func randomStream(t *testing.T, steps, numColumns int, seed int64) [][]int {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))
	stream := make([][]int, steps)
	for i := range stream {
		n := rng.Intn(numColumns / 4)
		seen := map[int]bool{}
		cols := make([]int, 0, n)
		for len(cols) < n {
			col := rng.Intn(numColumns)
			if !seen[col] {
				seen[col] = true
				cols = append(cols, col)
			}
		}
		sort.Ints(cols)
		stream[i] = cols
	}
	return stream
}

func TestComputeErrorDoesNotAdvanceIteration(t *testing.T) {
	tm, err := New(testParams())
	require.NoError(t, err)

	require.Error(t, tm.Compute(context.Background(), []int{99}, true))
	assert.Zero(t, tm.Iteration())
	assert.True(t, errors.Is(tm.Compute(context.Background(), []int{5, 5}, true), ErrColumnsNotAscending))
}
