package connections

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"
)

// Compile time checks to ensure Connections satisfies the gob interfaces.
var (
	_ gob.GobEncoder = (*Connections)(nil)
	_ gob.GobDecoder = (*Connections)(nil)
)

// SegmentSnapshot is the flat record form of one segment and its synapses.
type SegmentSnapshot struct {
	ID          SegmentID
	Cell        CellID
	LastUsed    uint64
	Presynaptic []CellID
	Permanences []float32
}

// Snapshot is the flat, cycle-free record form of the connectivity graph,
// suitable for any codec. Segments are listed in ascending ID order.
type Snapshot struct {
	NumColumns            int
	CellsPerColumn        int
	MaxSegmentsPerCell    int
	MaxSynapsesPerSegment int
	NextSegmentID         SegmentID
	Segments              []SegmentSnapshot
}

// Snapshot captures the structural state of the store. Per-cycle activity
// is not part of the structure and is not captured.
func (c *Connections) Snapshot() *Snapshot {
	snap := &Snapshot{
		NumColumns:            c.numColumns,
		CellsPerColumn:        c.cellsPerColumn,
		MaxSegmentsPerCell:    c.opts.MaxSegmentsPerCell,
		MaxSynapsesPerSegment: c.opts.MaxSynapsesPerSegment,
		NextSegmentID:         c.nextSegmentID,
		Segments:              make([]SegmentSnapshot, 0, c.numSegments),
	}

	for _, cellSegs := range c.segments {
		for _, seg := range cellSegs {
			rec := SegmentSnapshot{
				ID:          seg.id,
				Cell:        seg.cell,
				LastUsed:    seg.lastUsed,
				Presynaptic: make([]CellID, len(seg.synapses)),
				Permanences: make([]float32, len(seg.synapses)),
			}
			for i, syn := range seg.synapses {
				rec.Presynaptic[i] = syn.presynaptic
				rec.Permanences[i] = syn.permanence
			}
			snap.Segments = append(snap.Segments, rec)
		}
	}

	// Per-cell slices hold segments in creation order already; a global
	// sort by ID gives one canonical order across cells.
	sort.Slice(snap.Segments, func(i, j int) bool {
		return snap.Segments[i].ID < snap.Segments[j].ID
	})
	return snap
}

// FromSnapshot reconstructs a store from its record form.
func FromSnapshot(snap *Snapshot) (*Connections, error) {
	c, err := New(snap.NumColumns, snap.CellsPerColumn, func(o *Options) {
		o.MaxSegmentsPerCell = snap.MaxSegmentsPerCell
		o.MaxSynapsesPerSegment = snap.MaxSynapsesPerSegment
	})
	if err != nil {
		return nil, err
	}

	numCells := CellID(c.NumCells())
	for _, rec := range snap.Segments {
		if rec.Cell >= numCells {
			return nil, fmt.Errorf("connections: snapshot segment %d references cell %d outside population of %d", rec.ID, rec.Cell, numCells)
		}
		if len(rec.Presynaptic) != len(rec.Permanences) {
			return nil, fmt.Errorf("connections: snapshot segment %d has %d presynaptic cells but %d permanences", rec.ID, len(rec.Presynaptic), len(rec.Permanences))
		}
		if rec.ID >= snap.NextSegmentID {
			return nil, fmt.Errorf("connections: snapshot segment %d is not below next ID %d", rec.ID, snap.NextSegmentID)
		}

		seg := &Segment{
			id:       rec.ID,
			cell:     rec.Cell,
			lastUsed: rec.LastUsed,
		}
		for i, presyn := range rec.Presynaptic {
			if presyn >= numCells {
				return nil, fmt.Errorf("connections: snapshot segment %d references presynaptic cell %d outside population of %d", rec.ID, presyn, numCells)
			}
			syn := &Synapse{
				segment:     seg,
				presynaptic: presyn,
				permanence:  clampPermanence(rec.Permanences[i]),
			}
			seg.synapses = append(seg.synapses, syn)
			c.presynaptic[presyn] = append(c.presynaptic[presyn], syn)
			c.numSynapses++
		}
		c.segments[rec.Cell] = append(c.segments[rec.Cell], seg)
		c.numSegments++
	}

	c.nextSegmentID = snap.NextSegmentID
	return c, nil
}

// GobEncode method for Connections.
func (c *Connections) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)

	if err := encoder.Encode(c.Snapshot()); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GobDecode method for Connections.
func (c *Connections) GobDecode(data []byte) error {
	decoder := gob.NewDecoder(bytes.NewBuffer(data))

	var snap Snapshot
	if err := decoder.Decode(&snap); err != nil {
		return err
	}

	restored, err := FromSnapshot(&snap)
	if err != nil {
		return err
	}

	*c = *restored
	return nil
}
