package htmgo

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/htmgo/blobstore"
	"github.com/hupe1980/htmgo/codec"
	"github.com/hupe1980/htmgo/connections"
	"github.com/hupe1980/htmgo/persistence"
)

// engineSnapshot is the persisted form of an engine: the structural
// connectivity graph plus the learning iteration counter. Transient
// per-cycle state is deliberately absent; a loaded engine starts at a
// sequence boundary, exactly as after Reset.
type engineSnapshot struct {
	Iteration   uint64
	Connections *connections.Snapshot
}

// SaveSnapshot persists the connectivity graph to the blob store under the
// given name, using the engine's configured codec and compression.
func (tm *TemporalMemory) SaveSnapshot(ctx context.Context, store blobstore.BlobStore, name string) error {
	start := time.Now()
	size, err := tm.saveSnapshot(ctx, store, name)
	tm.opts.metricsCollector.RecordSnapshotSave(time.Since(start), err)
	tm.opts.logger.LogSnapshotSave(ctx, name, size, err)
	return err
}

func (tm *TemporalMemory) saveSnapshot(ctx context.Context, store blobstore.BlobStore, name string) (int, error) {
	if store == nil {
		return 0, ErrNilStore
	}

	payload, err := tm.opts.codec.Marshal(&engineSnapshot{
		Iteration:   tm.iteration,
		Connections: tm.conns.Snapshot(),
	})
	if err != nil {
		return 0, fmt.Errorf("encode snapshot: %w", err)
	}

	envelope, err := persistence.Encode(payload, tm.opts.codec.Name(), tm.opts.compression)
	if err != nil {
		return 0, err
	}

	if err := store.Put(ctx, name, envelope); err != nil {
		return 0, err
	}
	return len(envelope), nil
}

// LoadSnapshot reconstructs an engine from a persisted connectivity graph.
// params must describe the same column/cell geometry the snapshot was taken
// with; the codec is read from the envelope header, so any engine codec
// setting is ignored on load.
func LoadSnapshot(ctx context.Context, store blobstore.BlobStore, name string, params Params, optFns ...Option) (*TemporalMemory, error) {
	opts := applyOptions(optFns)

	start := time.Now()
	tm, err := loadSnapshot(ctx, store, name, params, opts)
	opts.metricsCollector.RecordSnapshotLoad(time.Since(start), err)

	segments, synapses := 0, 0
	if tm != nil {
		segments = tm.conns.NumSegments()
		synapses = tm.conns.NumSynapses()
	}
	opts.logger.LogSnapshotLoad(ctx, name, segments, synapses, err)
	return tm, err
}

func loadSnapshot(ctx context.Context, store blobstore.BlobStore, name string, params Params, opts options) (*TemporalMemory, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	envelope, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	payload, codecName, err := persistence.Decode(envelope)
	if err != nil {
		return nil, err
	}

	c, ok := codec.ByName(codecName)
	if !ok {
		return nil, fmt.Errorf("snapshot encoded with unknown codec %q", codecName)
	}

	var snap engineSnapshot
	if err := c.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Connections == nil {
		return nil, fmt.Errorf("snapshot has no connectivity section")
	}

	if snap.Connections.NumColumns != params.ColumnCount {
		return nil, &ErrSnapshotMismatch{Field: "columns", Want: params.ColumnCount, Got: snap.Connections.NumColumns}
	}
	if snap.Connections.CellsPerColumn != params.CellsPerColumn {
		return nil, &ErrSnapshotMismatch{Field: "cells per column", Want: params.CellsPerColumn, Got: snap.Connections.CellsPerColumn}
	}

	conns, err := connections.FromSnapshot(snap.Connections)
	if err != nil {
		return nil, err
	}

	source := opts.source
	if source == nil {
		source = rand.NewSource(params.Seed)
	}

	tm := &TemporalMemory{
		params:    params,
		conns:     conns,
		rng:       rand.New(source),
		opts:      opts,
		iteration: snap.Iteration,
		potential: make(map[*connections.Segment]int),
	}
	tm.activeMask = bitset.New(uint(conns.NumCells()))
	tm.winnerMask = bitset.New(uint(conns.NumCells()))
	return tm, nil
}
