// Package htmgo implements the temporal memory algorithm of hierarchical
// temporal memory (HTM): an online learning engine that consumes sparse
// active-column patterns from a spatial pooler and learns the temporal
// sequences they form, by growing and adapting dendrite segments and
// synapses over a fixed population of cells.
//
// The engine is deterministic: given equal parameters, seed and input
// stream, two runs produce identical cell, segment and synapse state at
// every cycle. All randomness flows from the single seeded source supplied
// at construction.
//
// Basic usage:
//
//	var params htmgo.Params
//	params.Defaults()
//
//	tm, err := htmgo.New(params)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, activeColumns := range stream {
//		if err := tm.Compute(ctx, activeColumns, true); err != nil {
//			log.Fatal(err)
//		}
//		_ = tm.PredictiveCells() // cells predicted for the next step
//	}
//	tm.Reset() // at sequence boundaries
//
// The learned connectivity graph can be persisted to any
// blobstore.BlobStore and reconstructed later with LoadSnapshot.
package htmgo
