// Package testutil provides testing utilities for htmgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating reproducible sparse column streams,
// the input format the temporal memory engine consumes.
//
// # Random Column Patterns
//
//	rng := testutil.NewRNG(seed)
//	cols := rng.SparseColumns(2048, 40) // 40 ascending distinct columns
//
// # Streams
//
//	stream := testutil.RepeatSequence(patterns, 20)
//	noisy := rng.WithNoise(stream, 2048, 0.05)
package testutil
