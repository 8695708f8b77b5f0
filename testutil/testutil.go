package testutil

import (
	"math/rand"
	"sort"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// SparseColumns returns active distinct column indices in [0, numColumns),
// sorted ascending, ready to feed into a Compute call.
func (r *RNG) SparseColumns(numColumns, active int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sparseColumns(numColumns, active)
}

func (r *RNG) sparseColumns(numColumns, active int) []int {
	if active > numColumns {
		active = numColumns
	}

	seen := make(map[int]bool, active)
	cols := make([]int, 0, active)
	for len(cols) < active {
		col := r.rand.Intn(numColumns)
		if !seen[col] {
			seen[col] = true
			cols = append(cols, col)
		}
	}
	sort.Ints(cols)
	return cols
}

// SparseStream generates steps independent sparse column patterns.
// Locks only once per call (preferred over calling SparseColumns in a loop).
func (r *RNG) SparseStream(steps, numColumns, active int) [][]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	stream := make([][]int, steps)
	for i := range stream {
		stream[i] = r.sparseColumns(numColumns, active)
	}
	return stream
}

// WithNoise returns a copy of stream where each step has noiseFraction of
// its columns replaced by random ones. The input stream is not modified.
func (r *RNG) WithNoise(stream [][]int, numColumns int, noiseFraction float64) [][]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	noisy := make([][]int, len(stream))
	for i, cols := range stream {
		flips := int(float64(len(cols)) * noiseFraction)

		seen := make(map[int]bool, len(cols))
		for _, col := range cols {
			seen[col] = true
		}

		out := append([]int(nil), cols...)
		for f := 0; f < flips; f++ {
			col := r.rand.Intn(numColumns)
			if seen[col] {
				continue
			}
			victim := r.rand.Intn(len(out))
			delete(seen, out[victim])
			seen[col] = true
			out[victim] = col
		}
		sort.Ints(out)
		noisy[i] = out
	}
	return noisy
}

// RepeatSequence cycles the given patterns repetitions times, the canonical
// input for sequence-learning tests: after enough repetitions the engine
// predicts each pattern from its predecessor.
func RepeatSequence(patterns [][]int, repetitions int) [][]int {
	stream := make([][]int, 0, len(patterns)*repetitions)
	for i := 0; i < repetitions; i++ {
		stream = append(stream, patterns...)
	}
	return stream
}

// DisjointPatterns partitions [0, numColumns) into count patterns of the
// given width. Patterns share no columns, so sequences built from them have
// unambiguous transitions.
func DisjointPatterns(numColumns, count, width int) [][]int {
	patterns := make([][]int, 0, count)
	next := 0
	for i := 0; i < count && next+width <= numColumns; i++ {
		cols := make([]int, width)
		for j := range cols {
			cols[j] = next
			next++
		}
		patterns = append(patterns, cols)
	}
	return patterns
}
