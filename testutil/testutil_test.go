package testutil

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparseColumns(t *testing.T) {
	rng := NewRNG(4711)

	cols := rng.SparseColumns(2048, 40)

	assert.Equal(t, 40, len(cols))
	assert.True(t, sort.IntsAreSorted(cols))
	seen := map[int]bool{}
	for _, col := range cols {
		assert.False(t, seen[col])
		seen[col] = true
		assert.GreaterOrEqual(t, col, 0)
		assert.Less(t, col, 2048)
	}
}

func TestSparseColumnsCapsAtNumColumns(t *testing.T) {
	rng := NewRNG(4711)

	cols := rng.SparseColumns(8, 100)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, cols)
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	s1 := rng.SparseStream(4, 256, 10)

	rng.Reset()
	s2 := rng.SparseStream(4, 256, 10)

	assert.Equal(t, s1, s2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestRepeatSequence(t *testing.T) {
	patterns := [][]int{{0, 1}, {2, 3}}

	stream := RepeatSequence(patterns, 3)

	assert.Equal(t, 6, len(stream))
	assert.Equal(t, patterns[0], stream[0])
	assert.Equal(t, patterns[1], stream[5])
}

func TestDisjointPatterns(t *testing.T) {
	patterns := DisjointPatterns(100, 4, 10)

	assert.Equal(t, 4, len(patterns))
	seen := map[int]bool{}
	for _, cols := range patterns {
		assert.Equal(t, 10, len(cols))
		for _, col := range cols {
			assert.False(t, seen[col])
			seen[col] = true
		}
	}

	// Width that does not fit yields fewer patterns.
	assert.Equal(t, 2, len(DisjointPatterns(25, 4, 10)))
}

func TestWithNoise(t *testing.T) {
	rng := NewRNG(4711)
	stream := [][]int{{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}}

	noisy := rng.WithNoise(stream, 2048, 0.5)

	assert.Equal(t, len(stream), len(noisy))
	assert.Equal(t, len(stream[0]), len(noisy[0]))
	assert.True(t, sort.IntsAreSorted(noisy[0]))

	// Original stream untouched.
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, stream[0])
}
