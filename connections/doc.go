// Package connections implements the shared neural-connectivity store for
// hierarchical temporal memory: a fixed population of cells grouped into
// columns, with dendrite segments and synapses created and destroyed
// continuously during learning.
//
// The store holds structure only. Learning policy (when to adapt, grow or
// punish) lives in the engine; the store guarantees the structural
// invariants: at most one synapse per (segment, presynaptic cell) pair,
// permanence clamped to [0, 1], and cascading cleanup of empty segments.
package connections
