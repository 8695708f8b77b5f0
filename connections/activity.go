package connections

// Activity holds per-segment synapse counts for one dendrite evaluation.
// Segments without any active presynaptic cell do not appear.
type Activity struct {
	// Potential counts synapses whose presynaptic cell is active,
	// regardless of permanence.
	Potential map[*Segment]int

	// Connected counts synapses whose presynaptic cell is active and whose
	// permanence is at or above the connected threshold.
	Connected map[*Segment]int
}

// ComputeActivity counts, for every segment reachable from the given active
// cells, how many of its synapses are potential-and-active and how many are
// additionally connected (permanence >= connectedPermanence).
//
// This runs every cycle over possibly thousands of active cells, so it
// walks the presynaptic index rather than the segment population: cost is
// proportional to the number of synapses originating at active cells.
func (c *Connections) ComputeActivity(activeCells []CellID, connectedPermanence float32) Activity {
	act := Activity{
		Potential: make(map[*Segment]int),
		Connected: make(map[*Segment]int),
	}

	for _, cell := range activeCells {
		for _, syn := range c.presynaptic[cell] {
			seg := syn.segment
			act.Potential[seg]++
			if syn.permanence >= connectedPermanence {
				act.Connected[seg]++
			}
		}
	}

	return act
}
