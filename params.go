package htmgo

// Params holds the temporal memory configuration. It is supplied once at
// initialization and immutable thereafter.
type Params struct {
	// ColumnCount is the number of mini-columns in the layer.
	ColumnCount int

	// CellsPerColumn is the fixed number of cells per column.
	CellsPerColumn int

	// ActivationThreshold is the number of connected active synapses a
	// segment needs to be considered active (predicting).
	ActivationThreshold int

	// MinThreshold is the (lower) number of potential active synapses a
	// segment needs to be considered matching.
	MinThreshold int

	// InitialPermanence is the permanence assigned to newly grown synapses.
	InitialPermanence float32

	// ConnectedPermanence is the permanence at or above which a synapse
	// counts as connected.
	ConnectedPermanence float32

	// PermanenceIncrement is added to synapses whose presynaptic cell was
	// active when a segment is reinforced.
	PermanenceIncrement float32

	// PermanenceDecrement is subtracted from synapses whose presynaptic
	// cell was inactive when a segment is reinforced.
	PermanenceDecrement float32

	// PredictedSegmentDecrement is subtracted from the active synapses of
	// matching segments on columns that failed to become active. Zero
	// disables punishment.
	PredictedSegmentDecrement float32

	// MaxNewSynapseCount is the target number of active potential synapses
	// per segment; growth tops segments up toward this count.
	MaxNewSynapseCount int

	// MaxSegmentsPerCell caps segments per cell (least recently used is
	// evicted). Zero means unlimited.
	MaxSegmentsPerCell int

	// MaxSynapsesPerSegment caps synapses per segment (weakest is evicted).
	// Zero means unlimited.
	MaxSynapsesPerSegment int

	// Seed for the engine's random source. All randomness (synapse growth
	// sampling, least-used-cell tie-breaks) flows from this one generator,
	// so runs with equal seed, params and input are bit-identical.
	Seed int64
}

// Defaults sets the standard temporal memory parameters.
func (p *Params) Defaults() {
	p.ColumnCount = 2048
	p.CellsPerColumn = 32
	p.ActivationThreshold = 13
	p.MinThreshold = 10
	p.InitialPermanence = 0.21
	p.ConnectedPermanence = 0.5
	p.PermanenceIncrement = 0.10
	p.PermanenceDecrement = 0.10
	p.PredictedSegmentDecrement = 0.0
	p.MaxNewSynapseCount = 20
	p.MaxSegmentsPerCell = 255
	p.MaxSynapsesPerSegment = 255
	p.Seed = 42
}

// Validate returns a typed error for the first invalid parameter.
func (p *Params) Validate() error {
	switch {
	case p.ColumnCount <= 0:
		return &ErrInvalidParam{Param: "ColumnCount", Reason: "must be positive"}
	case p.CellsPerColumn <= 0:
		return &ErrInvalidParam{Param: "CellsPerColumn", Reason: "must be positive"}
	case p.ActivationThreshold <= 0:
		return &ErrInvalidParam{Param: "ActivationThreshold", Reason: "must be positive"}
	case p.MinThreshold <= 0:
		return &ErrInvalidParam{Param: "MinThreshold", Reason: "must be positive"}
	case p.MinThreshold > p.ActivationThreshold:
		return &ErrInvalidParam{Param: "MinThreshold", Reason: "must not exceed ActivationThreshold"}
	case p.InitialPermanence < 0 || p.InitialPermanence > 1:
		return &ErrInvalidParam{Param: "InitialPermanence", Reason: "must be in [0, 1]"}
	case p.ConnectedPermanence < 0 || p.ConnectedPermanence > 1:
		return &ErrInvalidParam{Param: "ConnectedPermanence", Reason: "must be in [0, 1]"}
	case p.PermanenceIncrement < 0:
		return &ErrInvalidParam{Param: "PermanenceIncrement", Reason: "must not be negative"}
	case p.PermanenceDecrement < 0:
		return &ErrInvalidParam{Param: "PermanenceDecrement", Reason: "must not be negative"}
	case p.PredictedSegmentDecrement < 0:
		return &ErrInvalidParam{Param: "PredictedSegmentDecrement", Reason: "must not be negative"}
	case p.MaxNewSynapseCount <= 0:
		return &ErrInvalidParam{Param: "MaxNewSynapseCount", Reason: "must be positive"}
	case p.MaxSegmentsPerCell < 0:
		return &ErrInvalidParam{Param: "MaxSegmentsPerCell", Reason: "must not be negative"}
	case p.MaxSynapsesPerSegment < 0:
		return &ErrInvalidParam{Param: "MaxSynapsesPerSegment", Reason: "must not be negative"}
	}
	return nil
}
