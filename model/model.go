package model

// Note is a single performed note. Start/End are in seconds until the
// quantizer rewrites them onto grid-aligned values (same fields, in place).
type Note struct {
	Start    float64
	End      float64
	Pitch    uint8
	Velocity uint8
}

// ControlChange is a raw controller event, kept only as far as the sustain
// normalizer needs it.
type ControlChange struct {
	Time       float64
	Controller uint8
	Value      uint8
}

// NoteSequence is the mutable container a quantization pass operates on.
type NoteSequence struct {
	Notes          []*Note
	ControlChanges []ControlChange
	TotalTime      float64
}

// Clone deep-copies the sequence so transforms can stay pure.
func (ns *NoteSequence) Clone() *NoteSequence {
	res := NoteSequence{TotalTime: ns.TotalTime}
	res.Notes = make([]*Note, len(ns.Notes))
	for i, n := range ns.Notes {
		c := *n
		res.Notes[i] = &c
	}
	res.ControlChanges = append(res.ControlChanges, ns.ControlChanges...)
	return &res
}

// BeatTrack is the output of rhythm extraction. Never mutated after creation.
type BeatTrack struct {
	Tempo      float64   // beats per minute, > 0
	BeatTimes  []float64 // seconds, strictly increasing
	Confidence float64   // 0..1

	// TempoEstimates holds every candidate tempo the backend considered.
	// BeatIntervals holds consecutive beat-to-beat distances in seconds;
	// normally len(BeatTimes)-1, but a backend that found fewer than two
	// beats reports a single 60/Tempo interval instead.
	TempoEstimates []float64
	BeatIntervals  []float64
}

// DiscreteNote is one row of the quantized note table: grid step indices
// plus the attributes carried over from the source note.
type DiscreteNote struct {
	OnStep   int
	OffStep  int
	Pitch    uint8
	Velocity uint8
}

// QuantizationResult bundles everything one quantization pass produces.
// Sequence keeps one entry per input note even when DiscreteNotes is shorter
// after dedup.
type QuantizationResult struct {
	Sequence      *NoteSequence
	DiscreteNotes []DiscreteNote
	Grid          []float64
}
