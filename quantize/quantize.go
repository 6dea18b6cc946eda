package quantize

import (
	"sort"

	"github.com/mirtools/beatquant/constants"
	"github.com/mirtools/beatquant/grid"
	"github.com/mirtools/beatquant/model"
	"github.com/mirtools/beatquant/sustain"
)

// Quantize rewrites a note sequence onto a beat-synchronous grid using the
// default interpolator. See QuantizeWith.
func Quantize(ns *model.NoteSequence, beatTimes []float64, stepsPerBeat int, ignoreSustain bool) (*model.QuantizationResult, error) {
	return QuantizeWith(grid.Default(), ns, beatTimes, stepsPerBeat, ignoreSustain)
}

// QuantizeWith maps every note's start/end onto grid-aligned timestamps and
// builds the discrete note table.
//
// Unless ignoreSustain is set, the sustain normalizer runs first and the
// returned sequence is a sustained copy; with ignoreSustain the caller's
// sequence itself is rewritten in place. Either way every input note gets
// quantized times: the dedup below only thins the discrete table, never the
// sequence.
func QuantizeWith(ip grid.Interpolator, ns *model.NoteSequence, beatTimes []float64, stepsPerBeat int, ignoreSustain bool) (*model.QuantizationResult, error) {
	seq := ns
	if !ignoreSustain {
		seq = sustain.Apply(ns)
	}

	ons := make([]float64, len(seq.Notes))
	offs := make([]float64, len(seq.Notes))
	for i, n := range seq.Notes {
		ons[i] = n.Start
		offs[i] = n.End
	}

	exact, err := ip.Interpolate(beatTimes, stepsPerBeat, false)
	if err != nil {
		return nil, err
	}
	onIdx, offIdx, err := Digitize(ons, offs, exact)
	if err != nil {
		return nil, err
	}

	extended, err := ip.Interpolate(beatTimes, stepsPerBeat, true)
	if err != nil {
		return nil, err
	}

	rows := make([]model.DiscreteNote, len(seq.Notes))
	for i, n := range seq.Notes {
		rows[i] = model.DiscreteNote{
			OnStep:   onIdx[i],
			OffStep:  offIdx[i],
			Pitch:    n.Pitch,
			Velocity: n.Velocity,
		}
	}
	rows = dropDuplicateNotes(rows)

	// rewrite follows the pre-dedup order, one entry per input note
	for i, n := range seq.Notes {
		n.Start = extended[onIdx[i]]
		n.End = extended[offIdx[i]]
	}

	return &model.QuantizationResult{
		Sequence:      seq,
		DiscreteNotes: rows,
		Grid:          extended,
	}, nil
}

// dropDuplicateNotes removes re-triggered or overlapping identical pitches
// that landed in the same onset bin, keeping the first occurrence in sort
// order. Two separately keyed sorts on purpose: dedup groups by onset+pitch,
// the final table orders by onset then offset.
func dropDuplicateNotes(rows []model.DiscreteNote) []model.DiscreteNote {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].OnStep*constants.NumPitches+int(rows[i].Pitch) <
			rows[j].OnStep*constants.NumPitches+int(rows[j].Pitch)
	})

	res := make([]model.DiscreteNote, 0, len(rows))
	for i, r := range rows {
		if i > 0 && r.OnStep == rows[i-1].OnStep && r.Pitch == rows[i-1].Pitch {
			continue
		}
		res = append(res, r)
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].OnStep*constants.NumPitches+res[i].OffStep <
			res[j].OnStep*constants.NumPitches+res[j].OffStep
	})
	return res
}
