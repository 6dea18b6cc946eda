package sustain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mirtools/beatquant/model"
)

func pedal(time float64, value uint8) model.ControlChange {
	return model.ControlChange{Time: time, Controller: 64, Value: value}
}

func TestExtendsNoteEndingUnderPedal(t *testing.T) {
	ns := &model.NoteSequence{
		Notes: []*model.Note{
			{Start: 0.2, End: 1.0, Pitch: 60, Velocity: 100},
		},
		ControlChanges: []model.ControlChange{pedal(0.5, 127), pedal(2.0, 0)},
		TotalTime:      3.0,
	}

	assert := assert.New(t)
	res := Apply(ns)
	assert.Equal(2.0, res.Notes[0].End)
	assert.Equal(1.0, ns.Notes[0].End, "input must stay unmodified")
}

func TestNoteEndingAfterReleaseIsUntouched(t *testing.T) {
	ns := &model.NoteSequence{
		Notes: []*model.Note{
			{Start: 0.2, End: 2.5, Pitch: 60, Velocity: 100},
		},
		ControlChanges: []model.ControlChange{pedal(0.5, 127), pedal(2.0, 0)},
		TotalTime:      3.0,
	}

	res := Apply(ns)
	assert.Equal(t, 2.5, res.Notes[0].End)
}

func TestHalfPedalValuesBelowThresholdRelease(t *testing.T) {
	ns := &model.NoteSequence{
		Notes: []*model.Note{
			{Start: 0.0, End: 0.8, Pitch: 60, Velocity: 100},
		},
		ControlChanges: []model.ControlChange{
			pedal(0.1, 100),
			pedal(1.0, 30), // below 64: release
			pedal(1.5, 127),
			pedal(2.5, 0),
		},
		TotalTime: 3.0,
	}

	res := Apply(ns)
	assert.Equal(t, 1.0, res.Notes[0].End, "first release ends the hold")
}

func TestPedalHeldToSequenceEnd(t *testing.T) {
	ns := &model.NoteSequence{
		Notes: []*model.Note{
			{Start: 0.2, End: 1.0, Pitch: 60, Velocity: 100},
		},
		ControlChanges: []model.ControlChange{pedal(0.5, 127)},
		TotalTime:      4.0,
	}

	res := Apply(ns)
	assert.Equal(t, 4.0, res.Notes[0].End)
}

func TestRetriggerTruncatesExtendedNote(t *testing.T) {
	ns := &model.NoteSequence{
		Notes: []*model.Note{
			{Start: 0.2, End: 1.0, Pitch: 60, Velocity: 100},
			{Start: 1.5, End: 1.8, Pitch: 60, Velocity: 90},
		},
		ControlChanges: []model.ControlChange{pedal(0.5, 127), pedal(3.0, 0)},
		TotalTime:      3.0,
	}

	assert := assert.New(t)
	res := Apply(ns)
	assert.Equal(1.5, res.Notes[0].End, "held note stops at the next strike of its pitch")
	assert.Equal(3.0, res.Notes[1].End)
}

func TestOtherControllersIgnored(t *testing.T) {
	ns := &model.NoteSequence{
		Notes: []*model.Note{
			{Start: 0.2, End: 1.0, Pitch: 60, Velocity: 100},
		},
		ControlChanges: []model.ControlChange{
			{Time: 0.5, Controller: 67, Value: 127}, // soft pedal
		},
		TotalTime: 3.0,
	}

	res := Apply(ns)
	assert.Equal(t, 1.0, res.Notes[0].End)
}

func TestNoPedalEventsIsIdentity(t *testing.T) {
	ns := &model.NoteSequence{
		Notes: []*model.Note{
			{Start: 0.2, End: 1.0, Pitch: 60, Velocity: 100},
			{Start: 1.2, End: 2.0, Pitch: 64, Velocity: 80},
		},
		TotalTime: 2.0,
	}

	assert := assert.New(t)
	res := Apply(ns)
	assert.NotSame(ns, res)
	for i := range ns.Notes {
		assert.Equal(*ns.Notes[i], *res.Notes[i])
	}
}
