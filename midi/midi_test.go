package midi

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/mirtools/beatquant/model"
	"github.com/mirtools/beatquant/sample"
)

func roundTrip(t *testing.T, s *smf.SMF) *smf.SMF {
	t.Helper()
	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	if err != nil {
		t.Fatalf("writing smf: %v", err)
	}
	res, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("re-reading smf: %v", err)
	}
	return res
}

func TestToNoteSequenceRecoversNotes(t *testing.T) {
	notes := []*model.Note{
		{Start: 0.0, End: 0.5, Pitch: 60, Velocity: 100},
		{Start: 0.5, End: 1.0, Pitch: 64, Velocity: 90},
		{Start: 1.0, End: 2.5, Pitch: 67, Velocity: 80},
	}
	s := roundTrip(t, sample.CreateMidi(120.0, notes))

	assert := assert.New(t)
	ns := ToNoteSequence(s)
	assert.Len(ns.Notes, 3)
	for i, want := range notes {
		got := ns.Notes[i]
		assert.Equal(want.Pitch, got.Pitch)
		assert.Equal(want.Velocity, got.Velocity)
		assert.InDelta(want.Start, got.Start, 1e-6)
		assert.InDelta(want.End, got.End, 1e-6)
	}
	assert.InDelta(2.5, ns.TotalTime, 1e-6)
}

func TestToNoteSequenceCapturesControlChanges(t *testing.T) {
	var track smf.Track
	track.Add(0, smf.MetaTempo(120))
	track.Add(0, gomidi.NoteOn(0, 60, 100))
	track.Add(240, gomidi.ControlChange(0, 64, 127)) // pedal down at 0.25s
	track.Add(240, gomidi.NoteOff(0, 60))
	track.Add(480, gomidi.ControlChange(0, 64, 0)) // pedal up at 1.0s
	track.Close(0)

	var s smf.SMF
	s.TimeFormat = smf.MetricTicks(480)
	s.Tracks = append(s.Tracks, track)

	assert := assert.New(t)
	ns := ToNoteSequence(roundTrip(t, &s))
	assert.Len(ns.Notes, 1)
	assert.Len(ns.ControlChanges, 2)
	assert.Equal(uint8(64), ns.ControlChanges[0].Controller)
	assert.Equal(uint8(127), ns.ControlChanges[0].Value)
	assert.InDelta(0.25, ns.ControlChanges[0].Time, 1e-6)
	assert.InDelta(1.0, ns.ControlChanges[1].Time, 1e-6)
}

func TestVelocityZeroNoteOnEndsNote(t *testing.T) {
	var track smf.Track
	track.Add(0, smf.MetaTempo(120))
	track.Add(0, gomidi.NoteOn(0, 60, 100))
	track.Add(480, gomidi.NoteOn(0, 60, 0)) // running-status style note off
	track.Close(0)

	var s smf.SMF
	s.TimeFormat = smf.MetricTicks(480)
	s.Tracks = append(s.Tracks, track)

	assert := assert.New(t)
	ns := ToNoteSequence(roundTrip(t, &s))
	assert.Len(ns.Notes, 1)
	assert.InDelta(0.5, ns.Notes[0].End, 1e-6)
}

func TestUnterminatedNoteEndsAtTrackEnd(t *testing.T) {
	var track smf.Track
	track.Add(0, smf.MetaTempo(120))
	track.Add(0, gomidi.NoteOn(0, 60, 100))
	track.Add(0, gomidi.NoteOn(0, 64, 100))
	track.Add(960, gomidi.NoteOff(0, 64))
	track.Close(0)

	var s smf.SMF
	s.TimeFormat = smf.MetricTicks(480)
	s.Tracks = append(s.Tracks, track)

	assert := assert.New(t)
	ns := ToNoteSequence(roundTrip(t, &s))
	assert.Len(ns.Notes, 2)
	// notes are sorted by start then pitch; 60 never got an off
	assert.Equal(uint8(60), ns.Notes[0].Pitch)
	assert.InDelta(1.0, ns.Notes[0].End, 1e-6)
}

func TestReadMidiFile(t *testing.T) {
	notes := []*model.Note{{Start: 0.0, End: 0.5, Pitch: 60, Velocity: 100}}
	path := filepath.Join(t.TempDir(), "sample.mid")

	assert := assert.New(t)
	assert.NoError(sample.CreateMidi(120.0, notes).WriteFile(path))

	s, err := ReadMidiFile(path)
	assert.NoError(err)
	ns := ToNoteSequence(s)
	assert.Len(ns.Notes, 1)
}

func TestReadMidiFileMissing(t *testing.T) {
	_, err := ReadMidiFile(filepath.Join(t.TempDir(), "nope.mid"))
	assert.Error(t, err)
}
