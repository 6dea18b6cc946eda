package midi

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/mirtools/beatquant/model"
)

// ReadMidiFile parses a standard MIDI file from disk.
func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return &blank, fmt.Errorf("reading midi file: %w", err)
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return &blank, fmt.Errorf("parsing midi file: %w", err)
	}
	return res, nil
}

// ToNoteSequence lowers an SMF to the engine's continuous-time note model:
// note on/off pairs become Notes with second-resolution timestamps via the
// file's tempo map, controller events are kept for the sustain normalizer.
// A note-on with velocity 0 counts as a note-off; an unterminated note ends
// at the last event of its track.
func ToNoteSequence(s *smf.SMF) *model.NoteSequence {
	var ns model.NoteSequence

	for _, events := range s.Tracks {
		var absTicks int64
		open := make(map[uint8][]*model.Note)

		for _, event := range events {
			absTicks += int64(event.Delta)
			t := float64(s.TimeAt(absTicks)) / 1e6 // TimeAt is microseconds

			var channel uint8
			var key uint8
			var velocity uint8
			var controller uint8
			var value uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				if velocity == 0 {
					closeNote(open, key, t)
					break
				}
				n := &model.Note{Start: t, End: t, Pitch: key, Velocity: velocity}
				ns.Notes = append(ns.Notes, n)
				open[key] = append(open[key], n)
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				closeNote(open, key, t)
			case event.Message.GetControlChange(&channel, &controller, &value):
				ns.ControlChanges = append(ns.ControlChanges, model.ControlChange{
					Time:       t,
					Controller: controller,
					Value:      value,
				})
			}

			if t > ns.TotalTime {
				ns.TotalTime = t
			}
		}

		// close anything the track left hanging
		trackEnd := float64(s.TimeAt(absTicks)) / 1e6
		for key, stack := range open {
			for _, n := range stack {
				n.End = trackEnd
			}
			delete(open, key)
		}
	}

	sort.SliceStable(ns.Notes, func(i, j int) bool {
		if ns.Notes[i].Start != ns.Notes[j].Start {
			return ns.Notes[i].Start < ns.Notes[j].Start
		}
		return ns.Notes[i].Pitch < ns.Notes[j].Pitch
	})
	return &ns
}

// closeNote ends the most recently opened note of the given pitch.
func closeNote(open map[uint8][]*model.Note, key uint8, t float64) {
	stack := open[key]
	if len(stack) == 0 {
		return
	}
	n := stack[len(stack)-1]
	open[key] = stack[:len(stack)-1]
	n.End = t
}
