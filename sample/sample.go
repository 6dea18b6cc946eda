package sample

import (
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/mirtools/beatquant/constants"
	"github.com/mirtools/beatquant/model"
)

const ticksPerQuarter = 480

// CreateMidi builds a single-track SMF that performs the given notes at a
// fixed tempo. Note times are in seconds, as in the engine model.
func CreateMidi(bpm float64, notes []*model.Note) *smf.SMF {
	var res smf.SMF
	res.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	toTicks := func(seconds float64) int64 {
		return int64(math.Round(seconds * bpm / 60.0 * ticksPerQuarter))
	}

	type event struct {
		ticks int64
		off   bool
		key   uint8
		vel   uint8
	}
	var events []event
	for _, n := range notes {
		events = append(events, event{toTicks(n.Start), false, n.Pitch, n.Velocity})
		events = append(events, event{toTicks(n.End), true, n.Pitch, 0})
	}
	// offs before ons at the same tick
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].ticks != events[j].ticks {
			return events[i].ticks < events[j].ticks
		}
		return events[i].off && !events[j].off
	})

	var track smf.Track
	track.Add(0, smf.MetaTempo(bpm))
	var cursor int64
	for _, e := range events {
		delta := uint32(e.ticks - cursor)
		cursor = e.ticks
		if e.off {
			track.Add(delta, midi.NoteOff(0, e.key))
		} else {
			track.Add(delta, midi.NoteOn(0, e.key, e.vel))
		}
	}
	track.Close(0)
	res.Tracks = append(res.Tracks, track)
	return &res
}

// Click synthesizes a metronome waveform at the engine sample rate: a short
// decaying sine ping on every beat. Handy for exercising the analysis tiers
// with a known ground-truth tempo.
func Click(bpm float64, seconds float64) []float64 {
	total := int(seconds * constants.SampleRate)
	res := make([]float64, total)

	interval := 60.0 / bpm
	pingLen := int(0.03 * constants.SampleRate)
	for beat := 0.0; beat < seconds; beat += interval {
		start := int(beat * constants.SampleRate)
		for i := 0; i < pingLen && start+i < total; i++ {
			t := float64(i) / constants.SampleRate
			res[start+i] += math.Sin(2*math.Pi*1000*t) * math.Exp(-t*200)
		}
	}
	return res
}
