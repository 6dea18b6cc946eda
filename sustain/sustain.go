package sustain

import (
	"sort"

	"github.com/mirtools/beatquant/constants"
	"github.com/mirtools/beatquant/model"
)

type pedalInterval struct {
	start float64
	end   float64
}

// Apply extends each note through any sustain-pedal interval it ends inside
// of: a note still sounding when the pedal is released rings until the
// release point. Extended notes are truncated at the next onset of the same
// pitch. The input sequence is left untouched; the returned sequence is a
// transformed copy.
func Apply(ns *model.NoteSequence) *model.NoteSequence {
	res := ns.Clone()

	intervals := pedalIntervals(res)
	if len(intervals) > 0 {
		for _, n := range res.Notes {
			for _, iv := range intervals {
				if n.End >= iv.start && n.End < iv.end {
					n.End = iv.end
					break
				}
			}
		}
		truncateRetriggers(res.Notes)
	}

	for _, n := range res.Notes {
		if n.End > res.TotalTime {
			res.TotalTime = n.End
		}
	}
	return res
}

// pedalIntervals collapses the CC64 stream into [down, release) spans. A
// pedal still held at the end of the sequence releases at TotalTime.
func pedalIntervals(ns *model.NoteSequence) []pedalInterval {
	var ccs []model.ControlChange
	for _, cc := range ns.ControlChanges {
		if cc.Controller == constants.SustainController {
			ccs = append(ccs, cc)
		}
	}
	sort.SliceStable(ccs, func(i, j int) bool { return ccs[i].Time < ccs[j].Time })

	var res []pedalInterval
	down := -1.0
	for _, cc := range ccs {
		if cc.Value >= constants.SustainThreshold {
			if down < 0 {
				down = cc.Time
			}
		} else if down >= 0 {
			res = append(res, pedalInterval{down, cc.Time})
			down = -1
		}
	}
	if down >= 0 {
		end := ns.TotalTime
		if end < down {
			end = down
		}
		res = append(res, pedalInterval{down, end})
	}
	return res
}

// truncateRetriggers keeps an extended note from ringing into the next
// strike of the same pitch.
func truncateRetriggers(notes []*model.Note) {
	byPitch := make(map[uint8][]*model.Note)
	for _, n := range notes {
		byPitch[n.Pitch] = append(byPitch[n.Pitch], n)
	}
	for _, group := range byPitch {
		sort.SliceStable(group, func(i, j int) bool { return group[i].Start < group[j].Start })
		for i := 0; i+1 < len(group); i++ {
			if group[i].End > group[i+1].Start {
				group[i].End = group[i+1].Start
			}
		}
	}
}
