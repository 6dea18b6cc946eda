package rhythm

import (
	"fmt"

	"github.com/mirtools/beatquant/constants"
	"github.com/mirtools/beatquant/model"
	"github.com/mirtools/beatquant/util"
)

// Constant is the last-resort tier: no audio analysis at all, just a uniform
// 120 BPM grid over the waveform (or hinted) duration. Confidence 0.5 flags
// the degraded quality to consumers.
type Constant struct{}

func (Constant) Name() string { return "constant" }

func (Constant) Available() bool { return true }

func (Constant) Extract(in Input) (*model.BeatTrack, error) {
	duration := in.duration()
	if duration <= 0 {
		return nil, fmt.Errorf("%w: no waveform and no duration hint", ErrBackendUnavailable)
	}

	interval := 60.0 / constants.DefaultTempo
	beatTimes := util.Arange(0, duration, interval)

	intervals := []float64{interval}
	if len(beatTimes) > 1 {
		intervals = make([]float64, len(beatTimes)-1)
		for i := range intervals {
			intervals[i] = interval
		}
	}

	fmt.Printf("Warning: using constant %v BPM rhythm fallback\n", constants.DefaultTempo)
	return &model.BeatTrack{
		Tempo:          constants.DefaultTempo,
		BeatTimes:      beatTimes,
		Confidence:     0.5,
		TempoEstimates: []float64{constants.DefaultTempo},
		BeatIntervals:  intervals,
	}, nil
}
