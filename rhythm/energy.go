package rhythm

import (
	"fmt"
	"math"

	"github.com/mirtools/beatquant/constants"
	"github.com/mirtools/beatquant/model"
	"github.com/mirtools/beatquant/util"
)

const (
	envelopeRate = 200 // Hz after downsampling

	// half-open octave around common tempi, so the metrical level is
	// unambiguous (120 stays in range, its 60/240 aliases fall out)
	energyMinBPM = 70.0
	energyMaxBPM = 180.0
)

// Energy is the general-purpose middle tier: a rectified amplitude envelope
// downsampled to 200 Hz, tempo by autocorrelation over the musical lag
// range, beats placed on the best-phase comb through the envelope. It has no
// native confidence signal, so it reports 1.0.
type Energy struct{}

func (Energy) Name() string { return "energy" }

func (Energy) Available() bool { return true }

func (Energy) Extract(in Input) (*model.BeatTrack, error) {
	if len(in.Samples) == 0 {
		return nil, fmt.Errorf("%w: no waveform to analyze", ErrBackendUnavailable)
	}

	env, rate := amplitudeEnvelope(in.Samples, constants.SampleRate)
	bpm := tempoByAutocorrelation(env, rate, energyMinBPM, energyMaxBPM)
	if bpm <= 0 {
		return nil, fmt.Errorf("%w: waveform too short for tempo autocorrelation", ErrBackendUnavailable)
	}

	beatTimes := combBeats(env, rate, bpm)

	intervals := []float64{60.0 / bpm}
	if len(beatTimes) > 1 {
		intervals = util.Diff(beatTimes)
	}
	return &model.BeatTrack{
		Tempo:          bpm,
		BeatTimes:      beatTimes,
		Confidence:     1.0,
		TempoEstimates: []float64{bpm},
		BeatIntervals:  intervals,
	}, nil
}

// amplitudeEnvelope rectifies the waveform and block-averages it down to
// roughly envelopeRate Hz. Returns the envelope and its actual rate.
func amplitudeEnvelope(samples []float64, sampleRate int) ([]float64, float64) {
	factor := sampleRate / envelopeRate
	if factor < 1 {
		factor = 1
	}
	env := make([]float64, 0, len(samples)/factor+1)
	for i := 0; i < len(samples); i += factor {
		var sum float64
		count := 0
		for j := i; j < i+factor && j < len(samples); j++ {
			sum += math.Abs(samples[j])
			count++
		}
		env = append(env, sum/float64(count))
	}
	return env, float64(sampleRate) / float64(factor)
}

// tempoByAutocorrelation picks the lag with the strongest self-similarity
// inside [minBPM, maxBPM]. Returns 0 when the envelope is too short to cover
// the slowest candidate lag.
func tempoByAutocorrelation(env []float64, rate, minBPM, maxBPM float64) float64 {
	minLag := int(rate * 60.0 / maxBPM)
	maxLag := int(rate * 60.0 / minBPM)
	if minLag < 1 || len(env) <= maxLag {
		return 0
	}

	bestLag, bestVal := 0, math.Inf(-1)
	for lag := minLag; lag <= maxLag; lag++ {
		var sum float64
		for i := 0; i+lag < len(env); i++ {
			sum += env[i] * env[i+lag]
		}
		val := sum / float64(len(env)-lag)
		if val > bestVal {
			bestVal = val
			bestLag = lag
		}
	}
	if bestLag == 0 || bestVal <= 0 {
		// silence autocorrelates to nothing
		return 0
	}
	return 60.0 * rate / float64(bestLag)
}

// combBeats lays an evenly spaced comb at the detected period through the
// envelope and keeps the phase that collects the most energy.
func combBeats(env []float64, rate, bpm float64) []float64 {
	period := 60.0 / bpm * rate

	bestPhase, bestScore := 0, math.Inf(-1)
	for phase := 0; phase < int(period); phase++ {
		var score float64
		for pos := float64(phase); pos < float64(len(env)); pos += period {
			score += env[int(pos)]
		}
		if score > bestScore {
			bestScore = score
			bestPhase = phase
		}
	}

	var beats []float64
	for pos := float64(bestPhase); pos < float64(len(env)); pos += period {
		beats = append(beats, pos/rate)
	}
	return beats
}
