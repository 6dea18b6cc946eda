package rhythm

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/mirtools/beatquant/constants"
	"github.com/mirtools/beatquant/model"
	"github.com/mirtools/beatquant/util"
)

const (
	frameSize = 2048
	hopSize   = 512

	multiMinBPM = 40.0
	multiMaxBPM = 220.0

	// transition tightness of the dynamic-programming beat tracker
	dpTightness = 100.0

	maxTempoCandidates = 5
)

// Multifeature is the high-accuracy tier: a windowed STFT drives three onset
// features (spectral flux, energy rise, high-frequency-content rise) that
// are fused into one envelope; tempo candidates come from envelope
// autocorrelation and beats from a dynamic-programming pass that trades
// envelope strength against tempo consistency.
type Multifeature struct{}

func (Multifeature) Name() string { return "multifeature" }

func (Multifeature) Available() bool { return true }

func (Multifeature) Extract(in Input) (*model.BeatTrack, error) {
	if len(in.Samples) < 2*frameSize {
		return nil, fmt.Errorf("%w: waveform too short for onset analysis", ErrBackendUnavailable)
	}

	env, frameRate := onsetEnvelope(in.Samples)

	candidates, strengths := tempoCandidates(env, frameRate)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no tempo candidate found", ErrBackendUnavailable)
	}
	bpm := candidates[0]

	beatFrames := trackBeats(env, frameRate, bpm)
	if len(beatFrames) < 2 {
		return nil, fmt.Errorf("%w: fewer than 2 beats tracked", ErrBackendUnavailable)
	}

	beatTimes := make([]float64, len(beatFrames))
	for i, f := range beatFrames {
		beatTimes[i] = float64(f) / frameRate
	}
	intervals := util.Diff(beatTimes)

	return &model.BeatTrack{
		Tempo:          bpm,
		BeatTimes:      beatTimes,
		Confidence:     beatConfidence(strengths[0], intervals),
		TempoEstimates: candidates,
		BeatIntervals:  intervals,
	}, nil
}

// onsetEnvelope computes the fused onset-strength envelope and its frame
// rate. Each feature is rectified (only rises count) and max-normalized
// before fusion so no single feature dominates.
func onsetEnvelope(samples []float64) ([]float64, float64) {
	win := window.Hann(frameSize)
	fft := fourier.NewFFT(frameSize)

	numFrames := (len(samples)-frameSize)/hopSize + 1
	flux := make([]float64, numFrames)
	energyRise := make([]float64, numFrames)
	hfcRise := make([]float64, numFrames)

	buf := make([]float64, frameSize)
	coeffs := make([]complex128, frameSize/2+1)
	prevMag := make([]float64, frameSize/2+1)
	var prevEnergy, prevHFC float64

	for f := 0; f < numFrames; f++ {
		off := f * hopSize
		for i := range buf {
			buf[i] = samples[off+i] * win[i]
		}
		coeffs = fft.Coefficients(coeffs, buf)

		var energy, hfc float64
		for i, c := range coeffs {
			mag := cmplx.Abs(c)
			if d := mag - prevMag[i]; d > 0 {
				flux[f] += d
			}
			prevMag[i] = mag
			energy += mag * mag
			hfc += float64(i) * mag * mag
		}
		if d := energy - prevEnergy; d > 0 {
			energyRise[f] = d
		}
		if d := hfc - prevHFC; d > 0 {
			hfcRise[f] = d
		}
		prevEnergy = energy
		prevHFC = hfc
	}

	maxNormalize(flux)
	maxNormalize(energyRise)
	maxNormalize(hfcRise)

	env := make([]float64, numFrames)
	for i := range env {
		env[i] = (flux[i] + energyRise[i] + hfcRise[i]) / 3
	}
	return env, float64(constants.SampleRate) / hopSize
}

func maxNormalize(xs []float64) {
	max := 0.0
	for _, v := range xs {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return
	}
	for i := range xs {
		xs[i] /= max
	}
}

// tempoCandidates autocorrelates the onset envelope over the musical lag
// range and returns the local-maximum lags as BPM values, strongest first,
// alongside their normalized autocorrelation strengths.
func tempoCandidates(env []float64, frameRate float64) ([]float64, []float64) {
	minLag := int(frameRate * 60.0 / multiMaxBPM)
	maxLag := int(frameRate * 60.0 / multiMinBPM)
	if minLag < 2 || len(env) <= maxLag+1 {
		return nil, nil
	}

	ac := make([]float64, maxLag-minLag+3)
	for lag := minLag - 1; lag <= maxLag+1; lag++ {
		var sum float64
		for i := 0; i+lag < len(env); i++ {
			sum += env[i] * env[i+lag]
		}
		ac[lag-minLag+1] = sum / float64(len(env)-lag)
	}

	var zero float64
	for i := 0; i < len(env); i++ {
		zero += env[i] * env[i]
	}
	zero /= float64(len(env))
	if zero == 0 {
		return nil, nil
	}

	type peak struct {
		lag      int
		val      float64
		weighted float64
	}
	var peaks []peak
	for lag := minLag; lag <= maxLag; lag++ {
		i := lag - minLag + 1
		if ac[i] > ac[i-1] && ac[i] >= ac[i+1] {
			bpm := 60.0 * frameRate / float64(lag)
			peaks = append(peaks, peak{lag, ac[i], ac[i] * tempoPrior(bpm)})
		}
	}
	// rank by prior-weighted strength so metrical aliases (60 vs 120 vs
	// 240) resolve toward the common tempo range
	sort.SliceStable(peaks, func(i, j int) bool { return peaks[i].weighted > peaks[j].weighted })
	if len(peaks) > maxTempoCandidates {
		peaks = peaks[:maxTempoCandidates]
	}

	candidates := make([]float64, len(peaks))
	strengths := make([]float64, len(peaks))
	for i, p := range peaks {
		candidates[i] = 60.0 * frameRate / float64(p.lag)
		strengths[i] = math.Min(p.val/zero, 1.0)
	}
	return candidates, strengths
}

// tempoPrior is a log-normal preference centered on 120 BPM with one octave
// of spread.
func tempoPrior(bpm float64) float64 {
	dev := math.Log2(bpm / 120.0)
	return math.Exp(-0.5 * dev * dev)
}

// trackBeats places beats by dynamic programming over the onset envelope
// (Ellis-style): each frame may extend a beat sequence whose previous beat
// lies between half and twice the tempo period back, paying a squared-log
// penalty for deviating from the period.
func trackBeats(env []float64, frameRate, bpm float64) []int {
	period := 60.0 / bpm * frameRate
	n := len(env)

	score := make([]float64, n)
	backlink := make([]int, n)
	for i := range backlink {
		backlink[i] = -1
	}

	for i := 0; i < n; i++ {
		score[i] = env[i]
		hi := i - int(period/2)
		if hi < 0 {
			continue
		}
		lo := i - int(2*period)
		if lo < 0 {
			lo = 0
		}
		best, bestJ := math.Inf(-1), -1
		for j := lo; j <= hi; j++ {
			dev := math.Log(float64(i-j) / period)
			if s := score[j] - dpTightness*dev*dev; s > best {
				best = s
				bestJ = j
			}
		}
		if bestJ >= 0 {
			score[i] += best
			backlink[i] = bestJ
		}
	}

	// start backtracking from the strongest frame within the final period
	tail := util.Max(0, n-int(period))
	last := tail + util.ArgMax(score[tail:])

	var beats []int
	for i := last; i >= 0; i = backlink[i] {
		beats = append(beats, i)
		if backlink[i] < 0 {
			break
		}
	}
	for l, r := 0, len(beats)-1; l < r; l, r = l+1, r-1 {
		beats[l], beats[r] = beats[r], beats[l]
	}
	return beats
}

// beatConfidence blends the tempo peak strength with the regularity of the
// tracked intervals, clamped into [0,1].
func beatConfidence(peakStrength float64, intervals []float64) float64 {
	mean := util.Mean(intervals)
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, v := range intervals {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(intervals))
	cv := math.Sqrt(variance) / mean

	conf := peakStrength * (1 - cv)
	if conf < 0 {
		return 0
	}
	if conf > 1 {
		return 1
	}
	return conf
}
