package grid

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/interp"

	"github.com/mirtools/beatquant/util"
)

// ErrDegenerateGrid means there were not enough beats to span a grid.
var ErrDegenerateGrid = errors.New("degenerate beat grid")

// Interpolator densifies sparse beat times into a sub-beat grid. Beat times
// are treated as samples of a time function over integer beat index.
//
// With extend=false the grid has beats*stepsPerBeat-1 points over beat
// indices [0, beats-1]; with extend=true it has beats*stepsPerBeat+1 points
// over [0, beats], one whole beat past the last observed one.
type Interpolator interface {
	Interpolate(beatTimes []float64, stepsPerBeat int, extend bool) ([]float64, error)
}

// Default returns the interpolator quantization uses unless the caller
// injects another one.
func Default() Interpolator {
	return ExtrapolatingInterpolator{}
}

func checkArgs(beatTimes []float64, stepsPerBeat int) error {
	if len(beatTimes) < 2 {
		return fmt.Errorf("%w: got %v beat times, need at least 2", ErrDegenerateGrid, len(beatTimes))
	}
	if stepsPerBeat < 1 {
		return fmt.Errorf("steps per beat must be >= 1, got %v", stepsPerBeat)
	}
	return nil
}

func samplePoints(numBeats, stepsPerBeat int, extend bool) []float64 {
	if extend {
		return util.Linspace(0, float64(numBeats), numBeats*stepsPerBeat+1)
	}
	return util.Linspace(0, float64(numBeats-1), numBeats*stepsPerBeat-1)
}

// ExtrapolatingInterpolator fits a piecewise-linear function through the
// beat times and extends the end segments linearly outside the observed
// range, so the extended grid keeps a real timestamp one beat past the last
// tracked beat. gonum's predictor holds boundary values constant outside the
// fitted range, so the extension is applied around it.
type ExtrapolatingInterpolator struct{}

func (ExtrapolatingInterpolator) Interpolate(beatTimes []float64, stepsPerBeat int, extend bool) ([]float64, error) {
	if err := checkArgs(beatTimes, stepsPerBeat); err != nil {
		return nil, err
	}

	n := len(beatTimes)
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, beatTimes); err != nil {
		return nil, fmt.Errorf("fitting beat times: %w", err)
	}

	headSlope := beatTimes[1] - beatTimes[0]
	tailSlope := beatTimes[n-1] - beatTimes[n-2]
	last := float64(n - 1)

	points := samplePoints(n, stepsPerBeat, extend)
	res := make([]float64, len(points))
	for i, t := range points {
		switch {
		case t < 0:
			res[i] = beatTimes[0] + t*headSlope
		case t > last:
			res[i] = beatTimes[n-1] + (t-last)*tailSlope
		default:
			res[i] = pl.Predict(t)
		}
	}
	return res, nil
}

// ClampedInterpolator is the library-free fallback tier: elementwise linear
// interpolation that holds boundary values constant outside the observed
// range. Exact on support, no extrapolation tail -- the boundary behavior is
// the observable difference from ExtrapolatingInterpolator.
type ClampedInterpolator struct{}

func (ClampedInterpolator) Interpolate(beatTimes []float64, stepsPerBeat int, extend bool) ([]float64, error) {
	if err := checkArgs(beatTimes, stepsPerBeat); err != nil {
		return nil, err
	}

	n := len(beatTimes)
	points := samplePoints(n, stepsPerBeat, extend)
	res := make([]float64, len(points))
	for i, t := range points {
		switch {
		case t <= 0:
			res[i] = beatTimes[0]
		case t >= float64(n-1):
			res[i] = beatTimes[n-1]
		default:
			k := int(t)
			frac := t - float64(k)
			res[i] = beatTimes[k] + frac*(beatTimes[k+1]-beatTimes[k])
		}
	}
	return res, nil
}
