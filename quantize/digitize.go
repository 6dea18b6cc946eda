package quantize

import (
	"errors"
	"fmt"
	"sort"
)

// ErrShapeMismatch means the parallel onset/offset arrays disagree in
// length, which indicates a malformed note sequence on the caller side.
var ErrShapeMismatch = errors.New("onset/offset arrays disagree in length")

// Digitize assigns each onset and offset time to the index of its nearest
// grid point. Bin edges are the midpoints between consecutive grid points,
// so the search is a monotonic lookup over the midpoint sequence.
//
// A note whose onset and offset land in the same bin gets its off index
// bumped by one, so every note keeps at least one step of duration. The
// result is intentionally not clipped to the grid bounds: against the exact
// grid of beats*steps-1 points the largest bumped off index is beats*steps-1,
// which the extended lookup grid (beats*steps+1 points) always absorbs.
func Digitize(ons, offs, grid []float64) ([]int, []int, error) {
	if len(ons) != len(offs) {
		return nil, nil, fmt.Errorf("%w: %v onsets vs %v offsets", ErrShapeMismatch, len(ons), len(offs))
	}

	mids := make([]float64, 0, len(grid))
	for i := 0; i+1 < len(grid); i++ {
		mids = append(mids, (grid[i]+grid[i+1])/2)
	}

	nearest := func(t float64) int {
		// first midpoint strictly greater than t
		return sort.Search(len(mids), func(i int) bool { return mids[i] > t })
	}

	onIdx := make([]int, len(ons))
	offIdx := make([]int, len(offs))
	for i := range ons {
		onIdx[i] = nearest(ons[i])
		offIdx[i] = nearest(offs[i])
		if onIdx[i] == offIdx[i] {
			offIdx[i]++
		}
	}
	return onIdx, offIdx, nil
}
