package util

import (
	"golang.org/x/exp/constraints"
)

// Linspace returns num evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, num int) []float64 {
	if num <= 0 {
		return nil
	}
	if num == 1 {
		return []float64{start}
	}
	res := make([]float64, num)
	step := (stop - start) / float64(num-1)
	for i := range res {
		res[i] = start + float64(i)*step
	}
	// avoid accumulating float error on the endpoint
	res[num-1] = stop
	return res
}

// Arange returns values from start up to (excluding) stop, spaced by step.
func Arange(start, stop, step float64) []float64 {
	var res []float64
	for i := 0; ; i++ {
		v := start + float64(i)*step
		if v >= stop {
			break
		}
		res = append(res, v)
	}
	return res
}

// Diff returns consecutive differences, length len(xs)-1.
func Diff(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	res := make([]float64, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		res[i-1] = xs[i] - xs[i-1]
	}
	return res
}

func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var total float64
	for _, v := range xs {
		total += v
	}
	return total / float64(len(xs))
}

// ArgMax returns the index of the largest value, -1 for an empty slice.
func ArgMax(xs []float64) int {
	if len(xs) == 0 {
		return -1
	}
	best := 0
	for i, v := range xs {
		if v > xs[best] {
			best = i
		}
	}
	return best
}

func Min[A constraints.Ordered](a, b A) A {
	if a < b {
		return a
	}
	return b
}

func Max[A constraints.Ordered](a, b A) A {
	if a > b {
		return a
	}
	return b
}
