package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinspace(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]float64{0, 0.5, 1, 1.5, 2}, Linspace(0, 2, 5))
	assert.Equal([]float64{3}, Linspace(3, 9, 1))
	assert.Nil(Linspace(0, 1, 0))

	res := Linspace(0.1, 7.3, 1000)
	assert.Len(res, 1000)
	assert.Equal(0.1, res[0])
	assert.Equal(7.3, res[999], "endpoint must be hit exactly")
}

func TestArange(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]float64{0, 0.5, 1, 1.5}, Arange(0, 2, 0.5))
	assert.Equal([]float64{0, 0.5, 1, 1.5}, Arange(0, 1.75, 0.5))
	assert.Nil(Arange(1, 1, 0.5))
}

func TestDiff(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]float64{1, 2, -0.5}, Diff([]float64{0, 1, 3, 2.5}))
	assert.Nil(Diff([]float64{4}))
	assert.Nil(Diff(nil))
}

func TestMean(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(2.0, Mean([]float64{1, 2, 3}))
	assert.Equal(0.0, Mean(nil))
}

func TestArgMax(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(2, ArgMax([]float64{1, 3, 5, 2}))
	assert.Equal(0, ArgMax([]float64{7}))
	assert.Equal(0, ArgMax([]float64{4, 4, 4}), "ties keep the first index")
	assert.Equal(-1, ArgMax(nil))
}

func TestMinMax(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(2, Min(3, 2))
	assert.Equal(3.5, Max(3.5, 2.0))
	assert.Equal("a", Min("a", "b"))
}
