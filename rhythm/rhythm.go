package rhythm

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/mirtools/beatquant/constants"
	"github.com/mirtools/beatquant/model"
)

// ErrInputUnavailable means no backend could produce a beat track: the
// caller supplied neither a decodable waveform nor a duration hint.
var ErrInputUnavailable = errors.New("rhythm extraction needs a waveform or a duration hint")

// ErrBackendUnavailable is returned by a backend that cannot analyze the
// given input. It only ever triggers fall-through to the next tier and is
// never surfaced to callers.
var ErrBackendUnavailable = errors.New("rhythm backend unavailable")

// Input is the material rhythm extraction works on: mono samples at the
// engine sample rate, or just a duration hint for already-known material.
type Input struct {
	Samples      []float64
	DurationHint float64
}

func (in Input) duration() float64 {
	if len(in.Samples) > 0 {
		return float64(len(in.Samples)) / constants.SampleRate
	}
	return in.DurationHint
}

// Backend is one rhythm-extraction tier.
type Backend interface {
	Name() string
	// Available is the one-time capability probe; it must not depend on a
	// particular input.
	Available() bool
	Extract(in Input) (*model.BeatTrack, error)
}

// Chain holds backends in priority order and binds the active one on first
// use. The binding is a compare-and-set, not a lock, so concurrent first
// calls race harmlessly: every prober computes the same answer.
type Chain struct {
	backends []Backend
	active   atomic.Int32 // 1-based backend index, 0 while unselected
}

func NewChain(backends ...Backend) *Chain {
	return &Chain{backends: backends}
}

func (c *Chain) selected() int {
	if idx := c.active.Load(); idx != 0 {
		return int(idx) - 1
	}
	picked := len(c.backends)
	for i, b := range c.backends {
		if b.Available() {
			picked = i
			break
		}
	}
	c.active.CompareAndSwap(0, int32(picked)+1)
	return int(c.active.Load()) - 1
}

// Extract runs the active backend, falling through locally when a tier
// reports it cannot analyze this particular input. Exhausting every tier
// collapses into ErrInputUnavailable; all other errors propagate untouched.
func (c *Chain) Extract(in Input) (*model.BeatTrack, error) {
	for i := c.selected(); i < len(c.backends); i++ {
		b := c.backends[i]
		if !b.Available() {
			continue
		}
		bt, err := b.Extract(in)
		if errors.Is(err, ErrBackendUnavailable) {
			fmt.Printf("Warning: %v rhythm backend skipped: %v\n", b.Name(), err)
			continue
		}
		if err != nil {
			return nil, err
		}
		return bt, nil
	}
	return nil, ErrInputUnavailable
}

var defaultChain = NewChain(Multifeature{}, Energy{}, Constant{})

// ExtractRhythm analyzes the input with the best available backend.
func ExtractRhythm(in Input) (*model.BeatTrack, error) {
	return defaultChain.Extract(in)
}
