package constants

// SampleRate is the only rate the engine accepts; callers resample upstream.
const SampleRate = 44100

// DefaultTempo is assumed by the constant-tempo fallback backend.
const DefaultTempo = 120.0

// SustainController is the damper-pedal controller number.
// SustainThreshold splits its values into pedal-down (>=) and pedal-up (<).
const (
	SustainController = 64
	SustainThreshold  = 64
)

// NumPitches is the MIDI pitch range, also the radix of the dedup sort keys.
const NumPitches = 128
