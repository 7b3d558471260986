// synth_constants.go - Core constants for the HexBoard synthesis engine

/*
██╗  ██╗███████╗██╗  ██╗██████╗  ██████╗  █████╗ ██████╗ ██████╗
██║  ██║██╔════╝╚██╗██╔╝██╔══██╗██╔═══██╗██╔══██╗██╔══██╗██╔══██╗
███████║█████╗   ╚███╔╝ ██████╔╝██║   ██║███████║██████╔╝██║  ██║
██╔══██║██╔══╝   ██╔██╗ ██╔══██╗██║   ██║██╔══██║██╔══██╗██║  ██║
██║  ██║███████╗██╔╝ ██╗██████╔╝╚██████╔╝██║  ██║██║  ██║██████╔╝
╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝

(c) 2024 - 2026 Nick Vuci
https://github.com/NickVuci/HexBoard
License: GPLv3 or later
*/

package main

const (
	// SAMPLE_RATE matches the hardware timer rate of the controller's
	// audio interrupt. Every envelope tick count is derived from it.
	SAMPLE_RATE = 41000

	// NUM_VOICES is the fixed size of the voice pool. Allocation never
	// fails: a full pool steals the oldest voice instead.
	NUM_VOICES = 8
)

// Waveform selectors. The first group is computed from a wavetable indexed
// by the top bits of the phase accumulator; the second group is closed-form.
const (
	WAVE_SINE = iota
	WAVE_STRINGS
	WAVE_CLARINET
	WAVE_SAW
	WAVE_TRIANGLE
	WAVE_SQUARE
	WAVE_HYBRID
	WAVE_COUNT
)

// Envelope stages. A voice is reallocatable only from ENV_IDLE.
const (
	ENV_IDLE = iota
	ENV_ATTACK
	ENV_DECAY
	ENV_SUSTAIN
	ENV_RELEASE
)

// Output resolutions. The fixed-reference stream is biased to the midpoint
// of the selected range; the adaptive stream rides its own tracked bias.
const (
	RES_8BIT  = 8  // PWM output path
	RES_12BIT = 12 // DAC output path
)

const (
	MS_TO_TICKS = SAMPLE_RATE / 1000 // milliseconds to envelope ticks
	MIN_ENV_MS  = 1                  // clamp for corrupted stored durations
)

const (
	MAX_FREQ = 20000.0 // Hz, oscillator frequency ceiling
	MIN_FREQ = 1.0     // Hz, below this a voice is treated as silent
)

const (
	// MIX_SLEW bounds the per-tick movement of the poly normalization
	// factor so voice starts and stops never step the output level.
	MIX_SLEW = 0.002

	// ADAPT_COEF is the one-pole coefficient tracking the recent average
	// signal magnitude for the adaptive-reference output.
	ADAPT_COEF = 1.0 / 4096.0
)

// mixTargets maps active-voice count to the normalization target applied to
// the summed output. Roughly 1/sqrt(n), precomputed.
var mixTargets = [NUM_VOICES + 1]float32{
	1.00, 1.00, 0.71, 0.58, 0.50, 0.45, 0.41, 0.38, 0.35,
}

// waveGain is the fixed per-waveform loudness compensation factor applied
// before mixing. Square and saw carry far more energy than sine at equal
// amplitude.
var waveGain = [WAVE_COUNT]float32{
	WAVE_SINE:     1.00,
	WAVE_STRINGS:  0.90,
	WAVE_CLARINET: 0.95,
	WAVE_SAW:      0.60,
	WAVE_TRIANGLE: 0.90,
	WAVE_SQUARE:   0.50,
	WAVE_HYBRID:   0.60,
}
