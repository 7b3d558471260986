// synth_oscillator.go - Phase-accumulator oscillator and waveform generation

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

// Oscillator is a fixed-width phase accumulator. The accumulator wraps
// modulo 2^32 by construction; the increment is recomputed only when the
// control context posts a frequency (allocation or pitch bend), never in
// the middle of a cycle.
type Oscillator struct {
	phase uint32
	inc   uint32

	freq float32 // Hz, kept for the hybrid band blend

	// Square duty state. dutyBase is the comparator threshold in
	// accumulator units; a slow secondary accumulator wobbles it.
	dutyBase  uint32
	dutyDepth uint32
	lfoPhase  uint32
	lfoInc    uint32
}

const (
	dutyDefault = 1 << 31 // 50%
	lfoRateHz   = 3.0     // duty modulation rate
)

// phaseIncrement converts a frequency in Hz to accumulator units per tick.
func phaseIncrement(freq float32, sampleRate int) uint32 {
	if freq <= 0 {
		return 0
	}
	if freq > MAX_FREQ {
		freq = MAX_FREQ
	}
	return uint32(float64(freq) * (1 << 32) / float64(sampleRate))
}

// SetFrequency retunes the oscillator without resetting phase, so a pitch
// bend or a mono legato change never clicks.
func (o *Oscillator) SetFrequency(freq float32, sampleRate int) {
	o.freq = freq
	o.inc = phaseIncrement(freq, sampleRate)
}

// Retrigger resets phase for a fresh note start.
func (o *Oscillator) Retrigger() {
	o.phase = 0
	o.lfoPhase = 0
}

// SetDuty configures the square comparator threshold and modulation depth,
// both as fractions of the cycle.
func (o *Oscillator) SetDuty(duty, depth float32, sampleRate int) {
	if duty < 0 {
		duty = 0
	} else if duty > 1 {
		duty = 1
	}
	if depth < 0 {
		depth = 0
	} else if depth > 0.5 {
		depth = 0.5
	}
	o.dutyBase = uint32(float64(duty) * (1 << 32))
	o.dutyDepth = uint32(float64(depth) * (1 << 32))
	o.lfoInc = phaseIncrement(lfoRateHz, sampleRate)
}

// Sample advances the accumulator one tick and produces a sample in [-1, 1]
// for the selected waveform. O(1), no allocation, no calls into math.
func (o *Oscillator) Sample(wave int) float32 {
	p := o.phase
	o.phase += o.inc

	switch wave {
	case WAVE_SINE:
		return sineTable[p>>waveTableShift]
	case WAVE_STRINGS:
		return stringsTable[p>>waveTableShift]
	case WAVE_CLARINET:
		return clarinetTable[p>>waveTableShift]
	case WAVE_SAW:
		return sawFromPhase(p)
	case WAVE_TRIANGLE:
		return triangleFromPhase(p)
	case WAVE_SQUARE:
		return o.squareFromPhase(p)
	case WAVE_HYBRID:
		return o.hybridFromPhase(p)
	}
	return 0
}

// sawFromPhase maps the accumulator linearly onto [-1, 1).
func sawFromPhase(p uint32) float32 {
	return float32(float64(p)/(1<<31)) - 1.0
}

// triangleFromPhase folds the accumulator into a symmetric ramp.
func triangleFromPhase(p uint32) float32 {
	// First half rises -1 -> 1, second half falls back.
	if p < 1<<31 {
		return float32(float64(p)/(1<<30)) - 1.0
	}
	return 3.0 - float32(float64(p)/(1<<30))
}

func (o *Oscillator) squareFromPhase(p uint32) float32 {
	threshold := o.dutyBase
	if threshold == 0 {
		threshold = dutyDefault
	}
	if o.dutyDepth != 0 {
		o.lfoPhase += o.lfoInc
		// Triangle LFO on the comparator threshold.
		wobble := triangleFromPhase(o.lfoPhase)
		threshold += uint32(int32(wobble * float32(o.dutyDepth)))
	}
	if p < threshold {
		return 1.0
	}
	return -1.0
}

// Hybrid band edges in Hz. Below the low edge the timbre is pure square;
// between the edges it crossfades square -> saw -> triangle; above the high
// edge it is pure triangle, which keeps the top octaves from fizzing.
const (
	hybridLowHz  = 110.0
	hybridMidHz  = 440.0
	hybridHighHz = 1760.0
)

func (o *Oscillator) hybridFromPhase(p uint32) float32 {
	f := o.freq
	switch {
	case f <= hybridLowHz:
		return o.squareFromPhase(p)
	case f < hybridMidHz:
		t := (f - hybridLowHz) / (hybridMidHz - hybridLowHz)
		return (1-t)*o.squareFromPhase(p) + t*sawFromPhase(p)
	case f < hybridHighHz:
		t := (f - hybridMidHz) / (hybridHighHz - hybridMidHz)
		return (1-t)*sawFromPhase(p) + t*triangleFromPhase(p)
	default:
		return triangleFromPhase(p)
	}
}
