// synth_envelope.go - Per-voice ADSR state machine

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

// EnvelopeParams holds tick counts and per-tick increments derived once from
// user-configured millisecond durations. Immutable after construction; the
// engine swaps whole parameter sets atomically on reconfiguration.
type EnvelopeParams struct {
	attackTicks  int
	decayTicks   int
	releaseTicks int

	attackInc    float32 // level gained per attack tick
	decayDec     float32 // level lost per decay tick
	sustainLevel float32
}

// NewEnvelopeParams converts millisecond stage durations to tick counts.
// Zero or negative durations (corrupted persisted settings) are clamped to
// MIN_ENV_MS before conversion so no increment divides by zero.
func NewEnvelopeParams(attackMs, decayMs, releaseMs int, sustain float32) *EnvelopeParams {
	attackMs = max(attackMs, MIN_ENV_MS)
	decayMs = max(decayMs, MIN_ENV_MS)
	releaseMs = max(releaseMs, MIN_ENV_MS)
	if sustain < 0 {
		sustain = 0
	} else if sustain > 1 {
		sustain = 1
	}

	p := &EnvelopeParams{
		attackTicks:  max(attackMs*MS_TO_TICKS, 1),
		decayTicks:   max(decayMs*MS_TO_TICKS, 1),
		releaseTicks: max(releaseMs*MS_TO_TICKS, 1),
		sustainLevel: sustain,
	}
	p.attackInc = 1.0 / float32(p.attackTicks)
	p.decayDec = (1.0 - sustain) / float32(p.decayTicks)
	return p
}

// Envelope is the audio-context half of a voice's amplitude state. Only the
// audio tick mutates it; the control context sees stage and level through
// the owning voice's atomic status mirrors.
type Envelope struct {
	stage int
	level float32

	ticksLeft  int
	releaseDec float32 // recomputed at release time from the current level
}

// TriggerAttack starts (or restarts) the attack ramp. The current level is
// kept as the starting point, so retriggering a stolen, still-sounding
// voice stays continuous instead of snapping to zero.
func (e *Envelope) TriggerAttack() {
	e.stage = ENV_ATTACK
}

// TriggerRelease ramps from the CURRENT level to zero over releaseTicks,
// regardless of which stage the voice was in. Computing the decrement here
// rather than at configuration time is what keeps an early release (mid
// attack or mid decay) free of a discontinuity at the transition sample.
func (e *Envelope) TriggerRelease(p *EnvelopeParams) {
	if e.stage == ENV_IDLE {
		return
	}
	if e.level <= 0 {
		e.level = 0
		e.stage = ENV_IDLE
		return
	}
	e.stage = ENV_RELEASE
	e.ticksLeft = p.releaseTicks
	e.releaseDec = e.level / float32(p.releaseTicks)
}

// Reset forces the envelope to Idle immediately. Global panic path.
func (e *Envelope) Reset() {
	e.stage = ENV_IDLE
	e.level = 0
	e.ticksLeft = 0
	e.releaseDec = 0
}

// Advance moves the envelope one tick and returns the new level.
func (e *Envelope) Advance(p *EnvelopeParams) float32 {
	switch e.stage {
	case ENV_ATTACK:
		e.level += p.attackInc
		if e.level >= 1.0 {
			e.level = 1.0
			e.stage = ENV_DECAY
			e.ticksLeft = p.decayTicks
		}

	case ENV_DECAY:
		e.level -= p.decayDec
		e.ticksLeft--
		if e.ticksLeft <= 0 || e.level <= p.sustainLevel {
			e.level = p.sustainLevel
			e.stage = ENV_SUSTAIN
			if e.level <= 0 {
				e.stage = ENV_IDLE
			}
		}

	case ENV_SUSTAIN:
		// Holds until a StartRelease or Reset command arrives.

	case ENV_RELEASE:
		e.level -= e.releaseDec
		e.ticksLeft--
		if e.ticksLeft <= 0 || e.level <= 0 {
			e.level = 0
			e.stage = ENV_IDLE
		}
	}
	return e.level
}

// Active reports whether the envelope is contributing output.
func (e *Envelope) Active() bool {
	return e.stage != ENV_IDLE
}
