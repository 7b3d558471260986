// synth_engine.go - Fixed-rate synthesis tick: drain, envelope, mix, output

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

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// TickFrame is the output of one synthesis tick: the same mixed signal
// referenced two ways. Fixed is biased to the midpoint of the configured
// resolution for a DC-isolated output; Adaptive is biased to a tracked
// average magnitude so a directly coupled transducer sees no idle offset.
type TickFrame struct {
	Fixed    uint16
	Adaptive uint16
	Mixed    float32 // normalized [-1, 1], pre-quantization
}

func packFrame(f TickFrame) uint64 {
	return uint64(math.Float32bits(f.Mixed))<<32 | uint64(f.Fixed)<<16 | uint64(f.Adaptive)
}

func unpackFrame(raw uint64) TickFrame {
	return TickFrame{
		Fixed:    uint16(raw >> 16),
		Adaptive: uint16(raw),
		Mixed:    math.Float32frombits(uint32(raw >> 32)),
	}
}

// SynthEngine runs the hard-real-time half of the synthesizer. Tick is
// invoked at the fixed sample rate by the clock goroutine (the dedicated
// stand-in for a hardware timer interrupt) and must never block, allocate,
// or take a lock. All configuration it reads is published through atomics
// by the control context.
type SynthEngine struct {
	sampleRate int
	pool       *VoicePool
	cmds       *CommandBank
	ring       *FrameRing

	// Control-published configuration.
	envParams  atomic.Pointer[EnvelopeParams]
	waveform   atomic.Uint32
	resolution atomic.Uint32 // output bit depth: RES_8BIT or RES_12BIT
	duty       atomic.Uint32 // float32 bits, square comparator fraction
	dutyDepth  atomic.Uint32 // float32 bits, duty modulation depth

	// Audio-context private mix state.
	mixLevel float32 // smoothed poly normalization, [0, 1]
	avgMag   float32 // recent average |mixed|, adaptive reference

	// Clock goroutine lifecycle. Control-side only, so a plain mutex is
	// fine; the running flag and both channels change together under it.
	clockMu   sync.Mutex
	clockOn   bool
	clockStop chan struct{}
	clockDone chan struct{}

	// Optional, non-gating instrumentation: worst observed tick duration.
	statsEnabled  atomic.Bool
	tickHighWater atomic.Int64 // nanoseconds
}

func NewSynthEngine(sampleRate int, pool *VoicePool, cmds *CommandBank) *SynthEngine {
	e := &SynthEngine{
		sampleRate: sampleRate,
		pool:       pool,
		cmds:       cmds,
		ring:       NewFrameRing(sampleRate / 10), // ~100ms of frames
		mixLevel:   1.0,
	}
	e.envParams.Store(NewEnvelopeParams(10, 100, 200, 0.7))
	e.waveform.Store(WAVE_HYBRID)
	e.resolution.Store(RES_12BIT)
	e.duty.Store(math.Float32bits(0.5))
	return e
}

// SetADSR publishes a new envelope parameter set. Voices mid-flight pick it
// up on their next tick.
func (e *SynthEngine) SetADSR(attackMs, decayMs, releaseMs int, sustain float32) {
	e.envParams.Store(NewEnvelopeParams(attackMs, decayMs, releaseMs, sustain))
}

func (e *SynthEngine) SetWaveform(wave int) {
	if wave < 0 || wave >= WAVE_COUNT {
		return
	}
	e.waveform.Store(uint32(wave))
}

func (e *SynthEngine) Waveform() int {
	return int(e.waveform.Load())
}

func (e *SynthEngine) SetResolution(bits int) {
	if bits != RES_8BIT && bits != RES_12BIT {
		return
	}
	e.resolution.Store(uint32(bits))
}

func (e *SynthEngine) Resolution() int {
	return int(e.resolution.Load())
}

func (e *SynthEngine) SetDuty(duty, depth float32) {
	e.duty.Store(math.Float32bits(duty))
	e.dutyDepth.Store(math.Float32bits(depth))
}

// EnableTickStats turns on the tick-duration high-water mark. Off by
// default: the timestamp calls cost more than anything else in the tick.
func (e *SynthEngine) EnableTickStats(on bool) {
	e.statsEnabled.Store(on)
}

// TickHighWater reports the worst tick duration observed since enabling.
func (e *SynthEngine) TickHighWater() time.Duration {
	return time.Duration(e.tickHighWater.Load())
}

func (e *SynthEngine) Ring() *FrameRing {
	return e.ring
}

// applyCommand consumes one control request on the audio context.
func (e *SynthEngine) applyCommand(v *Voice, cmd Command, params *EnvelopeParams) {
	switch cmd.Op {
	case cmdAttack:
		v.osc.SetFrequency(cmd.Freq, e.sampleRate)
		v.osc.SetDuty(
			math.Float32frombits(e.duty.Load()),
			math.Float32frombits(e.dutyDepth.Load()),
			e.sampleRate,
		)
		if !v.env.Active() {
			v.osc.Retrigger()
		}
		v.amp = float32(cmd.Velocity) / 127.0
		v.env.TriggerAttack()
	case cmdRelease:
		v.env.TriggerRelease(params)
	case cmdReset:
		v.env.Reset()
	case cmdPitch:
		v.osc.SetFrequency(cmd.Freq, e.sampleRate)
	}
}

// Tick runs one synthesis step: drain at most one command per voice,
// advance every active envelope, generate and mix one sample per active
// voice, smooth the poly normalization factor, and derive the two output
// references. O(1) per voice, no allocation, no locks, no recursion.
func (e *SynthEngine) Tick() TickFrame {
	var start time.Time
	stats := e.statsEnabled.Load()
	if stats {
		start = time.Now()
	}

	params := e.envParams.Load()
	wave := int(e.waveform.Load())
	gain := waveGain[wave]

	var sum float32
	active := 0
	for i := 0; i < NUM_VOICES; i++ {
		v := e.pool.Voice(i)
		if cmd, raw, ok := e.cmds.Peek(i); ok {
			e.applyCommand(v, cmd, params)
			// Publish before clearing the slot: a reap that sees the
			// slot empty must also see the post-command stage.
			v.publishStatus()
			e.cmds.Commit(i, raw)
		}
		if !v.env.Active() {
			v.publishStatus()
			continue
		}
		level := v.env.Advance(params)
		sample := v.osc.Sample(wave)
		sum += sample * level * v.amp * gain
		if v.env.Active() {
			active++
		}
		v.publishStatus()
	}

	// Poly normalization: move the smoothed attenuation toward the target
	// for the current active-voice count, at most MIX_SLEW per tick.
	target := mixTargets[active]
	switch {
	case e.mixLevel < target-MIX_SLEW:
		e.mixLevel += MIX_SLEW
	case e.mixLevel > target+MIX_SLEW:
		e.mixLevel -= MIX_SLEW
	default:
		e.mixLevel = target
	}

	mixed := sum * e.mixLevel
	if mixed > 1.0 {
		mixed = 1.0
	} else if mixed < -1.0 {
		mixed = -1.0
	}

	// Adaptive reference tracks the recent average signal magnitude, so
	// the directly coupled output decays to true zero when the engine
	// falls silent instead of parking at the midpoint bias.
	mag := mixed
	if mag < 0 {
		mag = -mag
	}
	e.avgMag += (mag - e.avgMag) * ADAPT_COEF

	bitDepth := e.resolution.Load()
	maxCode := float32(uint32(1)<<bitDepth - 1)
	mid := maxCode / 2

	fixed := mid + mixed*mid
	adaptive := (mixed + e.avgMag) * mid
	frame := TickFrame{
		Fixed:    quantize(fixed, maxCode),
		Adaptive: quantize(adaptive, maxCode),
		Mixed:    mixed,
	}

	if stats {
		d := time.Since(start).Nanoseconds()
		if d > e.tickHighWater.Load() {
			e.tickHighWater.Store(d)
		}
	}
	return frame
}

func quantize(v, maxCode float32) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= maxCode {
		return uint16(maxCode)
	}
	return uint16(v)
}

// StartClock launches the audio clock goroutine: a fixed-period timer that
// produces however many ticks have elapsed, in bounded batches, into the
// frame ring. This is the non-microcontroller mapping of the hardware
// timer interrupt; the per-tick contract is unchanged.
func (e *SynthEngine) StartClock() {
	e.clockMu.Lock()
	defer e.clockMu.Unlock()
	if e.clockOn {
		return
	}
	e.clockOn = true
	e.clockStop = make(chan struct{})
	e.clockDone = make(chan struct{})
	stop, done := e.clockStop, e.clockDone

	go func() {
		defer close(done)

		const period = 2 * time.Millisecond
		maxBatch := e.sampleRate / 50 // never more than 20ms of work per wake

		ticker := time.NewTicker(period)
		defer ticker.Stop()

		last := time.Now()
		var carry float64
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				carry += now.Sub(last).Seconds() * float64(e.sampleRate)
				last = now
				n := int(carry)
				carry -= float64(n)
				if n > maxBatch {
					n = maxBatch
				}
				for i := 0; i < n; i++ {
					// A full ring drops the frame; the clock must
					// not stall waiting for the consumer.
					e.ring.Push(packFrame(e.Tick()))
				}
			}
		}
	}()
}

// StopClock halts the clock goroutine and waits for it to drain. The wait
// happens under the lock so a concurrent StartClock cannot spawn a second
// clock while the old one is still winding down; the clock goroutine never
// takes the lock, so this cannot deadlock.
func (e *SynthEngine) StopClock() {
	e.clockMu.Lock()
	defer e.clockMu.Unlock()
	if !e.clockOn {
		return
	}
	e.clockOn = false
	close(e.clockStop)
	<-e.clockDone
}
