// synth_voice.go - Voice arena and allocation with generation-ordered stealing

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
	"sync/atomic"
)

// Voice is one slot in the fixed arena. Created at boot, never destroyed,
// only recycled. The struct is split by owner:
//
//   - osc/env/amp are audio-context state, touched every tick;
//   - stage/level are status mirrors written only by the audio context and
//     read by the control context as a snapshot that may lag one tick;
//   - generation/noteID/busy are control-context bookkeeping the audio
//     context never reads.
type Voice struct {
	index int

	// Audio context.
	osc Oscillator
	env Envelope
	amp float32 // velocity scale, set when an attack command is consumed

	// Status mirrors (audio writes, control reads).
	stage atomic.Uint32
	level atomic.Uint32 // float32 bits

	// Control context.
	generation uint64
	noteID     uint32
	busy       bool
}

// Stage returns the control-side view of the envelope stage.
func (v *Voice) Stage() int {
	return int(v.stage.Load())
}

// Level returns the control-side view of the envelope level.
func (v *Voice) Level() float32 {
	return math.Float32frombits(v.level.Load())
}

func (v *Voice) publishStatus() {
	v.stage.Store(uint32(v.env.stage))
	v.level.Store(math.Float32bits(v.env.level))
}

// VoicePool owns the arena and the allocation policy. All methods run on
// the control context, serialized by the router's lock; the audio context
// reaches the same voices only through the command bank and the per-tick
// engine loop.
type VoicePool struct {
	voices [NUM_VOICES]Voice
	cmds   *CommandBank

	nextGeneration uint64
}

func NewVoicePool(cmds *CommandBank) *VoicePool {
	p := &VoicePool{cmds: cmds}
	for i := range p.voices {
		p.voices[i].index = i
	}
	return p
}

// Voice exposes a slot by index. Used by the engine tick and by tests.
func (p *VoicePool) Voice(i int) *Voice {
	return &p.voices[i]
}

// Allocate picks a voice for a new note and posts its StartAttack. It never
// fails: if no voice is Idle, the busy voice with the strictly smallest
// generation (oldest allocation) is stolen, ties broken by lowest index.
// Returns the chosen index plus the displaced note, if any, so the caller
// can retire that note's MIDI channel.
func (p *VoicePool) Allocate(noteID uint32, freq float32, velocity uint8) (voice int, stolenNote uint32, stolen bool) {
	chosen := -1
	for i := range p.voices {
		if !p.voices[i].busy && p.voices[i].Stage() == ENV_IDLE {
			chosen = i
			break
		}
	}
	if chosen < 0 {
		oldest := uint64(math.MaxUint64)
		for i := range p.voices {
			if p.voices[i].generation < oldest {
				oldest = p.voices[i].generation
				chosen = i
			}
		}
		stolen = true
		stolenNote = p.voices[chosen].noteID
	}

	v := &p.voices[chosen]
	p.nextGeneration++
	v.generation = p.nextGeneration
	v.noteID = noteID
	v.busy = true

	p.cmds.Post(chosen, Command{Op: cmdAttack, Velocity: velocity, Freq: freq})
	return chosen, stolenNote, stolen
}

// AllocateAt claims a specific voice, regardless of its state. Mono and
// arpeggio modes pin their single logical voice with this; the attack
// command ramps from the voice's current level, so reusing a sounding
// voice stays continuous.
func (p *VoicePool) AllocateAt(voice int, noteID uint32, freq float32, velocity uint8) {
	v := &p.voices[voice]
	p.nextGeneration++
	v.generation = p.nextGeneration
	v.noteID = noteID
	v.busy = true
	p.cmds.Post(voice, Command{Op: cmdAttack, Velocity: velocity, Freq: freq})
}

// Retrigger restarts the attack of an already owned voice (same or new
// note id) without going through the allocation scan.
func (p *VoicePool) Retrigger(voice int, noteID uint32, freq float32, velocity uint8) {
	p.AllocateAt(voice, noteID, freq, velocity)
}

// Retarget moves a voice to a new note and pitch without touching its
// envelope: the mono-mode legato path.
func (p *VoicePool) Retarget(voice int, noteID uint32, freq float32) {
	v := &p.voices[voice]
	v.noteID = noteID
	v.busy = true
	p.cmds.Post(voice, Command{Op: cmdPitch, Freq: freq})
}

// Release posts StartRelease to every voice owned by noteID. A no-op if the
// note is no longer sounding, e.g. it was already stolen.
func (p *VoicePool) Release(noteID uint32) {
	for i := range p.voices {
		v := &p.voices[i]
		if v.busy && v.noteID == noteID {
			p.cmds.Post(i, Command{Op: cmdRelease})
		}
	}
}

// Bend retunes the voices owned by noteID without touching their envelopes.
func (p *VoicePool) Bend(noteID uint32, freq float32) {
	for i := range p.voices {
		v := &p.voices[i]
		if v.busy && v.noteID == noteID {
			p.cmds.Post(i, Command{Op: cmdPitch, Freq: freq})
		}
	}
}

// ResetAll posts Reset to every voice and drops all control-side ownership.
// Panic-stop path: the audio context silences each voice the moment it
// drains the command.
func (p *VoicePool) ResetAll() {
	for i := range p.voices {
		p.cmds.Post(i, Command{Op: cmdReset})
		p.voices[i].busy = false
		p.voices[i].noteID = 0
	}
}

// Reap clears the busy flag of voices whose envelope has reached Idle and
// reports their indices. The status read may lag the audio context by one
// tick, which only delays reuse, never corrupts it.
//
// The command slot must be checked before the stage mirror: the audio
// context publishes the post-command stage before it clears the slot, so
// an empty slot guarantees the stage read that follows is no older than
// the last consumed command. Reading the stage first could pass a stale
// Idle for a voice whose attack was consumed in between, retiring a note
// that is just starting to sound.
func (p *VoicePool) Reap(idle func(voice int, noteID uint32)) {
	for i := range p.voices {
		v := &p.voices[i]
		if v.busy && !p.cmds.Pending(i) && v.Stage() == ENV_IDLE {
			v.busy = false
			if idle != nil {
				idle(i, v.noteID)
			}
			v.noteID = 0
		}
	}
}

// ActiveCount counts voices not in Idle, from the control-side snapshot.
func (p *VoicePool) ActiveCount() int {
	n := 0
	for i := range p.voices {
		if p.voices[i].Stage() != ENV_IDLE {
			n++
		}
	}
	return n
}
