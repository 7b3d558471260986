// note_router.go - Routes note events to voices, channels, and the wire

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
	"log/slog"
	"sync"
)

// Polyphony modes.
const (
	MODE_POLY = iota
	MODE_MONO
	MODE_ARP
)

// trackedNote is the router's record of a sounding note: which voice it
// owns and which MIDI channel tags its wire traffic. The channel returns
// to the pool only when the voice reaches Idle, never before, so a channel
// is never simultaneously free in the pool and present here.
type trackedNote struct {
	voice    int
	channel  uint8 // 0 = no channel assigned
	shared   bool  // channel is the exhaustion fallback, not owned
	key      uint8
	freq     float32
	velocity uint8
	released bool
}

type heldNote struct {
	noteID   uint32
	freq     float32
	velocity uint8
}

// NoteEventRouter is the control-context front door. Input scanning and
// incoming MIDI call it with note events; it asks the voice pool and the
// channel allocator for resources and posts commands across to the audio
// context. A single mutex serializes the control side; the audio tick
// never touches it.
type NoteEventRouter struct {
	mu     sync.Mutex
	pool   *VoicePool
	chans  *ChannelAllocator
	engine *SynthEngine
	midi   *MidiOut
	log    *slog.Logger

	mode  int
	notes map[uint32]*trackedNote

	// Press-order state for mono and arpeggio modes.
	held   []heldNote
	arpPos int

	mpeLo, mpeHi uint8
}

func NewNoteEventRouter(pool *VoicePool, chans *ChannelAllocator, engine *SynthEngine, midi *MidiOut, log *slog.Logger) *NoteEventRouter {
	if log == nil {
		log = slog.Default()
	}
	return &NoteEventRouter{
		pool:   pool,
		chans:  chans,
		engine: engine,
		midi:   midi,
		log:    log,
		notes:  make(map[uint32]*trackedNote),
	}
}

// NoteOn handles a key press. The frequency arrives fully resolved from
// the tuning layer; the router neither knows nor cares what EDO it came
// from.
func (r *NoteEventRouter) NoteOn(noteID uint32, freq float32, velocity uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reapLocked()

	switch r.mode {
	case MODE_MONO:
		r.monoNoteOn(noteID, freq, velocity)
	case MODE_ARP:
		r.arpNoteOn(noteID, freq, velocity)
	default:
		r.polyNoteOn(noteID, freq, velocity)
	}
}

// NoteOff handles a key release. A no-op for notes no longer sounding,
// e.g. already stolen by a later allocation.
func (r *NoteEventRouter) NoteOff(noteID uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reapLocked()

	switch r.mode {
	case MODE_MONO:
		r.monoNoteOff(noteID)
	case MODE_ARP:
		r.arpNoteOff(noteID)
	default:
		r.polyNoteOff(noteID)
	}
}

// PitchBend retunes a sounding note, typically from the just-intonation
// ratio lookup. Silence stays silent: unknown notes are ignored.
func (r *NoteEventRouter) PitchBend(noteID uint32, freq float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tn, ok := r.notes[noteID]
	if !ok {
		return
	}
	r.pool.Bend(noteID, freq)
	r.midi.PitchBend(tn.channel, tn.key, freq)
	tn.freq = freq
	for i := range r.held {
		if r.held[i].noteID == noteID {
			r.held[i].freq = freq
		}
	}
}

// PanicStop silences everything immediately: Reset to every voice, Note
// Off for every tracked note, channel pool flushed back to its full range.
func (r *NoteEventRouter) PanicStop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panicLocked()
}

func (r *NoteEventRouter) panicLocked() {
	r.pool.ResetAll()
	for id, tn := range r.notes {
		r.midi.NoteOff(tn.channel, tn.key)
		delete(r.notes, id)
	}
	r.chans.Reset(r.mpeLo, r.mpeHi)
	r.held = r.held[:0]
	r.arpPos = 0
}

// SetMode switches polyphony mode. Anything sounding is cut first; a mode
// switch mid-chord has no sensible continuation.
func (r *NoteEventRouter) SetMode(mode int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mode != MODE_POLY && mode != MODE_MONO && mode != MODE_ARP {
		return
	}
	r.panicLocked()
	r.mode = mode
}

// SetMPERange reconfigures the channel zone. Active notes are cut: their
// channel assignments are meaningless under the new zone.
func (r *NoteEventRouter) SetMPERange(lowest, highest uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mpeLo, r.mpeHi = lowest, highest
	r.panicLocked()
}

// Reap releases the MIDI channels of voices that have finished their
// release ramp. Called periodically from the control loop; also run before
// every note event so channels recycle promptly under load.
func (r *NoteEventRouter) Reap() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reapLocked()
}

func (r *NoteEventRouter) reapLocked() {
	r.pool.Reap(func(voice int, noteID uint32) {
		tn, ok := r.notes[noteID]
		if !ok || tn.voice != voice {
			return
		}
		r.retireChannel(tn)
		delete(r.notes, noteID)
	})
}

// retireVoiceNotes drops any tracked note still pinned to a voice before
// that voice is reassigned outside the Allocate scan. Without this a mono
// note whose release tail was interrupted would leak its channel.
func (r *NoteEventRouter) retireVoiceNotes(voice int) {
	for id, tn := range r.notes {
		if tn.voice == voice {
			r.retireChannel(tn)
			delete(r.notes, id)
		}
	}
}

func (r *NoteEventRouter) retireChannel(tn *trackedNote) {
	if tn.channel != 0 && !tn.shared {
		r.chans.Release(tn.channel)
	}
}

// takeChannel claims an MPE channel for a new note. On exhaustion the
// policy here is to share the zone's lowest channel rather than drop the
// note: audible is better than silent, and the core stays consistent.
func (r *NoteEventRouter) takeChannel() (ch uint8, shared bool) {
	if !r.chans.Enabled() {
		return 0, false
	}
	ch, err := r.chans.Take()
	if err != nil {
		r.log.Debug("channel pool exhausted, sharing default channel",
			"channel", r.mpeLo)
		return r.mpeLo, true
	}
	return ch, false
}

// --- Polyphonic mode ---

func (r *NoteEventRouter) polyNoteOn(noteID uint32, freq float32, velocity uint8) {
	if tn, ok := r.notes[noteID]; ok {
		// Same key retriggered before its voice was reaped: reuse
		// everything in place.
		r.pool.Retrigger(tn.voice, noteID, freq, velocity)
		tn.freq = freq
		tn.velocity = velocity
		tn.released = false
		return
	}

	voice, stolenNote, stolen := r.pool.Allocate(noteID, freq, velocity)
	if stolen {
		if tn, ok := r.notes[stolenNote]; ok && tn.voice == voice {
			r.midi.NoteOff(tn.channel, tn.key)
			r.retireChannel(tn)
			delete(r.notes, stolenNote)
		}
	}

	ch, shared := r.takeChannel()
	key := r.midi.NoteOn(ch, freq, velocity)
	r.notes[noteID] = &trackedNote{
		voice:    voice,
		channel:  ch,
		shared:   shared,
		key:      key,
		freq:     freq,
		velocity: velocity,
	}
}

func (r *NoteEventRouter) polyNoteOff(noteID uint32) {
	tn, ok := r.notes[noteID]
	if !ok {
		return
	}
	r.pool.Release(noteID)
	r.midi.NoteOff(tn.channel, tn.key)
	tn.released = true
	// Channel stays claimed until the voice reaches Idle; reap frees it.
}

// --- Mono mode ---

// monoNoteOn: one logical voice. A new press replaces the current pitch;
// the envelope is only started fresh when nothing was sounding.
func (r *NoteEventRouter) monoNoteOn(noteID uint32, freq float32, velocity uint8) {
	r.removeHeld(noteID)
	r.held = append(r.held, heldNote{noteID, freq, velocity})

	if cur := r.currentMonoNote(); cur != 0 {
		r.monoRetarget(cur, noteID, freq, velocity, false)
		return
	}

	r.retireVoiceNotes(0)
	r.pool.AllocateAt(0, noteID, freq, velocity)
	ch, shared := r.takeChannel()
	key := r.midi.NoteOn(ch, freq, velocity)
	r.notes[noteID] = &trackedNote{
		voice:    0,
		channel:  ch,
		shared:   shared,
		key:      key,
		freq:     freq,
		velocity: velocity,
	}
}

// monoNoteOff: if another key is still held, resume its pitch without
// re-triggering the attack; otherwise begin the release ramp.
func (r *NoteEventRouter) monoNoteOff(noteID uint32) {
	r.removeHeld(noteID)

	if r.currentMonoNote() != noteID {
		return
	}
	if len(r.held) > 0 {
		prev := r.held[len(r.held)-1]
		r.monoRetarget(noteID, prev.noteID, prev.freq, prev.velocity, false)
		return
	}
	tn := r.notes[noteID]
	r.pool.Release(noteID)
	r.midi.NoteOff(tn.channel, tn.key)
	tn.released = true
}

// monoRetarget moves the mono voice to a new note id and pitch, keeping
// the envelope (and the MIDI channel) as they are. retrigger selects
// between a legato pitch change and a fresh attack.
func (r *NoteEventRouter) monoRetarget(fromID, toID uint32, freq float32, velocity uint8, retrigger bool) {
	tn := r.notes[fromID]
	if tn == nil {
		return
	}
	if retrigger {
		r.pool.Retrigger(0, toID, freq, velocity)
	} else {
		r.pool.Retarget(0, toID, freq)
	}

	// Legato on the wire: new Note On before old Note Off on the same
	// channel, so a well-behaved receiver does not re-articulate.
	oldKey := tn.key
	tn.key = r.midi.NoteOn(tn.channel, freq, velocity)
	r.midi.NoteOff(tn.channel, oldKey)

	delete(r.notes, fromID)
	tn.freq = freq
	tn.velocity = velocity
	tn.released = false
	r.notes[toID] = tn
}

// currentMonoNote returns the note id sounding on voice 0, or 0.
func (r *NoteEventRouter) currentMonoNote() uint32 {
	for id, tn := range r.notes {
		if tn.voice == 0 && !tn.released {
			return id
		}
	}
	return 0
}

// --- Arpeggio mode ---

func (r *NoteEventRouter) arpNoteOn(noteID uint32, freq float32, velocity uint8) {
	wasEmpty := len(r.held) == 0
	r.removeHeld(noteID)
	r.held = append(r.held, heldNote{noteID, freq, velocity})
	if wasEmpty {
		// First press sounds immediately rather than waiting a step.
		r.arpPos = len(r.held) - 1
		r.arpTrigger(r.held[r.arpPos])
	}
}

func (r *NoteEventRouter) arpNoteOff(noteID uint32) {
	r.removeHeld(noteID)
	if len(r.held) == 0 {
		if cur := r.currentMonoNote(); cur != 0 {
			tn := r.notes[cur]
			r.pool.Release(cur)
			r.midi.NoteOff(tn.channel, tn.key)
			tn.released = true
		}
		r.arpPos = 0
	}
}

// ArpStep advances the arpeggio one step: the external tempo timer calls
// this. Cycles the currently held set in press order, retriggering one
// voice per step.
func (r *NoteEventRouter) ArpStep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reapLocked()

	if r.mode != MODE_ARP || len(r.held) == 0 {
		return
	}
	r.arpPos = (r.arpPos + 1) % len(r.held)
	r.arpTrigger(r.held[r.arpPos])
}

func (r *NoteEventRouter) arpTrigger(n heldNote) {
	if cur := r.currentMonoNote(); cur != 0 {
		r.monoRetarget(cur, n.noteID, n.freq, n.velocity, true)
		return
	}
	r.retireVoiceNotes(0)
	r.pool.AllocateAt(0, n.noteID, n.freq, n.velocity)
	ch, shared := r.takeChannel()
	key := r.midi.NoteOn(ch, n.freq, n.velocity)
	r.notes[n.noteID] = &trackedNote{
		voice:    0,
		channel:  ch,
		shared:   shared,
		key:      key,
		freq:     n.freq,
		velocity: n.velocity,
	}
}

func (r *NoteEventRouter) removeHeld(noteID uint32) {
	for i := range r.held {
		if r.held[i].noteID == noteID {
			r.held = append(r.held[:i], r.held[i+1:]...)
			return
		}
	}
}

// ActiveNotes reports how many notes the router is tracking. Diagnostic.
func (r *NoteEventRouter) ActiveNotes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}
