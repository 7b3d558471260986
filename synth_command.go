// synth_command.go - Lock-free command slots between the control and audio contexts

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

// Command opcodes. cmdNone is zero so an empty slot and an absent command
// are the same encoded value.
const (
	cmdNone = iota
	cmdAttack
	cmdRelease
	cmdReset
	cmdPitch
)

// Command is the one message type crossing from the control context to the
// audio context. Exactly one slot exists per voice; a newer post silently
// supersedes an older unconsumed one, which is correct: a superseding
// request for the same voice is the user's latest intent.
type Command struct {
	Op       uint8
	Velocity uint8
	Freq     float32
}

// Packed layout: op in bits 40-47, velocity in bits 32-39, float32 frequency
// bits in 0-31. Any command with a nonzero op packs to a nonzero word.
func packCommand(c Command) uint64 {
	return uint64(c.Op)<<40 | uint64(c.Velocity)<<32 | uint64(math.Float32bits(c.Freq))
}

func unpackCommand(raw uint64) Command {
	return Command{
		Op:       uint8(raw >> 40),
		Velocity: uint8(raw >> 32),
		Freq:     math.Float32frombits(uint32(raw)),
	}
}

// CommandBank holds one overwrite-on-full slot per voice. The control
// context only ever stores; the audio context consumes with Peek and
// Commit (or Drain, outside the tick). Neither side blocks, and the
// happens-before edge between the two contexts is exactly the atomic on
// each slot.
type CommandBank struct {
	slots [NUM_VOICES]atomic.Uint64
}

func NewCommandBank() *CommandBank {
	return &CommandBank{}
}

// Post publishes a command for a voice, replacing any unconsumed one.
func (b *CommandBank) Post(voice int, c Command) {
	b.slots[voice].Store(packCommand(c))
}

// Drain removes and returns the pending command for a voice, if any.
func (b *CommandBank) Drain(voice int) (Command, bool) {
	raw := b.slots[voice].Swap(0)
	if raw == 0 {
		return Command{}, false
	}
	return unpackCommand(raw), true
}

// Peek returns the pending command for a voice without clearing the slot,
// plus the raw word so Commit can clear exactly what was read. The audio
// tick consumes commands as Peek, apply, publish status, Commit: the slot
// stays nonempty until the status mirrors reflect the applied command, so
// the control context never observes an emptied slot next to a stale
// stage snapshot.
func (b *CommandBank) Peek(voice int) (Command, uint64, bool) {
	raw := b.slots[voice].Load()
	if raw == 0 {
		return Command{}, 0, false
	}
	return unpackCommand(raw), raw, true
}

// Commit clears the slot only if it still holds the word Peek returned.
// A failed commit means the control context superseded the command while
// it was being applied; the newer one stays pending for the next tick.
func (b *CommandBank) Commit(voice int, raw uint64) bool {
	return b.slots[voice].CompareAndSwap(raw, 0)
}

// Pending reports whether a slot holds an unconsumed command. Control-side
// diagnostic only; the result may be stale by the time it returns.
func (b *CommandBank) Pending(voice int) bool {
	return b.slots[voice].Load() != 0
}
