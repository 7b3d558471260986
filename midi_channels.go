// midi_channels.go - MPE channel pool backed by a bitmask

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
	"errors"
	"math/bits"
	"sync/atomic"
)

// ErrChannelsExhausted is the distinguished failure for a fully allocated
// channel pool. The caller decides the fallback policy: share a default
// channel or drop the note. The pool itself is left untouched.
var ErrChannelsExhausted = errors.New("midi channel pool exhausted")

// ChannelAllocator hands out MIDI channels for per-note expression (MPE).
// A set bit in the mask means the channel is currently unassigned; a
// cleared bit means it is owned by exactly one active note. The mask is a
// single atomic word so the allocator stays safe against concurrent control
// goroutines (input scanner vs. MIDI listener) without a lock.
type ChannelAllocator struct {
	mask atomic.Uint32

	lo atomic.Uint32
	hi atomic.Uint32
}

// NewChannelAllocator builds a pool over the inclusive channel range
// [lowest, highest], MIDI channels numbered 1-16. A zero or inverted range
// produces an empty (disabled) pool.
func NewChannelAllocator(lowest, highest uint8) *ChannelAllocator {
	a := &ChannelAllocator{}
	a.Reset(lowest, highest)
	return a
}

func rangeMask(lowest, highest uint8) uint32 {
	if lowest == 0 || highest > 16 || lowest > highest {
		return 0
	}
	var m uint32
	for ch := lowest; ch <= highest; ch++ {
		m |= 1 << ch
	}
	return m
}

// Take claims and returns the lowest-numbered free channel. On an empty
// mask it returns ErrChannelsExhausted and makes no state change.
func (a *ChannelAllocator) Take() (uint8, error) {
	for {
		m := a.mask.Load()
		if m == 0 {
			return 0, ErrChannelsExhausted
		}
		ch := uint8(bits.TrailingZeros32(m))
		if a.mask.CompareAndSwap(m, m&^(1<<ch)) {
			return ch, nil
		}
	}
}

// Release returns a channel to the pool. Idempotent: re-setting an already
// set bit is a no-op, so a duplicate release cannot corrupt the pool.
// Channels outside the configured range are ignored, which makes releases
// that race a zone reconfiguration harmless.
func (a *ChannelAllocator) Release(ch uint8) {
	bit := rangeMask(uint8(a.lo.Load()), uint8(a.hi.Load())) & (1 << ch)
	if bit == 0 {
		return
	}
	for {
		m := a.mask.Load()
		if a.mask.CompareAndSwap(m, m|bit) {
			return
		}
	}
}

// Reset reinitializes the pool to exactly the channels in the new inclusive
// range, discarding any prior allocation state. Invoked on MPE zone
// reconfiguration; pass 0, 0 to disable the pool.
func (a *ChannelAllocator) Reset(lowest, highest uint8) {
	a.lo.Store(uint32(lowest))
	a.hi.Store(uint32(highest))
	a.mask.Store(rangeMask(lowest, highest))
}

// FreeCount reports how many channels are currently unassigned.
func (a *ChannelAllocator) FreeCount() int {
	return bits.OnesCount32(a.mask.Load())
}

// Enabled reports whether the pool covers any channels at all.
func (a *ChannelAllocator) Enabled() bool {
	return rangeMask(uint8(a.lo.Load()), uint8(a.hi.Load())) != 0
}
