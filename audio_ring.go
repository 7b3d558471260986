// audio_ring.go - Single-producer single-consumer frame ring

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

import "sync/atomic"

// FrameRing carries output frames from the audio clock goroutine to the
// playback backend. Exactly one producer and one consumer; both sides are
// wait-free. A full ring drops the newest frame rather than blocking the
// producer, because the clock must never stall.
type FrameRing struct {
	buf  []uint64
	mask uint64

	head atomic.Uint64 // next write position, producer-owned
	tail atomic.Uint64 // next read position, consumer-owned
}

// NewFrameRing rounds the capacity up to a power of two.
func NewFrameRing(capacity int) *FrameRing {
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &FrameRing{
		buf:  make([]uint64, size),
		mask: uint64(size - 1),
	}
}

// Push appends one frame. Returns false (frame dropped) when full.
func (r *FrameRing) Push(frame uint64) bool {
	head := r.head.Load()
	if head-r.tail.Load() >= uint64(len(r.buf)) {
		return false
	}
	r.buf[head&r.mask] = frame
	r.head.Store(head + 1)
	return true
}

// Pop removes the oldest frame, reporting false when empty.
func (r *FrameRing) Pop() (uint64, bool) {
	tail := r.tail.Load()
	if tail == r.head.Load() {
		return 0, false
	}
	frame := r.buf[tail&r.mask]
	r.tail.Store(tail + 1)
	return frame, true
}

// Len reports the number of buffered frames. Advisory: either side may move
// concurrently.
func (r *FrameRing) Len() int {
	return int(r.head.Load() - r.tail.Load())
}

// Free reports remaining capacity. Producer-side advisory.
func (r *FrameRing) Free() int {
	return len(r.buf) - r.Len()
}
