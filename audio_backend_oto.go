//go:build !headless

// audio_backend_oto.go - OTO v3 playback backend

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
	"encoding/binary"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// OtoPlayer adapts the frame ring to an oto stream. The left channel
// carries the fixed-reference output and the right channel the
// adaptive-reference output, each normalized from the engine's configured
// resolution, so both hardware paths can be auditioned at once.
type OtoPlayer struct {
	ctx    *oto.Context
	player *oto.Player
	engine *SynthEngine

	last    uint64 // frame repeated on ring underrun
	started bool
	mutex   sync.Mutex
}

func NewOtoPlayer(sampleRate int, engine *SynthEngine) (*OtoPlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	p := &OtoPlayer{
		ctx:    ctx,
		engine: engine,
	}
	p.player = ctx.NewPlayer(p)
	return p, nil
}

// Read drains the ring into oto's buffer. An underrun repeats the last
// frame instead of snapping to zero, which avoids a click when the clock
// goroutine falls momentarily behind.
func (p *OtoPlayer) Read(buf []byte) (int, error) {
	const frameBytes = 8 // two float32 channels
	frames := len(buf) / frameBytes

	bitDepth := p.engine.Resolution()
	maxCode := float32(uint32(1)<<bitDepth - 1)
	mid := maxCode / 2

	for i := 0; i < frames; i++ {
		raw, ok := p.engine.Ring().Pop()
		if !ok {
			raw = p.last
		}
		p.last = raw
		f := unpackFrame(raw)

		left := (float32(f.Fixed) - mid) / mid
		right := (float32(f.Adaptive) - mid) / mid
		binary.LittleEndian.PutUint32(buf[i*frameBytes:], math.Float32bits(left))
		binary.LittleEndian.PutUint32(buf[i*frameBytes+4:], math.Float32bits(right))
	}
	return frames * frameBytes, nil
}

func (p *OtoPlayer) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
	}
}

func (p *OtoPlayer) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.started && p.player != nil {
		p.player.Pause()
		p.started = false
	}
}

func (p *OtoPlayer) Close() error {
	p.Stop()
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.player != nil {
		err := p.player.Close()
		p.player = nil
		return err
	}
	return nil
}

// NewAudioOutput builds the platform playback backend.
func NewAudioOutput(sampleRate int, engine *SynthEngine) (AudioOutput, error) {
	return NewOtoPlayer(sampleRate, engine)
}
