// wav_render.go - Offline render of the engine output to a WAV file

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
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// RenderWAV drives the synthesis tick synchronously for the given duration
// and encodes the fixed-reference output stream as 16-bit mono PCM. The
// clock goroutine must not be running: this is the offline path, used for
// regression listening and for capturing golden output. onTick, if not
// nil, runs before each tick and is where a caller scripts note events.
func RenderWAV(engine *SynthEngine, path string, seconds float64, onTick func(tick int)) error {
	if seconds <= 0 {
		return fmt.Errorf("render duration must be positive, got %v", seconds)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, engine.sampleRate, 16, 1, 1)

	bitDepth := engine.Resolution()
	maxCode := float32(uint32(1)<<bitDepth - 1)
	mid := maxCode / 2

	n := int(seconds * float64(engine.sampleRate))
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  engine.sampleRate,
		},
		Data:           make([]int, n),
		SourceBitDepth: 16,
	}
	for i := 0; i < n; i++ {
		if onTick != nil {
			onTick(i)
		}
		frame := engine.Tick()
		norm := (float32(frame.Fixed) - mid) / mid
		buf.Data[i] = int(norm * 32767)
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return nil
}
