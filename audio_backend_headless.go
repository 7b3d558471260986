//go:build headless

// audio_backend_headless.go - No-op playback backend for CI and tests

package main

// HeadlessPlayer drains nothing; whatever the clock produces simply ages
// out of the ring.
type HeadlessPlayer struct {
	started bool
}

func (p *HeadlessPlayer) Start()       { p.started = true }
func (p *HeadlessPlayer) Stop()        { p.started = false }
func (p *HeadlessPlayer) Close() error { p.started = false; return nil }

// NewAudioOutput builds the headless backend.
func NewAudioOutput(sampleRate int, engine *SynthEngine) (AudioOutput, error) {
	return &HeadlessPlayer{}, nil
}
