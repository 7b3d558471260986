// synth_benchmark_test.go - Tick path benchmarks

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

import "testing"

// BenchmarkEngineTick_Silent measures the idle tick cost, the floor every
// other figure sits on.
func BenchmarkEngineTick_Silent(b *testing.B) {
	engine, _, _ := newTestEngine()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Tick()
	}
}

// BenchmarkEngineTick_FullPolyphony measures the worst case: all eight
// voices sustaining. At 41kHz a tick has about 24 microseconds to finish.
func BenchmarkEngineTick_FullPolyphony(b *testing.B) {
	engine, pool, _ := newTestEngine()
	engine.SetADSR(1, 10, 100, 1.0)
	for i := 0; i < NUM_VOICES; i++ {
		pool.Allocate(uint32(i+1), float32(110*(i+1)), 127)
	}
	for i := 0; i < 1000; i++ {
		engine.Tick()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Tick()
	}
}

// BenchmarkEngineTick_Wavetable isolates the table-lookup timbres.
func BenchmarkEngineTick_Wavetable(b *testing.B) {
	engine, pool, _ := newTestEngine()
	engine.SetWaveform(WAVE_STRINGS)
	engine.SetADSR(1, 10, 100, 1.0)
	for i := 0; i < NUM_VOICES; i++ {
		pool.Allocate(uint32(i+1), float32(110*(i+1)), 127)
	}
	for i := 0; i < 1000; i++ {
		engine.Tick()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Tick()
	}
}

// BenchmarkVoiceAllocate measures the control-side allocation scan,
// including the stealing path once the pool fills.
func BenchmarkVoiceAllocate(b *testing.B) {
	cmds := NewCommandBank()
	pool := NewVoicePool(cmds)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Allocate(uint32(i+1), 440.0, 100)
	}
}

// BenchmarkCommandBank_PostDrain measures one slot round trip.
func BenchmarkCommandBank_PostDrain(b *testing.B) {
	bank := NewCommandBank()
	cmd := Command{Op: cmdAttack, Velocity: 100, Freq: 440.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bank.Post(0, cmd)
		bank.Drain(0)
	}
}

// BenchmarkFrameRing_PushPop measures the SPSC handoff per frame.
func BenchmarkFrameRing_PushPop(b *testing.B) {
	r := NewFrameRing(1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Push(uint64(i))
		r.Pop()
	}
}
