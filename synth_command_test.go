// synth_command_test.go - Cross-context command bank tests

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
	"sync"
	"testing"
)

// TestCommand_PackRoundTrip tests the packed slot encoding.
func TestCommand_PackRoundTrip(t *testing.T) {
	cases := []Command{
		{Op: cmdAttack, Velocity: 127, Freq: 440.0},
		{Op: cmdAttack, Velocity: 1, Freq: 8.1758},
		{Op: cmdRelease},
		{Op: cmdReset},
		{Op: cmdPitch, Freq: 13289.75},
	}
	for _, c := range cases {
		got := unpackCommand(packCommand(c))
		if got != c {
			t.Errorf("round trip changed %+v to %+v", c, got)
		}
	}
}

// TestCommand_NonzeroEncoding tests that every real command packs to a
// nonzero word, since zero means empty slot.
func TestCommand_NonzeroEncoding(t *testing.T) {
	ops := []uint8{cmdAttack, cmdRelease, cmdReset, cmdPitch}
	for _, op := range ops {
		if packCommand(Command{Op: op}) == 0 {
			t.Errorf("op %d packs to zero and would vanish from the bank", op)
		}
	}
}

// TestCommandBank_PostDrain tests the basic publish-consume cycle.
func TestCommandBank_PostDrain(t *testing.T) {
	b := NewCommandBank()

	if _, ok := b.Drain(0); ok {
		t.Fatal("empty slot should drain nothing")
	}

	b.Post(3, Command{Op: cmdAttack, Velocity: 100, Freq: 220.0})
	if !b.Pending(3) {
		t.Error("slot 3 should report pending after Post")
	}
	if b.Pending(2) {
		t.Error("slot 2 should not report pending")
	}

	cmd, ok := b.Drain(3)
	if !ok {
		t.Fatal("Drain should return the posted command")
	}
	if cmd.Op != cmdAttack || cmd.Velocity != 100 || cmd.Freq != 220.0 {
		t.Errorf("drained command corrupted: %+v", cmd)
	}
	if _, ok := b.Drain(3); ok {
		t.Error("second Drain should find the slot empty")
	}
}

// TestCommandBank_LastWriteWins tests that a newer post supersedes an
// unconsumed older one. A release posted over a pending attack means the
// audio side never hears the note, which is the user's latest intent for
// that voice.
func TestCommandBank_LastWriteWins(t *testing.T) {
	b := NewCommandBank()

	b.Post(0, Command{Op: cmdAttack, Velocity: 100, Freq: 440.0})
	b.Post(0, Command{Op: cmdRelease})

	cmd, ok := b.Drain(0)
	if !ok {
		t.Fatal("Drain should return the superseding command")
	}
	if cmd.Op != cmdRelease {
		t.Errorf("newer post should win, got op %d", cmd.Op)
	}
	if _, ok := b.Drain(0); ok {
		t.Error("superseded command should be gone, not queued")
	}
}

// TestCommandBank_SlotsIndependent tests that voices do not share slots.
func TestCommandBank_SlotsIndependent(t *testing.T) {
	b := NewCommandBank()
	for i := 0; i < NUM_VOICES; i++ {
		b.Post(i, Command{Op: cmdPitch, Freq: float32(100 + i)})
	}
	for i := 0; i < NUM_VOICES; i++ {
		cmd, ok := b.Drain(i)
		if !ok {
			t.Fatalf("slot %d should hold a command", i)
		}
		if cmd.Freq != float32(100+i) {
			t.Errorf("slot %d holds frequency %v, want %v", i, cmd.Freq, float32(100+i))
		}
	}
}

// TestCommandBank_ConcurrentPostDrain hammers one slot from a posting
// goroutine while another drains, checking that every drained command is
// well formed.
func TestCommandBank_ConcurrentPostDrain(t *testing.T) {
	b := NewCommandBank()
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100000; i++ {
			b.Post(0, Command{Op: cmdAttack, Velocity: 100, Freq: 440.0})
			b.Post(0, Command{Op: cmdRelease})
		}
		close(done)
	}()

	for {
		cmd, ok := b.Drain(0)
		if ok && cmd.Op != cmdAttack && cmd.Op != cmdRelease {
			t.Errorf("drained a torn command: %+v", cmd)
			break
		}
		select {
		case <-done:
			wg.Wait()
			return
		default:
		}
	}
	wg.Wait()
}
