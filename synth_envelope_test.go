// synth_envelope_test.go - ADSR state machine tests

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

// TestEnvelopeParams_Clamping tests that corrupted durations are pulled up
// to the minimum before tick conversion.
func TestEnvelopeParams_Clamping(t *testing.T) {
	p := NewEnvelopeParams(0, -5, 0, 1.5)

	if p.attackTicks < 1 {
		t.Errorf("attack ticks should be at least 1, got %d", p.attackTicks)
	}
	if p.decayTicks < 1 {
		t.Errorf("decay ticks should be at least 1, got %d", p.decayTicks)
	}
	if p.releaseTicks < 1 {
		t.Errorf("release ticks should be at least 1, got %d", p.releaseTicks)
	}
	if p.sustainLevel != 1.0 {
		t.Errorf("sustain should clamp to 1.0, got %v", p.sustainLevel)
	}

	p = NewEnvelopeParams(10, 10, 10, -0.3)
	if p.sustainLevel != 0 {
		t.Errorf("sustain should clamp to 0, got %v", p.sustainLevel)
	}
}

// TestEnvelopeParams_TickConversion tests the ms-to-ticks math.
func TestEnvelopeParams_TickConversion(t *testing.T) {
	p := NewEnvelopeParams(10, 100, 200, 0.7)

	if p.attackTicks != 10*MS_TO_TICKS {
		t.Errorf("10ms attack should be %d ticks, got %d", 10*MS_TO_TICKS, p.attackTicks)
	}
	if p.decayTicks != 100*MS_TO_TICKS {
		t.Errorf("100ms decay should be %d ticks, got %d", 100*MS_TO_TICKS, p.decayTicks)
	}
	if p.releaseTicks != 200*MS_TO_TICKS {
		t.Errorf("200ms release should be %d ticks, got %d", 200*MS_TO_TICKS, p.releaseTicks)
	}
}

// TestEnvelope_AttackReachesFullLevel tests that the attack ramp terminates
// at exactly 1.0 and hands over to decay.
func TestEnvelope_AttackReachesFullLevel(t *testing.T) {
	p := NewEnvelopeParams(10, 100, 200, 0.7)
	var e Envelope
	e.TriggerAttack()

	for i := 0; i < p.attackTicks+2 && e.stage == ENV_ATTACK; i++ {
		e.Advance(p)
	}
	if e.stage != ENV_DECAY {
		t.Fatalf("envelope should reach decay after the attack ramp, stage %d", e.stage)
	}
	if e.level != 1.0 {
		t.Errorf("level should be exactly 1.0 at the attack-decay boundary, got %v", e.level)
	}
}

// TestEnvelope_DecaySettlesAtSustain tests that decay lands on the sustain
// level and holds there.
func TestEnvelope_DecaySettlesAtSustain(t *testing.T) {
	p := NewEnvelopeParams(1, 50, 200, 0.4)
	var e Envelope
	e.TriggerAttack()

	total := p.attackTicks + p.decayTicks + 10
	for i := 0; i < total; i++ {
		e.Advance(p)
	}
	if e.stage != ENV_SUSTAIN {
		t.Fatalf("envelope should be sustaining, stage %d", e.stage)
	}
	if e.level != p.sustainLevel {
		t.Errorf("sustain should hold at %v, got %v", p.sustainLevel, e.level)
	}

	// Sustain holds indefinitely without a release.
	for i := 0; i < 1000; i++ {
		e.Advance(p)
	}
	if e.level != p.sustainLevel {
		t.Errorf("sustain drifted to %v after 1000 ticks", e.level)
	}
}

// TestEnvelope_ReleaseRampExact tests the release ramp from a sustain level
// of 0.4 over 100 ticks: strictly decreasing every tick, exactly zero at
// the end, Idle after.
func TestEnvelope_ReleaseRampExact(t *testing.T) {
	p := &EnvelopeParams{
		attackTicks:  1,
		decayTicks:   1,
		releaseTicks: 100,
		attackInc:    1.0,
		decayDec:     0.6,
		sustainLevel: 0.4,
	}
	e := Envelope{stage: ENV_SUSTAIN, level: 0.4}
	e.TriggerRelease(p)

	if e.stage != ENV_RELEASE {
		t.Fatalf("envelope should be releasing, stage %d", e.stage)
	}

	prev := e.level
	ticks := 0
	for e.stage == ENV_RELEASE {
		level := e.Advance(p)
		ticks++
		if e.stage == ENV_RELEASE && level >= prev {
			t.Fatalf("release level should strictly decrease: tick %d went %v -> %v", ticks, prev, level)
		}
		prev = level
		if ticks > 100 {
			t.Fatalf("release should finish within 100 ticks")
		}
	}
	if ticks != 100 {
		t.Errorf("release should take exactly 100 ticks, took %d", ticks)
	}
	if e.level != 0 {
		t.Errorf("level should be exactly 0 after release, got %v", e.level)
	}
	if e.stage != ENV_IDLE {
		t.Errorf("envelope should be Idle after release, stage %d", e.stage)
	}
}

// TestEnvelope_EarlyReleaseContinuity tests that releasing mid-attack ramps
// from the current level rather than jumping.
func TestEnvelope_EarlyReleaseContinuity(t *testing.T) {
	p := NewEnvelopeParams(100, 100, 50, 0.7)
	var e Envelope
	e.TriggerAttack()

	for i := 0; i < 500; i++ {
		e.Advance(p)
	}
	if e.stage != ENV_ATTACK {
		t.Fatalf("envelope should still be attacking, stage %d", e.stage)
	}
	before := e.level
	e.TriggerRelease(p)

	if e.level != before {
		t.Errorf("release should not move the level at the transition, %v -> %v", before, e.level)
	}
	after := e.Advance(p)
	if after >= before {
		t.Errorf("first release tick should decrease the level, %v -> %v", before, after)
	}
	// The per-tick drop must be sized so the full ramp still spans
	// releaseTicks from wherever the level was.
	wantDec := before / float32(p.releaseTicks)
	gotDec := before - after
	if diff := gotDec - wantDec; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("release decrement should be %v, got %v", wantDec, gotDec)
	}
}

// TestEnvelope_RetriggerKeepsLevel tests that re-attacking a sounding voice
// ramps up from the current level.
func TestEnvelope_RetriggerKeepsLevel(t *testing.T) {
	p := NewEnvelopeParams(1, 100, 200, 0.4)
	var e Envelope
	e.TriggerAttack()
	for i := 0; i < p.attackTicks+p.decayTicks+5; i++ {
		e.Advance(p)
	}
	if e.stage != ENV_SUSTAIN {
		t.Fatalf("setup: expected sustain, stage %d", e.stage)
	}

	e.TriggerAttack()
	if e.stage != ENV_ATTACK {
		t.Fatalf("retrigger should restart the attack, stage %d", e.stage)
	}
	if e.level != p.sustainLevel {
		t.Errorf("retrigger should keep the current level %v, got %v", p.sustainLevel, e.level)
	}
	next := e.Advance(p)
	if next <= p.sustainLevel {
		t.Errorf("attack from %v should rise, got %v", p.sustainLevel, next)
	}
}

// TestEnvelope_ReleaseFromIdle tests that releasing an idle envelope is a
// no-op.
func TestEnvelope_ReleaseFromIdle(t *testing.T) {
	p := NewEnvelopeParams(10, 100, 200, 0.7)
	var e Envelope

	e.TriggerRelease(p)
	if e.stage != ENV_IDLE {
		t.Errorf("releasing an idle envelope should stay Idle, stage %d", e.stage)
	}
	if e.Active() {
		t.Error("idle envelope should not report active")
	}
}

// TestEnvelope_Reset tests the panic path.
func TestEnvelope_Reset(t *testing.T) {
	p := NewEnvelopeParams(10, 100, 200, 0.7)
	var e Envelope
	e.TriggerAttack()
	for i := 0; i < 100; i++ {
		e.Advance(p)
	}

	e.Reset()
	if e.stage != ENV_IDLE || e.level != 0 {
		t.Errorf("Reset should force Idle at level 0, got stage %d level %v", e.stage, e.level)
	}
}
