// midi_out.go - Outgoing MPE message tagging

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

	"gitlab.com/gomidi/midi/v2"
)

// MidiSender transmits one wire message. Satisfied by an open gomidi output
// port via SenderFunc, and by test doubles.
type MidiSender interface {
	Send(msg midi.Message) error
}

// SenderFunc adapts a function to MidiSender.
type SenderFunc func(msg midi.Message) error

func (f SenderFunc) Send(msg midi.Message) error { return f(msg) }

const (
	// bendRangeSemitones is the pitch-bend sensitivity assumed for the
	// receiver, the MPE convention default.
	bendRangeSemitones = 48.0

	bendCenterOffset = 8192
)

// MidiOut tags outgoing Note On/Off and Pitch Bend messages with the MIDI
// channel the allocator assigned to each note. Channels here are the
// allocator's 1-16 numbering; gomidi wants 0-15.
type MidiOut struct {
	sender MidiSender
}

func NewMidiOut(sender MidiSender) *MidiOut {
	return &MidiOut{sender: sender}
}

// freqToKeyBend splits an arbitrary frequency into the nearest equal-
// tempered key plus a pitch-bend offset. This is how the controller speaks
// microtonal pitch to a standard MPE receiver: the bend value arrives
// precomputed from the tuning layer, here reconstructed from frequency.
func freqToKeyBend(freq float32) (key uint8, bend int16) {
	if freq <= 0 {
		return 0, 0
	}
	note := 69.0 + 12.0*math.Log2(float64(freq)/440.0)
	k := math.Round(note)
	if k < 0 {
		k = 0
	} else if k > 127 {
		k = 127
	}
	semis := note - k
	b := math.Round(semis / bendRangeSemitones * bendCenterOffset)
	if b < -8192 {
		b = -8192
	} else if b > 8191 {
		b = 8191
	}
	return uint8(k), int16(b)
}

func (m *MidiOut) NoteOn(channel uint8, freq float32, velocity uint8) (key uint8) {
	key, bend := freqToKeyBend(freq)
	if m == nil || m.sender == nil || channel == 0 {
		return key
	}
	wire := channel - 1
	if bend != 0 {
		_ = m.sender.Send(midi.Pitchbend(wire, bend))
	}
	_ = m.sender.Send(midi.NoteOn(wire, key, velocity))
	return key
}

func (m *MidiOut) NoteOff(channel uint8, key uint8) {
	if m == nil || m.sender == nil || channel == 0 {
		return
	}
	_ = m.sender.Send(midi.NoteOff(channel-1, key))
}

// PitchBend retunes an already sounding note on its channel. The bend is
// computed against the key the note was struck with, not the key nearest
// the new frequency, so a glide never re-quantizes mid-flight.
func (m *MidiOut) PitchBend(channel uint8, key uint8, freq float32) {
	if m == nil || m.sender == nil || channel == 0 || freq <= 0 {
		return
	}
	note := 69.0 + 12.0*math.Log2(float64(freq)/440.0)
	b := math.Round((note - float64(key)) / bendRangeSemitones * bendCenterOffset)
	if b < -8192 {
		b = -8192
	} else if b > 8191 {
		b = 8191
	}
	_ = m.sender.Send(midi.Pitchbend(channel-1, int16(b)))
}
