// config.go - User-facing synthesizer configuration

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

import "fmt"

// SynthConfig is the settings surface the menu collaborator persists and
// hands to the core. The core consumes it; it does not own it.
type SynthConfig struct {
	Waveform  int
	AttackMs  int
	DecayMs   int
	ReleaseMs int
	Sustain   float32 // 0..1

	Mode       int // MODE_POLY, MODE_MONO, MODE_ARP
	Resolution int // RES_8BIT or RES_12BIT
	Duty       float32
	DutyDepth  float32

	// MPE zone, inclusive, channels 1-16. Zero range disables MIDI out.
	MPELow  uint8
	MPEHigh uint8
}

func DefaultSynthConfig() SynthConfig {
	return SynthConfig{
		Waveform:   WAVE_HYBRID,
		AttackMs:   10,
		DecayMs:    100,
		ReleaseMs:  200,
		Sustain:    0.7,
		Mode:       MODE_POLY,
		Resolution: RES_12BIT,
		Duty:       0.5,
		MPELow:     2,
		MPEHigh:    16,
	}
}

// Clamp pulls every field back into its legal range. Persisted settings
// can arrive corrupted; nothing downstream should ever see a zero stage
// duration or an inverted MPE zone.
func (c *SynthConfig) Clamp() {
	if c.Waveform < 0 || c.Waveform >= WAVE_COUNT {
		c.Waveform = WAVE_SINE
	}
	c.AttackMs = max(c.AttackMs, MIN_ENV_MS)
	c.DecayMs = max(c.DecayMs, MIN_ENV_MS)
	c.ReleaseMs = max(c.ReleaseMs, MIN_ENV_MS)
	if c.Sustain < 0 {
		c.Sustain = 0
	} else if c.Sustain > 1 {
		c.Sustain = 1
	}
	if c.Mode != MODE_MONO && c.Mode != MODE_ARP {
		c.Mode = MODE_POLY
	}
	if c.Resolution != RES_8BIT {
		c.Resolution = RES_12BIT
	}
	if c.Duty < 0 || c.Duty > 1 {
		c.Duty = 0.5
	}
	if c.DutyDepth < 0 || c.DutyDepth > 0.5 {
		c.DutyDepth = 0
	}
	if c.MPELow > 16 || c.MPEHigh > 16 || c.MPELow > c.MPEHigh {
		c.MPELow, c.MPEHigh = 0, 0
	}
}

// Apply pushes the configuration into the engine and router. The param
// change path used by the settings menu.
func (c SynthConfig) Apply(engine *SynthEngine, router *NoteEventRouter) {
	c.Clamp()
	engine.SetADSR(c.AttackMs, c.DecayMs, c.ReleaseMs, c.Sustain)
	engine.SetWaveform(c.Waveform)
	engine.SetResolution(c.Resolution)
	engine.SetDuty(c.Duty, c.DutyDepth)
	router.SetMPERange(c.MPELow, c.MPEHigh)
	router.SetMode(c.Mode)
}

var waveformNames = map[string]int{
	"sine":     WAVE_SINE,
	"strings":  WAVE_STRINGS,
	"clarinet": WAVE_CLARINET,
	"saw":      WAVE_SAW,
	"triangle": WAVE_TRIANGLE,
	"square":   WAVE_SQUARE,
	"hybrid":   WAVE_HYBRID,
}

// ParseWaveform resolves a waveform name from the command line or menu.
func ParseWaveform(name string) (int, error) {
	if w, ok := waveformNames[name]; ok {
		return w, nil
	}
	return 0, fmt.Errorf("unknown waveform %q", name)
}

var modeNames = map[string]int{
	"poly": MODE_POLY,
	"mono": MODE_MONO,
	"arp":  MODE_ARP,
}

// ParseMode resolves a polyphony mode name.
func ParseMode(name string) (int, error) {
	if m, ok := modeNames[name]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("unknown polyphony mode %q", name)
}
