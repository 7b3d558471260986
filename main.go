// main.go - HexBoard synthesis core: entry point and wiring

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
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// logger is the package-wide structured logger. Safe to use before
// initLogger runs; defaults to slog.Default().
var logger = slog.Default()

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

func main() {
	waveName := flag.String("wave", "hybrid", "waveform: sine, strings, clarinet, saw, triangle, square, hybrid")
	modeName := flag.String("mode", "poly", "polyphony mode: poly, mono, arp")
	attackMs := flag.Int("attack", 10, "attack time in ms")
	decayMs := flag.Int("decay", 100, "decay time in ms")
	sustain := flag.Float64("sustain", 0.7, "sustain level 0-1")
	releaseMs := flag.Int("release", 200, "release time in ms")
	bits := flag.Int("bits", RES_12BIT, "output resolution: 8 or 12")
	duty := flag.Float64("duty", 0.5, "square duty cycle 0-1")
	dutyDepth := flag.Float64("duty-depth", 0, "square duty modulation depth 0-0.5")
	mpeLow := flag.Int("mpe-low", 2, "lowest MPE member channel (0 disables MIDI out)")
	mpeHigh := flag.Int("mpe-high", 16, "highest MPE member channel")
	arpBPM := flag.Int("arp-bpm", 120, "arpeggio tempo in steps per minute x4")
	renderPath := flag.String("render", "", "render demo sequence to WAV file and exit")
	renderSecs := flag.Float64("seconds", 4.0, "render duration in seconds")
	midiOutName := flag.String("midi-out", "", "MIDI output port name")
	midiInName := flag.String("midi-in", "", "MIDI input port name")
	tickStats := flag.Bool("tick-stats", false, "record worst-case tick duration")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	initLogger(*debug)

	cfg := DefaultSynthConfig()
	var err error
	if cfg.Waveform, err = ParseWaveform(*waveName); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.Mode, err = ParseMode(*modeName); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg.AttackMs = *attackMs
	cfg.DecayMs = *decayMs
	cfg.Sustain = float32(*sustain)
	cfg.ReleaseMs = *releaseMs
	cfg.Resolution = *bits
	cfg.Duty = float32(*duty)
	cfg.DutyDepth = float32(*dutyDepth)
	cfg.MPELow = uint8(*mpeLow)
	cfg.MPEHigh = uint8(*mpeHigh)
	cfg.Clamp()

	cmds := NewCommandBank()
	pool := NewVoicePool(cmds)
	engine := NewSynthEngine(SAMPLE_RATE, pool, cmds)
	engine.EnableTickStats(*tickStats)
	chans := NewChannelAllocator(cfg.MPELow, cfg.MPEHigh)

	var sender MidiSender
	if *midiOutName != "" {
		out, closePort, err := openMidiOut(*midiOutName)
		if err != nil {
			logger.Error("MIDI output unavailable", "port", *midiOutName, "err", err)
		} else {
			defer closePort()
			sender = out
		}
	}
	midiOut := NewMidiOut(sender)
	router := NewNoteEventRouter(pool, chans, engine, midiOut, logger)
	cfg.Apply(engine, router)

	if *renderPath != "" {
		if err := RenderWAV(engine, *renderPath, *renderSecs, demoScript(router, *renderSecs)); err != nil {
			logger.Error("render failed", "err", err)
			os.Exit(1)
		}
		logger.Info("rendered demo sequence", "path", *renderPath, "seconds", *renderSecs)
		return
	}

	output, err := NewAudioOutput(SAMPLE_RATE, engine)
	if err != nil {
		logger.Error("failed to open audio output", "err", err)
		os.Exit(1)
	}
	engine.StartClock()
	output.Start()
	logger.Info("audio started", "rate", SAMPLE_RATE, "voices", NUM_VOICES,
		"wave", *waveName, "mode", *modeName)

	stop := make(chan struct{})

	// Channel reaper: recycles MPE channels once voices finish releasing.
	go func() {
		t := time.NewTicker(50 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				router.Reap()
			}
		}
	}()

	if cfg.Mode == MODE_ARP {
		go func() {
			step := time.Minute / time.Duration(*arpBPM*4)
			t := time.NewTicker(step)
			defer t.Stop()
			for {
				select {
				case <-stop:
					return
				case <-t.C:
					router.ArpStep()
				}
			}
		}()
	}

	if *midiInName != "" {
		stopListen, err := listenMidiIn(*midiInName, router)
		if err != nil {
			logger.Error("MIDI input unavailable", "port", *midiInName, "err", err)
		} else {
			defer stopListen()
		}
	} else {
		go demoLoop(router, stop)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	close(stop)
	router.PanicStop()
	output.Stop()
	engine.StopClock()
	_ = output.Close()
	if *tickStats {
		logger.Info("tick high-water mark", "worst", engine.TickHighWater())
	}
}

// openMidiOut finds a named output port and wraps it as a MidiSender.
func openMidiOut(name string) (MidiSender, func(), error) {
	outs, err := drivers.Outs()
	if err != nil {
		return nil, nil, err
	}
	var found drivers.Out
	for _, out := range outs {
		if out.String() == name {
			found = out
			break
		}
	}
	if found == nil {
		return nil, nil, fmt.Errorf("MIDI output %q not found", name)
	}
	if err := found.Open(); err != nil {
		return nil, nil, err
	}
	closer := func() {
		_ = found.Close()
	}
	logger.Info("MIDI output connected", "port", name)
	return SenderFunc(func(msg midi.Message) error {
		return found.Send(msg.Bytes())
	}), closer, nil
}

// listenMidiIn routes incoming Note On/Off from a named port into the
// router, tuning keys in standard 12-EDO.
func listenMidiIn(name string, router *NoteEventRouter) (func(), error) {
	ins, err := drivers.Ins()
	if err != nil {
		return nil, err
	}
	var found drivers.In
	for _, in := range ins {
		if in.String() == name {
			found = in
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("MIDI input %q not found", name)
	}
	if err := found.Open(); err != nil {
		return nil, err
	}
	stop, err := midi.ListenTo(found, func(msg midi.Message, _ int32) {
		var ch, key, vel uint8
		switch {
		case msg.GetNoteOn(&ch, &key, &vel) && vel > 0:
			router.NoteOn(uint32(key), keyToFreq(key), vel)
		case msg.GetNoteOff(&ch, &key, &vel), msg.GetNoteOn(&ch, &key, &vel):
			router.NoteOff(uint32(key))
		}
	})
	if err != nil {
		_ = found.Close()
		return nil, err
	}
	logger.Info("MIDI input connected", "port", name)
	return func() {
		stop()
		_ = found.Close()
	}, nil
}

func keyToFreq(key uint8) float32 {
	return float32(440.0 * math.Pow(2, (float64(key)-69)/12))
}

// demoFreqs is a short 31-EDO run starting from A3: the kind of line a
// hex-grid layout lands under one hand.
var demoFreqs = func() []float32 {
	steps := []int{0, 5, 10, 13, 18, 23, 28, 31}
	out := make([]float32, len(steps))
	for i, s := range steps {
		out[i] = float32(220.0 * math.Pow(2, float64(s)/31.0))
	}
	return out
}()

// demoLoop plays the demo line until stopped, so the binary makes sound
// out of the box with no controller attached.
func demoLoop(router *NoteEventRouter, stop <-chan struct{}) {
	for i := 0; ; i++ {
		n := uint32(1000 + i%len(demoFreqs))
		freq := demoFreqs[i%len(demoFreqs)]
		router.NoteOn(n, freq, 100)
		select {
		case <-stop:
			router.PanicStop()
			return
		case <-time.After(280 * time.Millisecond):
		}
		router.NoteOff(n)
		select {
		case <-stop:
			router.PanicStop()
			return
		case <-time.After(60 * time.Millisecond):
		}
	}
}

// demoScript schedules the demo line across an offline render.
func demoScript(router *NoteEventRouter, seconds float64) func(tick int) {
	total := int(seconds * SAMPLE_RATE)
	per := total / len(demoFreqs)
	gate := per * 3 / 4
	return func(tick int) {
		if per == 0 {
			return
		}
		step := tick / per
		if step >= len(demoFreqs) {
			return
		}
		switch tick % per {
		case 0:
			router.NoteOn(uint32(2000+step), demoFreqs[step], 100)
		case gate:
			router.NoteOff(uint32(2000 + step))
			router.Reap()
		}
	}
}
