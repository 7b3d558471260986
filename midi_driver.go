//go:build !headless

// midi_driver.go - Platform MIDI driver registration

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

// The rtmididrv import registers the platform MIDI backend (ALSA,
// CoreMIDI, WinMM) with the shared drivers registry; drivers.Ins and
// drivers.Outs stay empty without it. The headless build skips the cgo
// dependency, so -midi-in and -midi-out find no ports there.
import (
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)
