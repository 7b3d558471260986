// audio_output.go - Playback backend interface and selection

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

// AudioOutput is implemented by playback backends. The backend drains the
// engine's frame ring; it never calls into the synthesis tick itself.
type AudioOutput interface {
	Start()
	Stop()
	Close() error
}
