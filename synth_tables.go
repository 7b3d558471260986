// synth_tables.go - Precomputed wavetables for table-indexed timbres

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

import "math"

const (
	waveTableBits = 8
	waveTableSize = 1 << waveTableBits // 256 entries, indexed by top phase bits
	waveTableMask = waveTableSize - 1

	// Shift from a 32-bit phase accumulator down to a table index.
	waveTableShift = 32 - waveTableBits
)

// Table-indexed timbres. Each table holds one normalized cycle in [-1, 1].
var (
	sineTable     [waveTableSize]float32
	stringsTable  [waveTableSize]float32
	clarinetTable [waveTableSize]float32
)

// stringsHarmonics approximates a bowed-string spectrum: all harmonics with
// 1/n rolloff and a slight boost on the second partial.
var stringsHarmonics = []struct {
	n   int
	amp float64
}{
	{1, 1.00}, {2, 0.65}, {3, 0.33}, {4, 0.25}, {5, 0.20}, {6, 0.16}, {7, 0.14}, {8, 0.12},
}

// clarinetHarmonics keeps only odd partials, the defining feature of a
// cylindrical closed-end bore.
var clarinetHarmonics = []struct {
	n   int
	amp float64
}{
	{1, 1.00}, {3, 0.75}, {5, 0.50}, {7, 0.14}, {9, 0.05}, {11, 0.03},
}

func init() {
	for i := 0; i < waveTableSize; i++ {
		phase := 2 * math.Pi * float64(i) / float64(waveTableSize)
		sineTable[i] = float32(math.Sin(phase))

		var s, c float64
		for _, h := range stringsHarmonics {
			s += h.amp * math.Sin(phase*float64(h.n))
		}
		for _, h := range clarinetHarmonics {
			c += h.amp * math.Sin(phase*float64(h.n))
		}
		stringsTable[i] = float32(s)
		clarinetTable[i] = float32(c)
	}

	normalizeTable(stringsTable[:])
	normalizeTable(clarinetTable[:])
}

// normalizeTable rescales a table so its peak magnitude is exactly 1.
func normalizeTable(t []float32) {
	var peak float32
	for _, v := range t {
		if v > peak {
			peak = v
		} else if -v > peak {
			peak = -v
		}
	}
	if peak == 0 {
		return
	}
	inv := 1.0 / peak
	for i := range t {
		t[i] *= inv
	}
}
