package analysis

import "sort"

// Table is one complete analysis result: per-frame band magnitudes in [0,1]
// and the playback timestamp each frame represents. A Table is immutable once
// built; new analyses replace it wholesale.
type Table struct {
	Magnitudes [][]float64
	Times      []float64
}

// Len returns the number of analysis frames.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Times)
}

// BandCount returns the number of bands per frame, 0 for an empty table.
func (t *Table) BandCount() int {
	if t == nil || len(t.Magnitudes) == 0 {
		return 0
	}
	return len(t.Magnitudes[0])
}

// FrameIndexAt maps a playback position in milliseconds to the nearest
// analysis frame index (left-biased, clamped to the table range).
// A nil or empty table maps everything to 0.
func (t *Table) FrameIndexAt(ms int64) int {
	if t.Len() == 0 {
		return 0
	}
	sec := float64(ms) / 1000.0
	idx := sort.SearchFloat64s(t.Times, sec)
	if idx >= len(t.Times) {
		idx = len(t.Times) - 1
	}
	return idx
}

// Frame returns the magnitude frame at index i, clamped to the table range.
// Returns nil for an empty table.
func (t *Table) Frame(i int) []float64 {
	if t.Len() == 0 {
		return nil
	}
	if i < 0 {
		i = 0
	}
	if i >= len(t.Magnitudes) {
		i = len(t.Magnitudes) - 1
	}
	return t.Magnitudes[i]
}
