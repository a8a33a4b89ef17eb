package analysis

import "testing"

func makeTable(times []float64) *Table {
	mags := make([][]float64, len(times))
	for i := range mags {
		mags[i] = make([]float64, Bands)
	}
	return &Table{Magnitudes: mags, Times: times}
}

func TestFrameIndexAt(t *testing.T) {
	table := makeTable([]float64{0, 0.5, 1.0, 1.5, 2.0})

	tests := []struct {
		ms   int64
		want int
	}{
		{-100, 0},
		{0, 0},
		{400, 1},  // left-biased: first index with time >= 0.4
		{500, 1},  // exact hit
		{1250, 3},
		{2000, 4},
		{99999, 4}, // clamped past the end
	}
	for _, tt := range tests {
		if got := table.FrameIndexAt(tt.ms); got != tt.want {
			t.Errorf("FrameIndexAt(%d) = %d, want %d", tt.ms, got, tt.want)
		}
	}
}

func TestFrameIndexAtMonotonic(t *testing.T) {
	table := makeTable([]float64{0, 0.1, 0.25, 0.6, 0.61, 1.4})

	prev := -1
	for ms := int64(0); ms <= 2000; ms += 7 {
		idx := table.FrameIndexAt(ms)
		if idx < prev {
			t.Fatalf("FrameIndexAt(%d) = %d went backwards from %d", ms, idx, prev)
		}
		prev = idx
	}
}

func TestFrameIndexAtEmptyTable(t *testing.T) {
	var nilTable *Table
	if got := nilTable.FrameIndexAt(1234); got != 0 {
		t.Fatalf("nil table FrameIndexAt() = %d, want 0", got)
	}
	empty := &Table{}
	if got := empty.FrameIndexAt(1234); got != 0 {
		t.Fatalf("empty table FrameIndexAt() = %d, want 0", got)
	}
}

func TestFrameClamps(t *testing.T) {
	table := makeTable([]float64{0, 0.5})
	table.Magnitudes[1][0] = 0.7

	if got := table.Frame(-3); got == nil || got[0] != 0 {
		t.Fatalf("Frame(-3) = %v, want first frame", got)
	}
	if got := table.Frame(99); got == nil || got[0] != 0.7 {
		t.Fatalf("Frame(99) = %v, want last frame", got)
	}
	var nilTable *Table
	if got := nilTable.Frame(0); got != nil {
		t.Fatalf("nil table Frame(0) = %v, want nil", got)
	}
}

func TestBandCount(t *testing.T) {
	if got := makeTable([]float64{0, 0.5}).BandCount(); got != Bands {
		t.Fatalf("BandCount() = %d, want %d", got, Bands)
	}
	var nilTable *Table
	if got := nilTable.BandCount(); got != 0 {
		t.Fatalf("nil table BandCount() = %d, want 0", got)
	}
}
