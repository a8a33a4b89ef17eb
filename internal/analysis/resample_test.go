package analysis

import (
	"math"
	"testing"
)

func TestResampleSameRateIsIdentity(t *testing.T) {
	in := []float64{0.1, -0.2, 0.3}
	out := resample(in, 44100, 44100)
	if &out[0] != &in[0] {
		t.Fatalf("expected same-rate resample to return the input slice")
	}
}

func TestResampleHalvesLength(t *testing.T) {
	in := make([]float64, 44100)
	out := resample(in, 44100, 22050)
	if len(out) != 22050 {
		t.Fatalf("len(out) = %d, want 22050", len(out))
	}
}

func TestResamplePreservesConstantSignal(t *testing.T) {
	in := make([]float64, 1000)
	for i := range in {
		in[i] = 0.5
	}
	for _, toRate := range []int{22050, 8000, 48000} {
		out := resample(in, 44100, toRate)
		for i, v := range out {
			if math.Abs(v-0.5) > 1e-12 {
				t.Fatalf("resample to %d: out[%d] = %v, want 0.5", toRate, i, v)
			}
		}
	}
}

func TestResampleUpInterpolates(t *testing.T) {
	in := []float64{0, 1, 0, 1}
	out := resample(in, 1, 2)
	if len(out) != 8 {
		t.Fatalf("len(out) = %d, want 8", len(out))
	}
	// Midpoints between alternating 0/1 samples interpolate to 0.5.
	if math.Abs(out[1]-0.5) > 1e-12 {
		t.Fatalf("out[1] = %v, want 0.5", out[1])
	}
}
