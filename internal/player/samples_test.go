package player

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeWAV writes interleaved 16-bit samples to a temp WAV file.
func writeWAV(t *testing.T, rate, channels int, data []int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating wav: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("writing wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("closing wav: %v", err)
	}
	return path
}

func TestDecodeSamplesMixesStereoToMono(t *testing.T) {
	// Interleaved L/R pairs; the mono mix is their average.
	path := writeWAV(t, 44100, 2, []int{1000, 3000, -2000, -4000, 32767, 32767})

	samples, rate, err := DecodeSamples(context.Background(), path)
	if err != nil {
		t.Fatalf("DecodeSamples() error = %v", err)
	}
	if rate != 44100 {
		t.Fatalf("rate = %d, want 44100", rate)
	}
	want := []float64{2000.0 / 32768, -3000.0 / 32768, 32767.0 / 32768}
	if len(samples) != len(want) {
		t.Fatalf("len(samples) = %d, want %d", len(samples), len(want))
	}
	for i, w := range want {
		if math.Abs(samples[i]-w) > 1e-9 {
			t.Fatalf("samples[%d] = %v, want %v", i, samples[i], w)
		}
	}
}

func TestDecodeSamplesMonoPassThrough(t *testing.T) {
	path := writeWAV(t, 22050, 1, []int{16384, -16384})

	samples, rate, err := DecodeSamples(context.Background(), path)
	if err != nil {
		t.Fatalf("DecodeSamples() error = %v", err)
	}
	if rate != 22050 {
		t.Fatalf("rate = %d, want 22050", rate)
	}
	if len(samples) != 2 {
		t.Fatalf("len(samples) = %d, want 2", len(samples))
	}
	if math.Abs(samples[0]-0.5) > 1e-9 || math.Abs(samples[1]+0.5) > 1e-9 {
		t.Fatalf("samples = %v, want [0.5, -0.5]", samples)
	}
}

func TestDecodeSamplesCancelled(t *testing.T) {
	path := writeWAV(t, 44100, 2, make([]int, 44100*2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := DecodeSamples(ctx, path); err == nil {
		t.Fatal("DecodeSamples() error = nil with cancelled context, want error")
	}
}

func TestDecodeSamplesUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if _, _, err := DecodeSamples(context.Background(), path); err == nil {
		t.Fatal("DecodeSamples() error = nil for unsupported format, want error")
	}
}
