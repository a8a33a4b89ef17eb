package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// SampleRate is the fixed analysis rate. Decoded audio is resampled to
	// this before the STFT, so band layout is identical for every source.
	SampleRate = 22050

	// Bands is the number of log-spaced frequency bands per frame.
	Bands = 32

	windowSize = 2048
	hopSize    = 512
	binCount   = windowSize/2 + 1

	// dbRange maps [-60 dB, 0 dB] relative to the track peak onto [0, 1].
	dbRange = 60.0

	// magFloor keeps log10 away from -inf; refFloor pins the reference for
	// silent input low enough that silence normalizes to 0.
	magFloor = 1e-10
	refFloor = 1e-6
)

var (
	// ErrDecode reports a source that could not be decoded.
	ErrDecode = errors.New("cannot decode audio source")
	// ErrEmptyInput reports a source too short to yield a single frame.
	ErrEmptyInput = errors.New("audio too short to analyze")
)

// LoadFunc decodes an audio file into mono samples at the file's native
// sample rate. Implementations should honor ctx between decode chunks.
type LoadFunc func(ctx context.Context, path string) ([]float64, int, error)

// Analyzer computes a playback-time-indexed magnitude table from an audio
// file: short-time FFT, log-spaced banding, dB conversion, [0,1]
// normalization. Safe for concurrent Analyze calls; each call carries its
// own scratch buffers so a superseded job can finish dying in peace.
type Analyzer struct {
	load  LoadFunc
	edges []int
}

// workspace holds the per-job FFT state and scratch buffers.
type workspace struct {
	fft    *fourier.FFT
	window []float64
	frame  []float64
	coeffs []complex128
	mags   []float64
}

func newWorkspace() *workspace {
	window := make([]float64, windowSize)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(windowSize-1)))
	}
	return &workspace{
		fft:    fourier.NewFFT(windowSize),
		window: window,
		frame:  make([]float64, windowSize),
		coeffs: make([]complex128, binCount),
		mags:   make([]float64, binCount),
	}
}

// NewAnalyzer creates an Analyzer that obtains samples through load.
func NewAnalyzer(load LoadFunc) *Analyzer {
	return &Analyzer{
		load:  load,
		edges: bandEdges(binCount, Bands),
	}
}

// Analyze decodes path and computes its magnitude table. It checks ctx once
// per hop, so cancellation and timeout are honored at frame granularity.
// All failures come back as errors; no partial table is ever returned.
func (a *Analyzer) Analyze(ctx context.Context, path string) (*Table, error) {
	samples, rate, err := a.load(ctx, path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return a.analyzeSamples(ctx, resample(samples, rate, SampleRate))
}

// analyzeSamples runs the STFT pipeline over mono samples at SampleRate.
func (a *Analyzer) analyzeSamples(ctx context.Context, samples []float64) (*Table, error) {
	if len(samples) < windowSize {
		return nil, ErrEmptyInput
	}
	frames := (len(samples)-windowSize)/hopSize + 1

	ws := newWorkspace()
	magnitudes := make([][]float64, frames)
	times := make([]float64, frames)
	peak := 0.0

	for f := 0; f < frames; f++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		off := f * hopSize
		for i := range ws.frame {
			ws.frame[i] = samples[off+i] * ws.window[i]
		}
		ws.fft.Coefficients(ws.coeffs, ws.frame)
		for i, c := range ws.coeffs {
			ws.mags[i] = cmplx.Abs(c)
		}

		row := make([]float64, Bands)
		for b := 0; b < Bands; b++ {
			start, end := a.edges[b], a.edges[b+1]
			sum := 0.0
			for i := start; i < end; i++ {
				sum += ws.mags[i]
			}
			m := sum / float64(end-start)
			row[b] = m
			if m > peak {
				peak = m
			}
		}
		magnitudes[f] = row
		times[f] = float64(off) / float64(SampleRate)
	}

	// Second pass: dB relative to the track peak, squashed into [0,1].
	ref := math.Log10(math.Max(peak, refFloor))
	for _, row := range magnitudes {
		for b, m := range row {
			db := 20 * (math.Log10(math.Max(m, magFloor)) - ref)
			row[b] = clampUnit((db + dbRange) / dbRange)
		}
	}

	return &Table{Magnitudes: magnitudes, Times: times}, nil
}

// bandEdges partitions bin indexes [0, bins) into logarithmically spaced
// band boundaries. edges has bands+1 entries; every band spans at least one
// bin even where rounding collapses neighboring edges.
func bandEdges(bins, bands int) []int {
	edges := make([]int, bands+1)
	scale := math.Log10(float64(bins)) / float64(bands)
	for i := range edges {
		e := int(math.Round(math.Pow(10, float64(i)*scale)))
		if e > bins {
			e = bins
		}
		edges[i] = e
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			edges[i] = edges[i-1] + 1
		}
	}
	// Degeneracy repair can push the tail past the bin count; walk it back.
	for i := len(edges) - 1; i > 0; i-- {
		if hi := bins - (len(edges) - 1 - i); edges[i] > hi {
			edges[i] = hi
		}
	}
	return edges
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
