package player

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// countingReader wraps an io.Reader and tracks bytes read.
type countingReader struct {
	reader io.ReadSeeker
	pos    int64
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

func (cr *countingReader) SetPos(pos int64) {
	cr.mu.Lock()
	cr.pos = pos
	cr.mu.Unlock()
}

// Player plays one decoded audio file through the system output. The oto
// context is created from the track's native format, so there is no
// resampling on the playback path.
type Player struct {
	file      *os.File
	decoder   audioDecoder
	counter   *countingReader
	otoCtx    *oto.Context
	otoPlayer *oto.Player

	duration    time.Duration
	bytesPerSec int
	frameSize   int

	volume float64
	paused bool
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

// initOto creates the process-wide audio context on first use. oto permits
// exactly one context per process, so the first track's format wins; klank
// plays one file per invocation, which keeps that harmless.
func initOto(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// New creates a Player for the given audio file and starts playback.
func New(path string) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	dec, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	ctx, err := initOto(dec.SampleRate(), dec.ChannelCount())
	if err != nil {
		f.Close()
		return nil, err
	}

	bytesPerSec := dec.SampleRate() * dec.ChannelCount() * 2
	dur := time.Duration(float64(dec.Length()) / float64(bytesPerSec) * float64(time.Second))

	cr := &countingReader{reader: dec}

	p := &Player{
		file:        f,
		decoder:     dec,
		counter:     cr,
		otoCtx:      ctx,
		duration:    dur,
		bytesPerSec: bytesPerSec,
		frameSize:   dec.ChannelCount() * 2,
		volume:      0.8,
		done:        make(chan struct{}),
	}

	p.otoPlayer = ctx.NewPlayer(cr)
	p.otoPlayer.SetVolume(p.volume)
	p.otoPlayer.Play()

	go p.monitor(p.done)

	return p, nil
}

// monitor polls until playback finishes or the player is closed. It owns
// the done channel it was started with and exits if Restart swaps it out.
func (p *Player) monitor(done chan struct{}) {
	for {
		p.mu.Lock()
		if p.closed || p.done != done {
			p.mu.Unlock()
			return
		}
		pos := p.counter.Pos()
		total := p.decoder.Length()
		paused := p.paused
		p.mu.Unlock()

		if !paused && pos >= total {
			close(done)
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// Done returns a channel that closes when playback finishes.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Restart seeks to the beginning and resumes playback.
// This resets the done channel so Done() can be used again.
func (p *Player) Restart() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.decoder.Seek(0, io.SeekStart)
	p.counter.SetPos(0)

	p.otoPlayer.Pause()
	p.otoPlayer = p.otoCtx.NewPlayer(p.counter)
	p.otoPlayer.SetVolume(p.volume)

	p.done = make(chan struct{})
	p.paused = false
	p.otoPlayer.Play()

	go p.monitor(p.done)
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused {
		p.otoPlayer.Play()
		p.paused = false
	} else {
		p.otoPlayer.Pause()
		p.paused = true
	}
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	pos := p.counter.Pos()
	secs := float64(pos) / float64(p.bytesPerSec)
	return time.Duration(secs * float64(time.Second))
}

// Duration returns the total duration of the track.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// Seek moves playback by the given delta from current position.
func (p *Player) Seek(delta time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	newPos := p.counter.Pos() + int64(delta.Seconds()*float64(p.bytesPerSec))
	newPos = clampOffset(newPos, p.decoder.Length())
	newPos -= newPos % int64(p.frameSize)

	if _, err := p.decoder.Seek(newPos, io.SeekStart); err != nil {
		return
	}
	p.counter.SetPos(newPos)

	// Recreate the oto player to flush its buffered audio.
	wasPaused := p.paused
	p.otoPlayer.Pause()
	p.otoPlayer = p.otoCtx.NewPlayer(p.counter)
	p.otoPlayer.SetVolume(p.volume)
	if !wasPaused {
		p.otoPlayer.Play()
	}
}

// Volume returns current volume (0.0 to 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets volume (clamped to 0.0 - 1.0).
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.volume = v
	p.otoPlayer.SetVolume(v)
}

// AdjustVolume adjusts volume by delta.
func (p *Player) AdjustVolume(delta float64) {
	p.mu.Lock()
	v := p.volume + delta
	p.mu.Unlock()
	p.SetVolume(v)
}

// Close releases all resources.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	p.otoPlayer.Pause()
	p.file.Close()
}
