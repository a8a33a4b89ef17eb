package visualizer

const (
	// smoothingAlpha weights the previous smoothed value; higher means more
	// inertia between frames.
	smoothingAlpha = 0.3

	// peakHoldTicks freezes a band's peak marker for ~0.5s at 30 FPS
	// before it starts falling at peakFall per tick.
	peakHoldTicks = 15
	peakFall      = 0.02
)

// Levels is the per-band animation state: exponentially smoothed magnitudes
// plus peak markers with hold-then-decay. One Tick per animation frame.
type Levels struct {
	smoothed []float64
	peak     []float64
	hold     []int
}

// NewLevels creates zeroed level state for the given band count.
func NewLevels(bands int) *Levels {
	l := &Levels{}
	l.Reset(bands)
	return l
}

// Reset reallocates all state to zero. Must be called whenever a new
// magnitude table arrives so nothing leaks between tracks.
func (l *Levels) Reset(bands int) {
	if bands < 0 {
		bands = 0
	}
	l.smoothed = make([]float64, bands)
	l.peak = make([]float64, bands)
	l.hold = make([]int, bands)
}

// Tick advances the animation state one frame using the raw magnitudes in
// frame. After Tick, peak[i] >= smoothed[i] holds for every band.
func (l *Levels) Tick(frame []float64) {
	if len(frame) != len(l.smoothed) {
		l.Reset(len(frame))
	}
	for i, m := range frame {
		s := smoothingAlpha*l.smoothed[i] + (1-smoothingAlpha)*m
		l.smoothed[i] = s

		switch {
		case s >= l.peak[i]:
			l.peak[i] = s
			l.hold[i] = peakHoldTicks
		case l.hold[i] > 0:
			l.hold[i]--
		default:
			p := l.peak[i] - peakFall
			if p < s {
				p = s
			}
			if p < 0 {
				p = 0
			}
			l.peak[i] = p
		}
	}
}

// Smoothed returns the smoothed magnitude per band. The slice is live state;
// callers must not modify it.
func (l *Levels) Smoothed() []float64 { return l.smoothed }

// Peak returns the peak marker per band. The slice is live state; callers
// must not modify it.
func (l *Levels) Peak() []float64 { return l.peak }

// BandCount returns the number of bands being tracked.
func (l *Levels) BandCount() int { return len(l.smoothed) }
