package visualizer

import (
	"math/rand"
	"testing"
)

func TestTickPeakNeverBelowSmoothed(t *testing.T) {
	l := NewLevels(32)
	rng := rand.New(rand.NewSource(1))

	frame := make([]float64, 32)
	for tick := 0; tick < 500; tick++ {
		for i := range frame {
			frame[i] = rng.Float64()
		}
		l.Tick(frame)
		for i := range frame {
			if l.Peak()[i] < l.Smoothed()[i] {
				t.Fatalf("tick %d band %d: peak %v < smoothed %v",
					tick, i, l.Peak()[i], l.Smoothed()[i])
			}
		}
	}
}

func TestTickPeakReachesAndHolds(t *testing.T) {
	l := NewLevels(1)

	// Raw magnitude jumps from 0 to 1 and stays there.
	up := []float64{1.0}
	for i := 0; i < 15; i++ {
		l.Tick(up)
	}
	if l.Peak()[0] < 0.9 {
		t.Fatalf("peak = %v after 15 ticks at full magnitude, want >= 0.9", l.Peak()[0])
	}

	// Drop to silence: the peak must freeze for the hold window.
	// The hold counter was set to peakHoldTicks on the last rising tick, so
	// the peak stays frozen for exactly that many falling ticks.
	down := []float64{0.0}
	l.Tick(down) // falling tick 1 of peakHoldTicks
	held := l.Peak()[0]
	for i := 0; i < peakHoldTicks-1; i++ {
		l.Tick(down)
		if l.Peak()[0] != held {
			t.Fatalf("peak moved to %v during hold window (tick %d), want frozen at %v",
				l.Peak()[0], i, held)
		}
	}

	// Hold expired: now it decays by peakFall per tick.
	l.Tick(down)
	if want := held - peakFall; l.Peak()[0] != want {
		t.Fatalf("peak = %v after hold expiry, want %v", l.Peak()[0], want)
	}
}

func TestTickDecaysToFloor(t *testing.T) {
	l := NewLevels(1)
	l.Tick([]float64{1.0})

	down := []float64{0.0}
	for i := 0; i < 500; i++ {
		l.Tick(down)
	}
	if l.Peak()[0] < 0 || l.Peak()[0] > 1e-6 {
		t.Fatalf("peak = %v after long decay, want 0", l.Peak()[0])
	}
	if l.Smoothed()[0] < 0 || l.Smoothed()[0] > 1e-6 {
		t.Fatalf("smoothed = %v after long decay, want 0", l.Smoothed()[0])
	}
}

func TestResetClearsState(t *testing.T) {
	l := NewLevels(4)
	l.Tick([]float64{1, 1, 1, 1})

	l.Reset(4)
	for i := 0; i < 4; i++ {
		if l.Smoothed()[i] != 0 || l.Peak()[i] != 0 {
			t.Fatalf("band %d not zeroed after Reset: smoothed %v peak %v",
				i, l.Smoothed()[i], l.Peak()[i])
		}
	}
}

func TestTickReallocatesOnBandCountChange(t *testing.T) {
	l := NewLevels(4)
	l.Tick([]float64{1, 1, 1, 1})

	l.Tick(make([]float64, 8))
	if l.BandCount() != 8 {
		t.Fatalf("BandCount() = %d, want 8", l.BandCount())
	}
	for i := 0; i < 8; i++ {
		if l.Peak()[i] != 0 {
			t.Fatalf("stale peak %v leaked into band %d after band count change", l.Peak()[i], i)
		}
	}
}
