package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/klank/internal/analysis"
	"github.com/olivier-w/klank/internal/player"
)

type fakePlayer struct {
	position time.Duration
	duration time.Duration
	paused   bool
	volume   float64
	done     chan struct{}
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{duration: 3 * time.Minute, volume: 0.8, done: make(chan struct{})}
}

func (f *fakePlayer) Position() time.Duration  { return f.position }
func (f *fakePlayer) Duration() time.Duration  { return f.duration }
func (f *fakePlayer) TogglePause()             { f.paused = !f.paused }
func (f *fakePlayer) Paused() bool             { return f.paused }
func (f *fakePlayer) Restart()                 { f.position = 0; f.paused = false }
func (f *fakePlayer) Seek(d time.Duration)     { f.position += d }
func (f *fakePlayer) Volume() float64          { return f.volume }
func (f *fakePlayer) AdjustVolume(d float64)   { f.volume += d }
func (f *fakePlayer) Done() <-chan struct{}    { return f.done }
func (f *fakePlayer) Close()                   {}

func testModel() Model {
	ctrl := analysis.NewController(analysis.NewAnalyzer(nil), time.Second)
	return newModel(newFakePlayer(), player.Metadata{Title: "test"}, ctrl, "test.mp3")
}

func fullTable(frames int) *analysis.Table {
	mags := make([][]float64, frames)
	times := make([]float64, frames)
	for i := range mags {
		row := make([]float64, analysis.Bands)
		for b := range row {
			row[b] = 1.0
		}
		mags[i] = row
		times[i] = float64(i) * 0.5
	}
	return &analysis.Table{Magnitudes: mags, Times: times}
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestStyleCycleWrapsAfterThree(t *testing.T) {
	m := testModel()
	if m.styleIdx != 0 {
		t.Fatalf("initial styleIdx = %d, want 0", m.styleIdx)
	}

	for i := 1; i <= 3; i++ {
		next, _ := m.Update(keyMsg('v'))
		m = next.(Model)
		want := i % 3
		if m.styleIdx != want {
			t.Fatalf("after %d presses styleIdx = %d, want %d", i, m.styleIdx, want)
		}
	}
}

func TestRestartKeyRewindsAndResumes(t *testing.T) {
	fp := newFakePlayer()
	fp.position = time.Minute
	fp.paused = true
	ctrl := analysis.NewController(analysis.NewAnalyzer(nil), time.Second)
	m := newModel(fp, player.Metadata{Title: "test"}, ctrl, "test.mp3")

	next, cmd := m.Update(keyMsg('r'))
	m = next.(Model)

	if fp.position != 0 {
		t.Fatalf("position after restart = %v, want 0", fp.position)
	}
	if fp.paused {
		t.Fatal("player still paused after restart")
	}
	if m.paused {
		t.Fatal("model still shows paused after restart")
	}
	if cmd == nil {
		t.Fatal("restart returned no command, want done watcher")
	}
}

func TestStyleCycleBackwardsWraps(t *testing.T) {
	m := testModel()
	next, _ := m.Update(keyMsg('V'))
	m = next.(Model)
	if m.styleIdx != 2 {
		t.Fatalf("styleIdx = %d after backwards cycle from 0, want 2", m.styleIdx)
	}
}

func TestAnalysisLifecycle(t *testing.T) {
	m := testModel()

	next, _ := m.Update(analysisMsg{Kind: analysis.EventStarted, Seq: 1})
	m = next.(Model)
	if !m.analyzing || m.AnalysisReady() {
		t.Fatalf("after started: analyzing = %v ready = %v, want true/false", m.analyzing, m.AnalysisReady())
	}

	next, _ = m.Update(analysisMsg{Kind: analysis.EventDone, Seq: 1, Table: fullTable(10)})
	m = next.(Model)
	if m.analyzing || !m.AnalysisReady() {
		t.Fatalf("after done: analyzing = %v ready = %v, want false/true", m.analyzing, m.AnalysisReady())
	}
}

func TestAnalysisFailureShowsNeutralState(t *testing.T) {
	m := testModel()

	next, _ := m.Update(analysisMsg{Kind: analysis.EventStarted, Seq: 1})
	m = next.(Model)
	next, _ = m.Update(analysisMsg{Kind: analysis.EventDone, Seq: 1, Table: nil})
	m = next.(Model)

	if m.AnalysisReady() {
		t.Fatal("AnalysisReady() = true after failed analysis, want false")
	}
	if view := m.View(); !strings.Contains(view, "visualizer unavailable") {
		t.Fatal("View() missing the neutral failure notice")
	}
}

func TestFrameTickAdvancesLevels(t *testing.T) {
	m := testModel()

	next, _ := m.Update(analysisMsg{Kind: analysis.EventDone, Seq: 1, Table: fullTable(10)})
	m = next.(Model)

	next, _ = m.Update(frameMsg(time.Now()))
	m = next.(Model)

	// One tick against full-scale magnitudes: smoothed = 0.7, peak follows.
	if got := m.levels.Smoothed()[0]; got < 0.69 || got > 0.71 {
		t.Fatalf("smoothed[0] = %v after one tick at full magnitude, want ~0.7", got)
	}
	if m.levels.Peak()[0] < m.levels.Smoothed()[0] {
		t.Fatalf("peak %v below smoothed %v", m.levels.Peak()[0], m.levels.Smoothed()[0])
	}
}

func TestNewTableResetsLevels(t *testing.T) {
	m := testModel()

	next, _ := m.Update(analysisMsg{Kind: analysis.EventDone, Seq: 1, Table: fullTable(10)})
	m = next.(Model)
	next, _ = m.Update(frameMsg(time.Now()))
	m = next.(Model)

	// A new track's analysis must not inherit the old levels.
	next, _ = m.Update(analysisMsg{Kind: analysis.EventStarted, Seq: 2})
	m = next.(Model)
	if m.levels.Smoothed()[0] != 0 || m.levels.Peak()[0] != 0 {
		t.Fatalf("levels not reset on new analysis: smoothed %v peak %v",
			m.levels.Smoothed()[0], m.levels.Peak()[0])
	}
}
