package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/klank/internal/analysis"
)

// frameInterval drives the visualizer at roughly 30 FPS.
const frameInterval = 33 * time.Millisecond

type frameMsg time.Time
type playbackEndedMsg struct{}
type analysisMsg analysis.Event

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func waitForAnalysis(events <-chan analysis.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return analysisMsg(ev)
	}
}
