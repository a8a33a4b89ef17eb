package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/klank/internal/analysis"
	"github.com/olivier-w/klank/internal/player"
	"github.com/olivier-w/klank/internal/util"
	"github.com/olivier-w/klank/internal/visualizer"
)

// playback is the slice of player behavior the model needs. *player.Player
// satisfies it; tests substitute a fake.
type playback interface {
	Position() time.Duration
	Duration() time.Duration
	TogglePause()
	Paused() bool
	Restart()
	Seek(delta time.Duration)
	Volume() float64
	AdjustVolume(delta float64)
	Done() <-chan struct{}
	Close()
}

// Model is the Bubbletea model for the klank TUI.
type Model struct {
	player   playback
	metadata player.Metadata
	path     string

	controller *analysis.Controller
	table      *analysis.Table
	levels     *visualizer.Levels
	styles     []visualizer.Style
	styleIdx   int
	analyzing  bool
	vizFailed  bool
	spinner    spinner.Model

	elapsed  time.Duration
	duration time.Duration
	volume   float64
	paused   bool
	width    int
	height   int
	quitting bool
}

// New creates a Model that plays path through p and runs analysis through
// controller. Analysis starts from Init.
func New(p *player.Player, meta player.Metadata, controller *analysis.Controller, path string) Model {
	return newModel(p, meta, controller, path)
}

func newModel(p playback, meta player.Metadata, controller *analysis.Controller, path string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	return Model{
		player:     p,
		metadata:   meta,
		path:       path,
		controller: controller,
		levels:     visualizer.NewLevels(analysis.Bands),
		styles:     visualizer.Styles(),
		spinner:    s,
		duration:   p.Duration(),
		volume:     p.Volume(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		frameCmd(),
		checkDone(m.player),
		m.spinner.Tick,
		m.startAnalysis(),
		waitForAnalysis(m.controller.Events()),
		tea.SetWindowTitle(windowTitle(m.metadata.Title, false)),
	)
}

func (m Model) startAnalysis() tea.Cmd {
	return func() tea.Msg {
		m.controller.Start(m.path)
		return nil
	}
}

func checkDone(p playback) tea.Cmd {
	return func() tea.Msg {
		<-p.Done()
		return playbackEndedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isQuit(msg) {
			m.quitting = true
			m.controller.Stop()
			m.player.Close()
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
		switch msg.String() {
		case " ":
			m.player.TogglePause()
			m.paused = m.player.Paused()
			return m, tea.SetWindowTitle(windowTitle(m.metadata.Title, m.paused))
		case "left", "h":
			m.player.Seek(-5 * time.Second)
		case "right", "l":
			m.player.Seek(5 * time.Second)
		case "up", "k":
			m.player.AdjustVolume(0.05)
			m.volume = m.player.Volume()
		case "down", "j":
			m.player.AdjustVolume(-0.05)
			m.volume = m.player.Volume()
		case "r":
			m.player.Restart()
			m.paused = false
			return m, checkDone(m.player)
		case "v":
			m.styleIdx = (m.styleIdx + 1) % len(m.styles)
		case "V":
			m.styleIdx = (m.styleIdx + len(m.styles) - 1) % len(m.styles)
		}
		return m, nil

	case frameMsg:
		m.elapsed = m.player.Position()
		m.volume = m.player.Volume()
		m.paused = m.player.Paused()
		if m.table != nil {
			idx := m.table.FrameIndexAt(m.elapsed.Milliseconds())
			m.levels.Tick(m.table.Frame(idx))
		}
		return m, frameCmd()

	case analysisMsg:
		switch msg.Kind {
		case analysis.EventStarted:
			m.analyzing = true
			m.vizFailed = false
			m.table = nil
			m.levels.Reset(analysis.Bands)
			return m, tea.Batch(waitForAnalysis(m.controller.Events()), m.spinner.Tick)
		case analysis.EventDone:
			m.analyzing = false
			m.table = msg.Table
			m.vizFailed = msg.Table == nil
			m.levels.Reset(analysis.Bands)
			return m, waitForAnalysis(m.controller.Events())
		}
		return m, nil

	case spinner.TickMsg:
		if !m.analyzing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case playbackEndedMsg:
		m.elapsed = m.duration
		m.quitting = true
		m.controller.Stop()
		m.player.Close()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// AnalysisReady reports whether a magnitude table is loaded, the "analysis
// ready" observable the host shell keys its loading state on.
func (m Model) AnalysisReady() bool {
	return m.table != nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 30 {
		w = 50
	}

	header := headerStyle.Render("klank")
	title := titleStyle.Render(m.metadata.Title)

	subtitle := ""
	if m.metadata.Artist != "" && m.metadata.Album != "" {
		subtitle = artistStyle.Render(fmt.Sprintf("%s - %s", m.metadata.Artist, m.metadata.Album))
	} else if m.metadata.Artist != "" {
		subtitle = artistStyle.Render(m.metadata.Artist)
	} else if m.metadata.Album != "" {
		subtitle = artistStyle.Render(m.metadata.Album)
	}

	viz := m.renderViz(w)

	elapsedStr := timeStyle.Render(util.FormatDuration(m.elapsed))
	durationStr := timeStyle.Render(util.FormatDuration(m.duration))
	barWidth := w - len(util.FormatDuration(m.elapsed)) - len(util.FormatDuration(m.duration)) - 6
	if barWidth < 10 {
		barWidth = 10
	}
	bar := renderProgressBar(m.elapsed.Seconds(), m.duration.Seconds(), barWidth)
	progressLine := fmt.Sprintf("%s %s %s", elapsedStr, bar, durationStr)

	statusIcon := "▶"
	statusText := "playing"
	if m.paused {
		statusIcon = "❚❚"
		statusText = "paused"
	}
	volStr := renderVolumePercent(m.volume)

	leftText := fmt.Sprintf("%s  %s", statusIcon, statusText)
	statusLeft := statusStyle.Render(leftText)
	statusRight := statusStyle.Render(volStr)
	gap := w - len(leftText) - len(volStr) - 4
	if gap < 2 {
		gap = 2
	}
	statusLine := fmt.Sprintf("%s%s%s", statusLeft, strings.Repeat(" ", gap), statusRight)

	help := helpStyle.Render(helpText())

	lines := "\n"
	lines += "  " + header + "\n"
	lines += "\n"
	lines += "  " + title + "\n"
	if subtitle != "" {
		lines += "  " + subtitle + "\n"
	}
	lines += "\n"
	lines += viz
	lines += "\n"
	lines += "  " + progressLine + "\n"
	lines += "\n"
	lines += "  " + statusLine + "\n"
	lines += "\n"
	lines += "  " + help + "\n"

	return lines
}

// renderViz draws the visualizer panel: spinner while analyzing, a neutral
// notice on failure, otherwise the active style.
func (m Model) renderViz(w int) string {
	vizHeight := m.height - 13
	if vizHeight < 4 {
		vizHeight = 4
	}
	if vizHeight > 16 {
		vizHeight = 16
	}

	if m.analyzing {
		pad := strings.Repeat("\n", vizHeight/2)
		return pad + "  " + m.spinner.View() + statusStyle.Render(" analyzing audio…") +
			strings.Repeat("\n", vizHeight-vizHeight/2)
	}
	if m.vizFailed || m.table == nil {
		pad := strings.Repeat("\n", vizHeight/2)
		return pad + "  " + statusStyle.Render("visualizer unavailable") +
			strings.Repeat("\n", vizHeight-vizHeight/2)
	}

	style := m.styles[m.styleIdx]
	panel := style.Render(m.levels.Smoothed(), m.levels.Peak(), w-4, vizHeight)

	var out strings.Builder
	for _, line := range strings.Split(panel, "\n") {
		out.WriteString("  ")
		out.WriteString(line)
		out.WriteByte('\n')
	}
	out.WriteString("  ")
	out.WriteString(vizLabelStyle.Render(style.Name()))
	out.WriteByte('\n')
	return out.String()
}

func windowTitle(title string, paused bool) string {
	if paused {
		return "⏸ " + title + " — klank"
	}
	return "▶ " + title + " — klank"
}
