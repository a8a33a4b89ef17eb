package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/klank/internal/analysis"
	"github.com/olivier-w/klank/internal/media"
	"github.com/olivier-w/klank/internal/player"
	"github.com/olivier-w/klank/internal/ui"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: klank <audiofile>\nsupported formats: %s\n", media.SupportedExtsList())
		os.Exit(1)
	}
	path := os.Args[1]

	if !media.IsSupportedExt(filepath.Ext(path)) {
		fmt.Fprintf(os.Stderr, "Error: unsupported format %s (supported: %s)\n",
			filepath.Ext(path), media.SupportedExtsList())
		os.Exit(1)
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	meta := player.ReadMetadata(path)

	p, err := player.New(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	controller := analysis.NewController(analysis.NewAnalyzer(player.DecodeSamples), analysis.DefaultTimeout)
	if _, noCache := os.LookupEnv("KLANK_NO_CACHE"); !noCache {
		if dir, err := analysis.DefaultCacheDir(); err == nil {
			if cache, err := analysis.NewCache(dir); err == nil {
				controller.SetCache(cache)
			}
		}
	}

	m := ui.New(p, meta, controller, path)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
