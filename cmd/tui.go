package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ipcsim/internal/config"
	"github.com/theirongolddev/ipcsim/internal/tui"
	"github.com/theirongolddev/ipcsim/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)

	dataFile, err := resolveDataFile(cfg)
	if err != nil {
		return err
	}
	flagQuiet = true
	st, err := loadData(dataFile)
	if err != nil {
		return err
	}

	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Options{
		Store:     st,
		DataFile:  dataFile,
		Params:    paramsFromConfig(cfg),
		Workers:   cfg.Simulation.Workers,
		UseCache:  cacheEnabled(cfg),
		CachePath: cachePath(cfg),
		NeedSetup: !config.Exists(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
