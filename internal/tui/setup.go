package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/ipcsim/internal/config"
	"github.com/theirongolddev/ipcsim/internal/model"
	"github.com/theirongolddev/ipcsim/internal/tui/theme"
)

// setupValues receives the first-run form answers.
type setupValues struct {
	preset   string
	theme    string
	dataFile string
}

func newSetupForm(observations int, dataFile string, vals *setupValues) *huh.Form {
	vals.preset = "default"
	vals.theme = theme.Active.Name
	vals.dataFile = dataFile

	presetOpts := make([]huh.Option[string], 0, len(config.Presets))
	for _, name := range config.PresetNames() {
		p := config.Presets[name]
		label := fmt.Sprintf("%-9s %6d trials, %2d months  %s", p.Name, p.Trials, p.Periods, p.Description)
		presetOpts = append(presetOpts, huh.NewOption(label, p.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to ipcsim").
				Description(fmt.Sprintf("Loaded %d observations from %s.\nPick defaults for future runs.", observations, dataFile)),
			huh.NewSelect[string]().
				Title("Simulation size").
				Options(presetOpts...).
				Value(&vals.preset),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.theme),
			huh.NewInput().
				Title("Index data file").
				Description("Converter JSON output, or a directory of them").
				Value(&vals.dataFile).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, err := os.Stat(strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("not found: %s", s)
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula()).WithShowHelp(true)
}

// saveSetupConfig writes the form answers and returns the params for the
// follow-up run.
func (a *App) saveSetupConfig() (model.Params, error) {
	cfg := loadConfigOrDefault()
	params := a.params

	if p, ok := config.LookupPreset(a.setupVals.preset); ok {
		p.Apply(&cfg)
		params.Trials = p.Trials
		params.Periods = p.Periods
	}
	if _, ok := theme.Lookup(a.setupVals.theme); ok {
		cfg.Appearance.Theme = a.setupVals.theme
		theme.SetActive(a.setupVals.theme)
	}
	if df := strings.TrimSpace(a.setupVals.dataFile); df != "" {
		cfg.General.DataFile = df
	}

	return params, config.Save(cfg)
}
