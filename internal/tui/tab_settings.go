package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ipcsim/internal/cli"
	"github.com/theirongolddev/ipcsim/internal/config"
	"github.com/theirongolddev/ipcsim/internal/tui/components"
	"github.com/theirongolddev/ipcsim/internal/tui/theme"
)

const (
	settingsFieldTrials = iota
	settingsFieldPeriods
	settingsFieldSeed
	settingsFieldFloor
	settingsFieldTheme
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40
	return ti
}

func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	cfg := loadConfigOrDefault()
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldTrials:
		ti.Placeholder = "1000"
		ti.SetValue(strconv.Itoa(a.params.Trials))
	case settingsFieldPeriods:
		ti.Placeholder = "12 (months ahead)"
		ti.SetValue(strconv.Itoa(a.params.Periods))
	case settingsFieldSeed:
		ti.Placeholder = "0 picks a new seed every run"
		ti.SetValue(strconv.FormatUint(a.params.Seed, 10))
	case settingsFieldFloor:
		ti.Placeholder = "-5 (percent, leave empty for none)"
		if a.params.ChangeFloor != nil {
			ti.SetValue(strconv.FormatFloat(*a.params.ChangeFloor, 'f', -1, 64))
		}
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.Appearance.Theme)
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		rerun := a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		if rerun && a.settings.saveErr == nil {
			return a.rerun(a.params, false)
		}
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave applies the edited field to the session and the config file.
// It reports whether the projection must be re-run.
func (a *App) settingsSave() bool {
	cfg := loadConfigOrDefault()
	val := strings.TrimSpace(a.settings.input.Value())
	rerun := false

	switch a.settings.cursor {
	case settingsFieldTrials:
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			a.settings.saveErr = fmt.Errorf("trials must be a positive integer")
			return false
		}
		cfg.Simulation.Trials = n
		a.params.Trials = n
		rerun = true
	case settingsFieldPeriods:
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			a.settings.saveErr = fmt.Errorf("periods must be a positive integer")
			return false
		}
		cfg.Simulation.Periods = n
		a.params.Periods = n
		rerun = true
	case settingsFieldSeed:
		seed, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("seed must be an unsigned integer")
			return false
		}
		cfg.Simulation.Seed = seed
		if seed != 0 {
			a.params.Seed = seed
		}
		rerun = true
	case settingsFieldFloor:
		if val == "" {
			cfg.Simulation.ChangeFloor = nil
		} else {
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < -100 {
				a.settings.saveErr = fmt.Errorf("floor must be a number >= -100")
				return false
			}
			cfg.Simulation.ChangeFloor = &f
		}
		a.params.ChangeFloor = cfg.Simulation.ChangeFloor
		rerun = true
	case settingsFieldTheme:
		if _, ok := theme.Lookup(val); !ok {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return false
		}
		cfg.Appearance.Theme = val
		theme.SetActive(val)
		a.spinner.Style = a.spinner.Style.Foreground(theme.Active.Accent).Background(theme.Active.Surface)
	}

	a.settings.saveErr = config.Save(cfg)
	return rerun
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := loadConfigOrDefault()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	floor := "(none)"
	if a.params.ChangeFloor != nil {
		floor = cli.FormatChange(*a.params.ChangeFloor)
	}
	seed := strconv.FormatUint(a.params.Seed, 10)
	if cfg.Simulation.Seed == 0 {
		seed += " (new each run)"
	}

	fields := []struct{ label, value string }{
		{"Trials", cli.FormatNumber(int64(a.params.Trials))},
		{"Months ahead", strconv.Itoa(a.params.Periods)},
		{"Seed", seed},
		{"Change floor", floor},
		{"Theme", cfg.Appearance.Theme},
	}

	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-16s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-16s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			used := lipgloss.Width(marker) + lipgloss.Width(label) + lipgloss.Width(value)
			if padLen := components.CardInnerWidth(cw) - used; padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-16s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Data file:    ") + valueStyle.Render(a.dataFile) + "\n")
	infoBody.WriteString(labelStyle.Render("Categories:   ") + valueStyle.Render(strconv.Itoa(len(a.st.Categories()))) + "\n")
	infoBody.WriteString(labelStyle.Render("Last run:     ") + valueStyle.Render(cli.FormatDuration(a.elapsed)) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file:  ") + valueStyle.Render(config.Path()))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))
	return b.String()
}
