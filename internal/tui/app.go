// Package tui provides the interactive Bubble Tea dashboard for ipcsim.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ipcsim/internal/cli"
	"github.com/theirongolddev/ipcsim/internal/model"
	"github.com/theirongolddev/ipcsim/internal/pipeline"
	"github.com/theirongolddev/ipcsim/internal/series"
	"github.com/theirongolddev/ipcsim/internal/store"
	"github.com/theirongolddev/ipcsim/internal/tui/components"
	"github.com/theirongolddev/ipcsim/internal/tui/theme"
)

// ProjectionMsg is sent when a projection run finishes.
type ProjectionMsg struct {
	Projection *model.Projection
	Elapsed    time.Duration
	Cached     bool
	Err        error
}

// ProgressMsg reports categories simulated so far.
type ProgressMsg struct {
	Current int
	Total   int
}

// Options configure a new App.
type Options struct {
	Store    *series.Store
	DataFile string
	Params   model.Params
	Workers  int
	// UseCache enables the result cache for the first run. Re-runs with a
	// fresh seed never use it.
	UseCache bool
	// CachePath overrides the default result cache location.
	CachePath string
	// NeedSetup shows the first-run form once the first projection is in.
	NeedSetup bool
}

// App is the root Bubble Tea model.
type App struct {
	st        *series.Store
	dataFile  string
	params    model.Params
	workers   int
	useCache  bool
	cachePath string

	proj    *model.Projection
	runErr  error
	loaded  bool
	running bool
	elapsed time.Duration
	cached  bool
	runs    int

	width     int
	height    int
	activeTab int
	showHelp  bool

	catState categoriesState
	settings settingsState

	setupForm *huh.Form
	setupVals setupValues
	needSetup bool

	spinner     spinner.Model
	progress    int
	progressMax int
	runSub      chan tea.Msg
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
)

// Tab indexes into components.Tabs.
const (
	tabOverview = iota
	tabCategories
	tabBreakdown
	tabSettings
)

// NewApp creates the dashboard model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		st:        opts.Store,
		dataFile:  opts.DataFile,
		params:    opts.Params,
		workers:   opts.Workers,
		useCache:  opts.UseCache,
		cachePath: opts.CachePath,
		needSetup: opts.NeedSetup,
		running:   true,
		spinner:   sp,
		runSub:    make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		runProjectionCmd(a.st, a.dataFile, a.cachePath, a.params, a.workers, a.useCache, a.runSub),
		a.spinner.Tick,
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForRunMsg(a.runSub)

	case ProjectionMsg:
		a.running = false
		a.loaded = true
		a.runs++
		a.elapsed = msg.Elapsed
		a.cached = msg.Cached
		a.runErr = msg.Err
		if msg.Projection != nil {
			a.proj = msg.Projection
			a.params = msg.Projection.Params
			a.catState.clamp(len(a.categoryNames()))
		}
		if a.needSetup && a.setupForm == nil {
			a.setupForm = newSetupForm(a.st.Len(), a.dataFile, &a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case spinner.TickMsg:
		if a.running {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		if key == "q" {
			return a, tea.Quit
		}
		return a, nil
	}

	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case tabCategories:
		if a.catState.handleKey(key, len(a.categoryNames())) {
			return a, nil
		}
	case tabSettings:
		switch key {
		case "j", "down":
			if a.settings.cursor < settingsFieldCount-1 {
				a.settings.cursor++
			}
			return a, nil
		case "k", "up":
			if a.settings.cursor > 0 {
				a.settings.cursor--
			}
			return a, nil
		case "enter":
			return a.settingsStartEdit()
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		// Re-run with a fresh seed.
		params := a.params
		params.Seed = pipeline.ResolveSeed(0)
		return a.rerun(params, false)
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if len(key) == 1 {
			if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.loaded || a.showHelp || a.setupForm != nil {
		return a, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabCategories {
			a.catState.handleKey("k", len(a.categoryNames()))
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabCategories {
			a.catState.handleKey("j", len(a.categoryNames()))
		}
	case tea.MouseButtonLeft:
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

// rerun starts a new projection unless one is already running.
func (a App) rerun(params model.Params, useCache bool) (tea.Model, tea.Cmd) {
	if a.running {
		return a, nil
	}
	a.running = true
	a.progress, a.progressMax = 0, 0
	return a, tea.Batch(
		runProjectionCmd(a.st, a.dataFile, a.cachePath, params, a.workers, useCache, a.runSub),
		a.spinner.Tick,
	)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		params, err := a.saveSetupConfig()
		a.needSetup = false
		a.setupForm = nil
		if err != nil {
			a.runErr = fmt.Errorf("saving config: %w", err)
			return a, nil
		}
		return a.rerun(params, false)
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

// categoryNames lists the category tab entries: the composite first, then
// every projected category.
func (a App) categoryNames() []string {
	if a.proj == nil {
		return nil
	}
	names := make([]string, 0, len(a.proj.Categories)+1)
	if len(a.proj.Composite) > 0 {
		names = append(names, compositeName)
	}
	for _, c := range a.proj.Categories {
		names = append(names, c.Category)
	}
	return names
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  ipcsim needs at least %d columns.\n",
		a.width, minTerminalWidth)
	h := max(a.height, 5)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ ipcsim"))
	b.WriteString(mutedStyle.Render(" · price index projection"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(mutedStyle.Render(fmt.Sprintf(" Simulating %s trials x %d months",
		cli.FormatNumber(int64(a.params.Trials)), a.params.Periods)))
	if a.progressMax > 0 {
		b.WriteString("\n\n")
		b.WriteString(components.ProgressBar(float64(a.progress)/float64(a.progressMax), 40))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(fmt.Sprintf("%d", a.progress)))
		b.WriteString(mutedStyle.Render(" / "))
		b.WriteString(countStyle.Render(fmt.Sprintf("%d", a.progressMax)))
		b.WriteString(mutedStyle.Render(" categories"))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	bindings := []struct{ key, desc string }{
		{"o c b x", "Jump to tab"},
		{"← → tab", "Previous / next tab"},
		{"j k", "Move through categories and settings"},
		{"g G", "First / last category"},
		{"Enter", "Edit setting"},
		{"r", "Re-run with a new seed"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
			descStyle.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, a.statusInfo(), a.running)

	contentH := a.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	if a.runErr != nil {
		content = components.ContentCard("Error", lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render(a.runErr.Error()), cw)
		content += "\n"
	}
	switch a.activeTab {
	case tabOverview:
		content += a.renderOverviewTab(cw)
	case tabCategories:
		content += a.renderCategoriesTab(cw, contentH)
	case tabBreakdown:
		content += a.renderBreakdownTab(cw)
	case tabSettings:
		content += a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusInfo() string {
	info := fmt.Sprintf("seed %d · %s trials · %dm · %s",
		a.params.Seed, cli.FormatNumber(int64(a.params.Trials)), a.params.Periods,
		cli.FormatDuration(a.elapsed))
	if a.cached {
		info += " (cached)"
	}
	return info
}

// tabAtX returns the tab index at column x, or -1.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}

// runProjectionCmd runs the projection in a goroutine, streaming
// ProgressMsg updates and a final ProjectionMsg through sub.
func runProjectionCmd(st *series.Store, dataFile, cachePath string, params model.Params, workers int, useCache bool, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()
			opts := pipeline.Options{
				Workers: workers,
				// Non-blocking: a dropped update is superseded by the next one.
				Progress: func(current, total int) {
					select {
					case sub <- ProgressMsg{Current: current, Total: total}:
					default:
					}
				},
			}

			if useCache && dataFile != "" {
				if cachePath == "" {
					cachePath = pipeline.CachePath()
				}
				if cache, err := store.Open(cachePath); err == nil {
					res, runErr := pipeline.RunWithCache(context.Background(), st, dataFile, params, cache, opts)
					_ = cache.Close()
					if runErr == nil {
						sub <- ProjectionMsg{Projection: res.Projection, Cached: res.Hit, Elapsed: time.Since(start)}
						return
					}
				}
			}

			proj, err := pipeline.Run(context.Background(), st, params, opts)
			sub <- ProjectionMsg{Projection: proj, Err: err, Elapsed: time.Since(start)}
		}()
		return <-sub
	}
}

func waitForRunMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with the background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
