package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/ipcsim/internal/model"
	"github.com/theirongolddev/ipcsim/internal/series"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func testStore() *series.Store {
	var obs []model.Observation
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range []float64{0.5, 0.7, 0.4, 0.6} {
		obs = append(obs,
			model.Observation{Date: model.AddMonths(base, i), Category: "Food", Weight: 60, MonthlyChange: model.Float(c)},
			model.Observation{Date: model.AddMonths(base, i), Category: "Transport", Weight: 40, MonthlyChange: model.Float(-c)},
		)
	}
	return series.NewStore(obs)
}

func testProjection() *model.Projection {
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	sum := []model.PeriodSummary{{Date: date, Mean: 100.5, Median: 100.5, P5: 99, P25: 100, P75: 101, P95: 102}}
	return &model.Projection{
		Params: model.Params{Trials: 10, Periods: 1, Seed: 7},
		Categories: []model.CategoryResult{
			{Category: "Food", Weight: 60, Observations: 4, Summaries: sum},
			{Category: "Transport", Weight: 40, Observations: 4, Summaries: sum},
		},
		NormalizedWeights: map[string]float64{"Food": 0.6, "Transport": 0.4},
		Composite:         []model.CompositeSummary{model.CompositeSummary(sum[0])},
	}
}

func loadedApp(t *testing.T) App {
	t.Helper()
	a := NewApp(Options{Store: testStore(), DataFile: "data/output.json", Params: model.Params{Trials: 10, Periods: 1}})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.Update(ProjectionMsg{Projection: testProjection(), Elapsed: time.Second})
	return m.(App)
}

func press(t *testing.T, a App, keys ...string) App {
	t.Helper()
	var m tea.Model = a
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m.(App)
}

func TestProjectionMsgMarksLoaded(t *testing.T) {
	a := loadedApp(t)
	if !a.loaded || a.running {
		t.Fatalf("loaded=%v running=%v, want true/false", a.loaded, a.running)
	}
	if a.params.Seed != 7 {
		t.Errorf("params.Seed = %d, want 7", a.params.Seed)
	}
	if a.runs != 1 {
		t.Errorf("runs = %d, want 1", a.runs)
	}
}

func TestTabKeys(t *testing.T) {
	a := loadedApp(t)
	if a = press(t, a, "c"); a.activeTab != tabCategories {
		t.Fatalf("after c: tab %d", a.activeTab)
	}
	if a = press(t, a, "x"); a.activeTab != tabSettings {
		t.Fatalf("after x: tab %d", a.activeTab)
	}
	if a = press(t, a, "right"); a.activeTab != tabOverview {
		t.Fatalf("right wraps: tab %d", a.activeTab)
	}
	if a = press(t, a, "left"); a.activeTab != tabSettings {
		t.Fatalf("left wraps: tab %d", a.activeTab)
	}
}

func TestCategoryCursor(t *testing.T) {
	a := press(t, loadedApp(t), "c", "j", "j", "j", "j")
	// composite + two categories
	if a.catState.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", a.catState.cursor)
	}
	a = press(t, a, "g")
	if a.catState.cursor != 0 {
		t.Fatalf("after g cursor = %d", a.catState.cursor)
	}
	a = press(t, a, "G")
	if a.catState.cursor != 2 {
		t.Fatalf("after G cursor = %d", a.catState.cursor)
	}
}

func TestViewsRender(t *testing.T) {
	a := loadedApp(t)
	for _, tc := range []struct {
		key  string
		want string
	}{
		{"o", "Composite median"},
		{"c", compositeName},
		{"b", "Weights and spread"},
		{"x", "Change floor"},
	} {
		view := press(t, a, tc.key).View()
		if !strings.Contains(view, tc.want) {
			t.Errorf("tab %s: view missing %q", tc.key, tc.want)
		}
	}
}

func TestViewCompositeError(t *testing.T) {
	a := NewApp(Options{Store: testStore(), DataFile: "x.json"})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	p := testProjection()
	p.Composite = nil
	p.NormalizedWeights = nil
	p.CompositeError = "no categories with positive weight"
	m, _ = m.Update(ProjectionMsg{Projection: p})

	view := m.View()
	if !strings.Contains(view, "no categories with positive weight") {
		t.Error("overview should show the composite error")
	}
	if !strings.Contains(press(t, m.(App), "b").View(), "nothing to break down") {
		t.Error("breakdown should explain the missing composite")
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := NewApp(Options{Store: testStore()})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	if !strings.Contains(m.View(), "too narrow") {
		t.Error("expected narrow terminal notice")
	}
}

func TestLoadingView(t *testing.T) {
	a := NewApp(Options{Store: testStore(), Params: model.Params{Trials: 500, Periods: 12}})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = m.Update(ProgressMsg{Current: 3, Total: 12})
	view := m.View()
	if !strings.Contains(view, "500 trials x 12 months") {
		t.Errorf("loading view missing run size:\n%s", view)
	}
	if !strings.Contains(view, "categories") {
		t.Error("loading view missing progress counter")
	}
}

func TestHelpToggle(t *testing.T) {
	a := press(t, loadedApp(t), "?")
	if !a.showHelp {
		t.Fatal("? should open help")
	}
	if !strings.Contains(a.View(), "Keyboard Shortcuts") {
		t.Error("help view not rendered")
	}
	a = press(t, a, "o")
	if a.showHelp {
		t.Fatal("any key should close help")
	}
}

func TestTruncateAndPadHeight(t *testing.T) {
	if got := truncateHeight("a\nb\nc", 2); got != "a\nb" {
		t.Errorf("truncateHeight = %q", got)
	}
	if got := padHeight("a", 3); got != "a\n\n" {
		t.Errorf("padHeight = %q", got)
	}
}
