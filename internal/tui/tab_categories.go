package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ipcsim/internal/cli"
	"github.com/theirongolddev/ipcsim/internal/model"
	"github.com/theirongolddev/ipcsim/internal/tui/components"
	"github.com/theirongolddev/ipcsim/internal/tui/theme"
)

// categoriesState tracks the category list cursor.
type categoriesState struct {
	cursor int
	offset int
}

// handleKey moves the cursor. It reports whether key was consumed.
func (s *categoriesState) handleKey(key string, n int) bool {
	switch key {
	case "j", "down":
		if s.cursor < n-1 {
			s.cursor++
		}
	case "k", "up":
		if s.cursor > 0 {
			s.cursor--
		}
	case "g", "home":
		s.cursor = 0
	case "G", "end":
		s.cursor = max(n-1, 0)
	default:
		return false
	}
	return true
}

func (s *categoriesState) clamp(n int) {
	if s.cursor >= n {
		s.cursor = max(n-1, 0)
	}
	if s.offset > s.cursor {
		s.offset = s.cursor
	}
}

// scroll keeps the cursor inside a window of visible rows.
func (s *categoriesState) scroll(visible int) {
	if visible < 1 {
		visible = 1
	}
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+visible {
		s.offset = s.cursor - visible + 1
	}
}

func (a App) renderCategoriesTab(cw, h int) string {
	t := theme.Active
	names := a.categoryNames()
	if len(names) == 0 {
		return components.ContentCard("Categories", lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("No categories projected"), cw)
	}

	widths := components.LayoutRow(cw, 3)
	listW := widths[0]
	detailW := widths[1] + widths[2]

	// Card borders and title take four lines.
	visible := max(h-4, 3)
	a.catState.scroll(visible)

	normal := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selected := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright).Bold(true)
	innerList := components.CardInnerWidth(listW)

	var list strings.Builder
	end := min(a.catState.offset+visible, len(names))
	for i := a.catState.offset; i < end; i++ {
		line := fmt.Sprintf("%-*s", innerList, truncateRunes(names[i], innerList))
		if i == a.catState.cursor {
			list.WriteString(selected.Render(line))
		} else {
			list.WriteString(normal.Render(line))
		}
		if i < end-1 {
			list.WriteString("\n")
		}
	}
	listCard := components.ContentCard(fmt.Sprintf("Categories (%d)", len(names)), list.String(), listW)

	name := names[a.catState.cursor]
	var detail string
	if name == compositeName {
		detail = a.renderCompositeDetail(detailW, visible)
	} else {
		detail = a.renderCategoryDetail(name, detailW, visible)
	}
	return components.CardRow([]string{listCard, detail})
}

func (a App) renderCompositeDetail(w, rows int) string {
	summaries := compositeSummaries(a.proj.Composite)
	inner := components.CardInnerWidth(w)
	var b strings.Builder
	b.WriteString(components.FanChart(summaries, inner))
	b.WriteString("\n\n")
	b.WriteString(summaryTableView(summaries, inner, rows-4))
	return components.ContentCard(compositeName, b.String(), w)
}

func (a App) renderCategoryDetail(name string, w, rows int) string {
	t := theme.Active
	c, ok := a.proj.Category(name)
	if !ok {
		return components.ContentCard(name, "", w)
	}
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	d := c.Distribution
	sd := fmt.Sprintf("%.3f", d.StdDev)
	if d.Floored {
		sd += " (floored)"
	}
	inner := components.CardInnerWidth(w)

	var b strings.Builder
	b.WriteString(labelStyle.Render("weight ") + valueStyle.Render(cli.FormatWeight(c.Weight)))
	b.WriteString(labelStyle.Render("  mean ") + valueStyle.Render(cli.FormatChange(d.Mean)+"/month"))
	b.WriteString(labelStyle.Render("  sd ") + valueStyle.Render(sd))
	b.WriteString(labelStyle.Render("  history ") + valueStyle.Render(fmt.Sprintf("%d months", c.Observations)))
	b.WriteString("\n\n")
	b.WriteString(components.FanChart(c.Summaries, inner))
	b.WriteString("\n\n")
	b.WriteString(summaryTableView(c.Summaries, inner, rows-6))
	return components.ContentCard(name, b.String(), w)
}

// summaryTableView renders per-month statistics as a read-only table.
func summaryTableView(summaries []model.PeriodSummary, width, height int) string {
	t := theme.Active
	colW := max((width-8)/8, 7)
	cols := []table.Column{
		{Title: "Month", Width: colW + 1},
		{Title: "Mean", Width: colW},
		{Title: "Median", Width: colW},
		{Title: "P5", Width: colW},
		{Title: "P25", Width: colW},
		{Title: "P75", Width: colW},
		{Title: "P95", Width: colW},
		{Title: "Cum", Width: colW},
	}
	rows := make([]table.Row, len(summaries))
	for i, s := range summaries {
		rows[i] = table.Row{
			cli.FormatMonth(s.Date),
			cli.FormatIndex(s.Mean),
			cli.FormatIndex(s.Median),
			cli.FormatIndex(s.P5),
			cli.FormatIndex(s.P25),
			cli.FormatIndex(s.P75),
			cli.FormatIndex(s.P95),
			cli.FormatCumulative(s.Median),
		}
	}

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Foreground(t.Accent).
		Background(t.Surface).
		BorderForeground(t.Border).
		BorderBottom(true).
		Bold(true)
	styles.Cell = styles.Cell.Foreground(t.TextPrimary).Background(t.Surface)
	// Unfocused: the selected row renders like any other.
	styles.Selected = lipgloss.NewStyle()

	tbl := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(min(max(height, 3), len(rows)+1)),
		table.WithFocused(false),
		table.WithStyles(styles),
	)
	return tbl.View()
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 {
		return ""
	}
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
