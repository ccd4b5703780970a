package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ipcsim/internal/cli"
	"github.com/theirongolddev/ipcsim/internal/pipeline"
	"github.com/theirongolddev/ipcsim/internal/tui/components"
	"github.com/theirongolddev/ipcsim/internal/tui/theme"
)

func (a App) renderBreakdownTab(cw int) string {
	t := theme.Active
	rows := pipeline.ContributionBreakdown(a.proj)
	if len(rows) == 0 {
		msg := "Composite not computed, nothing to break down"
		return components.ContentCard("Breakdown", lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Render(msg), cw)
	}

	inner := components.CardInnerWidth(cw)
	labelW := min(28, inner/3)
	halfW := max((inner-labelW-10)/2, 4)

	labels := make([]string, len(rows))
	values := make([]float64, len(rows))
	total := 0.0
	for i, r := range rows {
		labels[i] = r.Category
		values[i] = r.Points
		total += r.Points
	}

	horizon := ""
	if n := len(a.proj.Composite); n > 0 {
		horizon = cli.FormatMonth(a.proj.Composite[n-1].Date)
	}

	var b strings.Builder
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Index points contributed by %s (total %+.3f)", horizon, total),
		components.SignedBars(labels, values, labelW, halfW), cw))
	b.WriteString("\n")

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	nameW := max(inner-4*12, 12)

	var tbl strings.Builder
	tbl.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %11s %11s %11s %11s",
		nameW, "Category", "Weight", "Share", "Median", "Band")))
	for _, r := range rows {
		tbl.WriteString("\n")
		tbl.WriteString(cellStyle.Render(fmt.Sprintf("%-*s %11s %11s %11s %11s",
			nameW, truncateRunes(r.Category, nameW),
			cli.FormatWeight(r.Weight),
			cli.FormatShare(r.NormalizedWeight),
			cli.FormatIndex(r.Median),
			fmt.Sprintf("%.2f", r.Band))))
	}
	b.WriteString(components.ContentCard("Weights and spread", tbl.String(), cw))
	return b.String()
}
