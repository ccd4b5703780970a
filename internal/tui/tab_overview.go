package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ipcsim/internal/cli"
	"github.com/theirongolddev/ipcsim/internal/model"
	"github.com/theirongolddev/ipcsim/internal/tui/components"
	"github.com/theirongolddev/ipcsim/internal/tui/theme"
)

const compositeName = "General (composite)"

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	var b strings.Builder
	if a.proj == nil {
		return ""
	}

	if len(a.proj.Composite) == 0 {
		warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		msg := "Composite not computed"
		if a.proj.CompositeError != "" {
			msg += ": " + a.proj.CompositeError
		}
		b.WriteString(components.ContentCard("Composite", warn.Render(msg), cw))
		b.WriteString("\n")
		b.WriteString(a.renderRunCard(cw))
		return b.String()
	}

	summaries := compositeSummaries(a.proj.Composite)
	first, last := summaries[0], summaries[len(summaries)-1]

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Median " + cli.FormatMonth(last.Date), Value: cli.FormatIndex(last.Median),
			Delta: cli.FormatCumulative(last.Median) + " cumulative", Sign: last.Median - 100},
		{Label: "Next month", Value: cli.FormatIndex(first.Median),
			Delta: cli.FormatCumulative(first.Median), Sign: first.Median - 100},
		{Label: "90% band", Value: cli.FormatIndex(last.P5) + " - " + cli.FormatIndex(last.P95),
			Delta: fmt.Sprintf("width %.2f pts", last.P95-last.P5)},
		{Label: "Categories", Value: cli.FormatNumber(int64(len(a.proj.Categories))),
			Delta: fmt.Sprintf("%d skipped", len(a.proj.Skipped))},
	}, cw))
	b.WriteString("\n")

	medians := make([]float64, len(summaries))
	for i, s := range summaries {
		medians[i] = s.Median
	}
	trendBody := components.Sparkline(medians, t.Change(last.Median-100))
	b.WriteString(components.ContentCard("Composite median", trendBody, cw))
	b.WriteString("\n")

	b.WriteString(components.ContentCard("Composite 90% band",
		components.FanChart(summaries, components.CardInnerWidth(cw)), cw))
	b.WriteString("\n")

	b.WriteString(components.ContentCard("Composite by month",
		summaryTableView(summaries, components.CardInnerWidth(cw), len(summaries)), cw))
	b.WriteString("\n")
	b.WriteString(a.renderRunCard(cw))
	return b.String()
}

func (a App) renderRunCard(cw int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	oldest, newest := a.st.Span()
	var body strings.Builder
	body.WriteString(labelStyle.Render("Data file:    ") + valueStyle.Render(a.dataFile) + "\n")
	body.WriteString(labelStyle.Render("History:      ") + valueStyle.Render(
		fmt.Sprintf("%s to %s, %s observations", cli.FormatMonth(oldest), cli.FormatMonth(newest),
			cli.FormatNumber(int64(a.st.Len())))) + "\n")
	body.WriteString(labelStyle.Render("Runs:         ") + valueStyle.Render(fmt.Sprintf("%d", a.runs)))
	for _, s := range a.proj.Skipped {
		body.WriteString("\n")
		body.WriteString(warnStyle.Render(fmt.Sprintf("skipped %s: %s", s.Category, s.Reason)))
	}
	return components.ContentCard("Run", body.String(), cw)
}

func compositeSummaries(c []model.CompositeSummary) []model.PeriodSummary {
	out := make([]model.PeriodSummary, len(c))
	for i, s := range c {
		out[i] = model.PeriodSummary(s)
	}
	return out
}
