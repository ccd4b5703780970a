package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/theirongolddev/ipcsim/internal/cli"
	"github.com/theirongolddev/ipcsim/internal/model"
)

// Terminal renders lipgloss tables for interactive use.
type Terminal struct {
	// Categories adds one table per category after the composite.
	Categories bool
	// Bands adds a P5..P95 band chart under each table.
	Bands bool
}

// Report implements Reporter.
func (t Terminal) Report(w io.Writer, p *model.Projection) error {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(cli.RenderTitle(fmt.Sprintf("IPC PROJECTION  %s trials x %d months  seed %d",
		cli.FormatNumber(int64(p.Params.Trials)), p.Params.Periods, p.Params.Seed)))
	b.WriteString("\n\n")

	if p.CompositeErr != nil || p.CompositeError != "" {
		msg := p.CompositeError
		if p.CompositeErr != nil {
			msg = p.CompositeErr.Error()
		}
		b.WriteString(cli.RenderWarning("composite not computed: " + msg))
		b.WriteString("\n\n")
	} else if len(p.Composite) > 0 {
		summaries := make([]model.PeriodSummary, len(p.Composite))
		for i, c := range p.Composite {
			summaries[i] = model.PeriodSummary(c)
		}
		b.WriteString(t.section("Composite index", summaries))
	}

	if t.Categories {
		for _, c := range p.Categories {
			title := fmt.Sprintf("%s  (weight %s, mean %s/month, sd %.3f%s)",
				c.Category, cli.FormatWeight(c.Weight), cli.FormatChange(c.Distribution.Mean),
				c.Distribution.StdDev, flooredMark(c.Distribution))
			b.WriteString(t.section(title, c.Summaries))
		}
	}

	for _, s := range p.Skipped {
		b.WriteString(cli.RenderWarning(fmt.Sprintf("skipped %s: %s", s.Category, s.Reason)))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (t Terminal) section(title string, summaries []model.PeriodSummary) string {
	var b strings.Builder
	b.WriteString(cli.RenderTable(SummaryTable(title, summaries)))

	medians := make([]float64, len(summaries))
	for i, s := range summaries {
		medians[i] = s.Median
	}
	if len(medians) > 1 {
		b.WriteString("  ")
		b.WriteString(cli.RenderMuted("median "))
		b.WriteString(cli.RenderSparkline(medians))
		b.WriteString("\n")
	}
	if t.Bands {
		b.WriteString(bandChart(summaries, 40))
	}
	b.WriteString("\n")
	return b.String()
}

// SummaryTable builds the month-by-month table of the six statistics plus
// the cumulative median change.
func SummaryTable(title string, summaries []model.PeriodSummary) cli.Table {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		row := []string{cli.FormatMonth(s.Date)}
		for _, v := range statValues(s) {
			row = append(row, cli.FormatIndex(v))
		}
		row = append(row, cli.FormatCumulative(s.Median))
		rows = append(rows, row)
	}
	return cli.Table{
		Title:   title,
		Headers: []string{"Month", "Mean", "Median", "P5", "P25", "P75", "P95", "Cum."},
		Rows:    rows,
	}
}

func bandChart(summaries []model.PeriodSummary, width int) string {
	if len(summaries) == 0 {
		return ""
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range summaries {
		lo = math.Min(lo, s.P5)
		hi = math.Max(hi, s.P95)
	}

	var b strings.Builder
	for _, s := range summaries {
		fmt.Fprintf(&b, "  %s %s %s\n",
			cli.FormatMonth(s.Date),
			cli.RenderBand(s.P5, s.P25, s.Median, s.P75, s.P95, lo, hi, width),
			cli.FormatIndex(s.Median))
	}
	fmt.Fprintf(&b, "  %s\n", cli.RenderMuted(fmt.Sprintf("scale %s .. %s", cli.FormatIndex(lo), cli.FormatIndex(hi))))
	return b.String()
}

func flooredMark(d model.Distribution) string {
	if d.Floored {
		return " floored"
	}
	return ""
}
