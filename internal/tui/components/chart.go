package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ipcsim/internal/cli"
	"github.com/theirongolddev/ipcsim/internal/model"
	"github.com/theirongolddev/ipcsim/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values scaled between their own min and max.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var buf strings.Builder
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		idx = min(max(idx, 0), len(sparkBlocks)-1)
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// FanChart draws one P5..P95 band per month on a shared scale, with the
// median marked and printed at the end of the line.
func FanChart(summaries []model.PeriodSummary, width int) string {
	if len(summaries) == 0 {
		return ""
	}
	t := theme.Active

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range summaries {
		lo = math.Min(lo, s.P5)
		hi = math.Max(hi, s.P95)
	}

	labelW := len("2006-01") + 1
	valueW := 8
	bandW := width - labelW - valueW - 2
	if bandW < 10 {
		bandW = 10
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	bandStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	for _, s := range summaries {
		band := cli.RenderBand(s.P5, s.P25, s.Median, s.P75, s.P95, lo, hi, bandW)
		if band == "" {
			band = strings.Repeat(" ", bandW)
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelW, cli.FormatMonth(s.Date))))
		b.WriteString(bandStyle.Render(band))
		b.WriteString(valueStyle.Render(fmt.Sprintf(" %*s", valueW, cli.FormatIndex(s.Median))))
		b.WriteString("\n")
	}
	scale := fmt.Sprintf("%-*s%s", labelW, "", cli.FormatIndex(lo))
	gap := labelW + bandW - len(scale) - len(cli.FormatIndex(hi))
	if gap < 1 {
		gap = 1
	}
	b.WriteString(axisStyle.Render(scale + strings.Repeat(" ", gap) + cli.FormatIndex(hi)))
	return b.String()
}

// SignedBars draws one horizontal bar per row around a shared zero axis.
func SignedBars(labels []string, values []float64, labelW, halfWidth int) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active
	maxAbs := 0.0
	for _, v := range values {
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	var b strings.Builder
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		barStyle := lipgloss.NewStyle().Foreground(t.Change(v)).Background(t.Surface)
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s ", labelW, truncate(label, labelW))))
		b.WriteString(barStyle.Render(cli.RenderSignedBar(v, maxAbs, halfWidth)))
		b.WriteString(barStyle.Render(fmt.Sprintf(" %+.3f", v)))
		if i < len(values)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
