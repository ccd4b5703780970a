package components

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ipcsim/internal/tui/theme"
)

// ProgressBar renders a solid bar with a percentage, clamping pct to [0, 1].
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}

	color := t.Cyan
	switch {
	case pct >= 0.8:
		color = t.AccentBright
	case pct >= 0.5:
		color = t.Accent
	}

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(width),
	)
	bar.EmptyColor = string(t.TextDim)
	bar.PercentageStyle = lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	return bar.ViewAs(pct)
}
