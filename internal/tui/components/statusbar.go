package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ipcsim/internal/tui/theme"
)

// RenderStatusBar renders the bottom bar: key hints on the left, run info
// on the right. running swaps the info for a busy marker.
func RenderStatusBar(width int, info string, running bool) string {
	t := theme.Active

	hintStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	infoStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	busyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	left := hintStyle.Render(" [?]help  [r]erun  [q]uit")
	right := infoStyle.Render(info + " ")
	if running {
		right = busyStyle.Render("running… ")
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	fill := lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", padding))
	return left + fill + right
}
