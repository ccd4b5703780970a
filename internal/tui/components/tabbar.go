package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ipcsim/internal/tui/theme"
)

// Tab is one entry in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // index of Key in Name, or -1 when the key is not in the name
}

// Tabs in display order. The app addresses tabs by index.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "Categories", Key: 'c', KeyPos: 0},
	{Name: "Breakdown", Key: 'b', KeyPos: 0},
	{Name: "Settings", Key: 'x', KeyPos: -1},
}

func renderTab(tab Tab, active bool) string {
	t := theme.Active
	pad := lipgloss.NewStyle().Padding(0, 1)

	if active {
		return pad.
			Foreground(t.AccentBright).
			Background(t.SurfaceHover).
			Bold(true).
			Render(tab.Name)
	}

	name := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	key := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var label string
	if tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name) {
		label = name.Render(tab.Name[:tab.KeyPos]) +
			key.Render(string(tab.Name[tab.KeyPos])) +
			name.Render(tab.Name[tab.KeyPos+1:])
	} else {
		label = name.Render(tab.Name) + dim.Render("[") + key.Render(string(tab.Key)) + dim.Render("]")
	}
	return pad.Background(t.Surface).Render(label)
}

// TabVisualWidth is the rendered cell width of a tab.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTab(tab, active))
}

// RenderTabBar renders the tab bar on one line, padded to width.
func RenderTabBar(activeIdx, width int) string {
	t := theme.Active
	sep := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface).Render("│")

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		parts[i] = renderTab(tab, i == activeIdx)
	}
	bar := strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(bar)
}

// TabIdxByKey returns the tab index for a key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
