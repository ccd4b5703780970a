package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestRenderTable_Layout(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Composite",
		Headers: []string{"Month", "Median"},
		Rows: [][]string{
			{"2025-01", "100.21"},
			{SeparatorRow},
			{"2025-02", "100.4"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "Composite") {
		t.Errorf("title line = %q", lines[0])
	}
	if lines[4] != "│ 2025-01 │ 100.21 │" {
		t.Errorf("row = %q", lines[4])
	}
	if !strings.HasPrefix(lines[5], "├") {
		t.Errorf("separator row = %q", lines[5])
	}
	// Numbers are right-aligned.
	if lines[6] != "│ 2025-02 │  100.4 │" {
		t.Errorf("numeric cell not right-aligned: %q", lines[6])
	}

	widths := map[int]bool{}
	for _, l := range lines[1:] {
		widths[lipgloss.Width(l)] = true
	}
	if len(widths) != 1 {
		t.Errorf("rows have differing widths: %v\n%s", widths, out)
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Errorf("empty table rendered %q", got)
	}
}

func TestRenderTable_LeftCols(t *testing.T) {
	out := RenderTable(Table{
		Headers:  []string{"Category", "Note", "Value"},
		Rows:     [][]string{{"Salud", "x", "1"}},
		Widths:   []int{8, 4, 5},
		LeftCols: 2,
	})
	if !strings.Contains(out, "│ Salud    │ x    │     1 │") {
		t.Errorf("unexpected alignment:\n%s", out)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline(nil); got != "" {
		t.Errorf("empty sparkline = %q", got)
	}
	got := []rune(RenderSparkline([]float64{100.1, 100.2, 100.3}))
	if len(got) != 3 || got[0] != '▁' || got[2] != '█' {
		t.Errorf("sparkline = %q", string(got))
	}
	flat := RenderSparkline([]float64{5, 5})
	if flat != "▁▁" {
		t.Errorf("flat sparkline = %q", flat)
	}
}

func TestRenderBand(t *testing.T) {
	band := []rune(RenderBand(98, 99, 100, 101, 102, 96, 104, 9))
	if len(band) != 9 {
		t.Fatalf("band width = %d", len(band))
	}
	if band[4] != '┃' {
		t.Errorf("median marker misplaced: %q", string(band))
	}
	if band[0] != ' ' || band[2] != '░' || band[3] != '▒' {
		t.Errorf("band = %q", string(band))
	}
	if RenderBand(1, 2, 3, 4, 5, 10, 10, 5) != "" {
		t.Error("degenerate scale should render nothing")
	}
}

func TestRenderSignedBar(t *testing.T) {
	up := RenderSignedBar(2, 2, 4)
	if up != "    │████" {
		t.Errorf("positive bar = %q", up)
	}
	down := RenderSignedBar(-1, 2, 4)
	if down != "  ██│    " {
		t.Errorf("negative bar = %q", down)
	}
}

func TestRenderProgressBar(t *testing.T) {
	got := RenderProgressBar(5, 10, 10)
	if !strings.Contains(got, "█████░░░░░") || !strings.Contains(got, "5/10") {
		t.Errorf("progress bar = %q", got)
	}
	if RenderProgressBar(1, 0, 10) != "" {
		t.Error("zero total should render nothing")
	}
}
