// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatIndex formats a compounded index value, e.g. 103.0301 -> "103.03".
func FormatIndex(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatChange formats a percent change with an explicit sign, e.g. "+0.35%".
func FormatChange(pct float64) string {
	if math.IsNaN(pct) {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", pct)
}

// FormatCumulative formats the change of an index relative to base 100.
func FormatCumulative(index float64) string {
	return FormatChange(index - 100)
}

// FormatWeight formats a category weight, which is already a percentage.
func FormatWeight(w float64) string {
	return fmt.Sprintf("%.2f%%", w)
}

// FormatShare formats a 0-1 fraction as a percentage string.
func FormatShare(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatMonth formats a projected month, e.g. "2025-03".
func FormatMonth(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01")
}

// FormatDuration formats an elapsed run time.
// e.g. 1.5s -> "1.5s", 340ms -> "340ms", 2m5s -> "2m 5s"
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0s"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	mins := int64(d / time.Minute)
	secs := int64((d % time.Minute) / time.Second)
	return fmt.Sprintf("%dm %ds", mins, secs)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatBytes formats a file size, e.g. 2048 -> "2.0 KB".
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
