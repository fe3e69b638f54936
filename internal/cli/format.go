// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"time"

	"github.com/theirongolddev/demandcast/internal/forecast"
)

var unitSuffixes = []struct {
	min    int64
	div    float64
	suffix string
}{
	{1_000_000_000, 1e9, "B"},
	{1_000_000, 1e6, "M"},
	{10_000, 1e3, "K"},
}

// FormatUnits abbreviates large unit counts: 12345 -> "12.3K",
// 2500000 -> "2.5M". Counts under 10,000 keep their separators.
func FormatUnits(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}
	for _, u := range unitSuffixes {
		if abs >= u.min {
			return fmt.Sprintf("%.1f%s", float64(n)/u.div, u.suffix)
		}
	}
	return FormatNumber(n)
}

// FormatDuration renders seconds as "1h 2m", "2m" or "45s".
func FormatDuration(secs int64) string {
	d := time.Duration(max(0, secs)) * time.Second
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}

// FormatNumber adds comma separators, matching the forecast summary text.
func FormatNumber(n int64) string {
	return forecast.GroupThousands(n)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatScore formats a 0-1 score with three decimals.
func FormatScore(f float64) string {
	return fmt.Sprintf("%.3f", f)
}

// FormatDelta formats the signed difference between two 0-1 scores in
// percentage points, e.g. "+3.2pp".
func FormatDelta(current, reference float64) string {
	delta := (current - reference) * 100
	if delta >= 0 {
		return fmt.Sprintf("+%.1fpp", delta)
	}
	return fmt.Sprintf("%.1fpp", delta)
}

// FormatAge formats how long ago t was relative to now.
// e.g., "just now", "5m ago", "3h ago", "2d ago"
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// ShortID returns the first 8 characters of a record ID.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
