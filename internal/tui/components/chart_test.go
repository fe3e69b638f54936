package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestChartTickStep(t *testing.T) {
	tests := []struct {
		max  float64
		want float64
	}{
		{0, 1},
		{5, 1},
		{100, 20},
		{320, 50},
		{1200, 200},
	}
	for _, tt := range tests {
		if got := chartTickStep(tt.max); got != tt.want {
			t.Errorf("chartTickStep(%v) = %v, want %v", tt.max, got, tt.want)
		}
	}
}

func TestFormatChartLabel(t *testing.T) {
	tests := map[float64]string{
		0.5:     "0.50",
		40:      "40",
		2000:    "2k",
		2500:    "2.5k",
		3000000: "3M",
	}
	for v, want := range tests {
		if got := formatChartLabel(v); got != want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", v, got, want)
		}
	}
}

func TestSeriesChart(t *testing.T) {
	values := []float64{100, 120, 140, 160, 180, 200, 220, 253}
	labels := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug"}
	out := SeriesChart(values, labels, 6, 60, 8)

	lines := strings.Split(out, "\n")
	last := lines[len(lines)-1]
	if !strings.Contains(last, "Jan") || !strings.Contains(last, "Aug") {
		t.Errorf("x-axis labels missing: %q", last)
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w > 60 {
			t.Errorf("line %d width %d exceeds 60", i, w)
		}
	}

	if got := SeriesChart(values, labels, 6, 10, 8); strings.Contains(got, "\n") {
		t.Error("narrow chart should fall back to a one-line sparkline")
	}
	if SeriesChart(nil, nil, 0, 60, 8) != "" {
		t.Error("empty series should render nothing")
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey('c'); got != 2 {
		t.Errorf("TabIdxByKey('c') = %d, want 2", got)
	}
	if got := TabIdxByKey('z'); got != -1 {
		t.Errorf("TabIdxByKey('z') = %d, want -1", got)
	}
}
