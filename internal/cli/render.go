package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/demandcast/internal/model"
)

// Palette (Flexoki Dark). History is blue and forecasts are purple.
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
	ColorPurple    = lipgloss.Color("#8B7EC8")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	upStyle = lipgloss.NewStyle().
		Foreground(ColorGreen)

	downStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	historyStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	forecastStyle = lipgloss.NewStyle().
			Foreground(ColorPurple)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// SeparatorRow is a row value that RenderTable draws as a horizontal rule.
const SeparatorRow = "---"

// Table is a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, measured from the content if nil
	// LeftCols is how many leading columns are left-aligned; the rest are
	// right-aligned. Zero means one.
	LeftCols int
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(titleStyle.Render(title))
}

func (t Table) columns() int {
	if len(t.Headers) > 0 {
		return len(t.Headers)
	}
	n := 0
	for _, row := range t.Rows {
		if !isSeparator(row) {
			n = max(n, len(row))
		}
	}
	return n
}

func (t Table) widths(n int) []int {
	w := make([]int, n)
	if t.Widths != nil {
		copy(w, t.Widths)
		return w
	}
	for i, h := range t.Headers {
		w[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		if isSeparator(row) {
			continue
		}
		for i := 0; i < n && i < len(row); i++ {
			w[i] = max(w[i], lipgloss.Width(row[i]))
		}
	}
	return w
}

func isSeparator(row []string) bool {
	return len(row) == 1 && row[0] == SeparatorRow
}

// rule draws one horizontal border line.
func rule(widths []int, left, mid, right string) string {
	segs := make([]string, len(widths))
	for i, w := range widths {
		segs[i] = strings.Repeat("─", w+2)
	}
	return dimStyle.Render(left+strings.Join(segs, mid)+right) + "\n"
}

// pad aligns s within w cells, measuring display width so styled or wide
// characters line up.
func pad(s string, w int, right bool) string {
	gap := strings.Repeat(" ", max(0, w-lipgloss.Width(s)))
	if right {
		return " " + gap + s + " "
	}
	return " " + s + gap + " "
}

// RenderTable renders a bordered table with headers and rows. A row holding
// only SeparatorRow becomes a rule.
func RenderTable(t Table) string {
	n := t.columns()
	if n == 0 {
		return ""
	}
	widths := t.widths(n)
	left := t.LeftCols
	if left <= 0 {
		left = 1
	}
	bar := dimStyle.Render("│")

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}
	b.WriteString(rule(widths, "╭", "┬", "╮"))

	if len(t.Headers) > 0 {
		cells := make([]string, n)
		for i, h := range t.Headers {
			cells[i] = headerStyle.Render(pad(h, widths[i], false))
		}
		b.WriteString(bar + strings.Join(cells, bar) + bar + "\n")
		b.WriteString(rule(widths, "├", "┼", "┤"))
	}

	for _, row := range t.Rows {
		if isSeparator(row) {
			b.WriteString(rule(widths, "├", "┼", "┤"))
			continue
		}
		cells := make([]string, n)
		for i := range cells {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = valueStyle.Render(pad(cell, widths[i], i >= left))
		}
		b.WriteString(bar + strings.Join(cells, bar) + bar + "\n")
	}

	b.WriteString(rule(widths, "╰", "┴", "╯"))
	return b.String()
}

// RenderProgressBar renders a text progress bar followed by "current/total".
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := min(width, max(0, current*width/total))
	return fmt.Sprintf("[%s%s] %s/%s",
		forecastStyle.Render(strings.Repeat("█", filled)),
		dimStyle.Render(strings.Repeat("░", width-filled)),
		FormatNumber(int64(current)),
		FormatNumber(int64(total)),
	)
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// RenderSparkline renders values as unicode blocks scaled from zero to the
// largest value. Negative values render as the lowest block.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	top := len(sparkBlocks) - 1
	out := make([]rune, len(values))
	for i, v := range values {
		out[i] = sparkBlocks[min(top, max(0, int(v/peak*float64(top))))]
	}
	return string(out)
}

// RenderHorizontalBar renders one labeled bar of a horizontal bar chart.
// Labels are padded to labelWidth and the value is printed after the bar.
func RenderHorizontalBar(label string, value, maxValue float64, labelWidth, maxWidth int, style lipgloss.Style) string {
	n := 0
	if maxValue > 0 {
		n = min(maxWidth, max(0, int(value/maxValue*float64(maxWidth))))
	}
	return fmt.Sprintf("  %-*s %s %s", labelWidth, label, style.Render(strings.Repeat("█", n)), mutedStyle.Render(FormatNumber(int64(value))))
}

// TrendStyle returns the style for a sales trend label.
func TrendStyle(trend string) lipgloss.Style {
	if trend == model.TrendIncreasing {
		return upStyle
	}
	return downStyle
}
