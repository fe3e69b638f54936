package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/demandcast/internal/model"
)

// RenderForecastChart renders history and forecast as horizontal bars, one
// row per period. Forecast rows are marked with a leading arrow.
func RenderForecastChart(r model.ForecastResult, barWidth int) string {
	if len(r.ChartData) == 0 {
		return ""
	}
	nHist := len(r.ChartData) - len(r.Forecast)

	labelWidth := 0
	var peak float64
	for _, row := range r.ChartData {
		labelWidth = max(labelWidth, lipgloss.Width(row.Month))
		peak = max(peak, float64(max(row.Historical, row.Predicted)))
	}

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(historyStyle.Render("█ history"))
	b.WriteString("  ")
	b.WriteString(forecastStyle.Render("█ forecast"))
	b.WriteString("\n")
	for i, row := range r.ChartData {
		if i < nHist {
			b.WriteString(RenderHorizontalBar(row.Month, float64(row.Historical), peak, labelWidth, barWidth, historyStyle))
		} else {
			if i == nHist {
				b.WriteString(dimStyle.Render("  " + strings.Repeat("┄", labelWidth+barWidth+2)))
				b.WriteString("\n")
			}
			b.WriteString(RenderHorizontalBar(row.Month, float64(row.Predicted), peak, labelWidth, barWidth, forecastStyle))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderSeries renders the whole chart as a single sparkline with the
// forecast part highlighted.
func RenderSeries(r model.ForecastResult) string {
	nHist := len(r.ChartData) - len(r.Forecast)
	values := make([]float64, len(r.ChartData))
	for i, row := range r.ChartData {
		if i < nHist {
			values[i] = float64(row.Historical)
		} else {
			values[i] = float64(row.Predicted)
		}
	}
	line := []rune(RenderSparkline(values))
	if nHist < 0 || nHist > len(line) {
		return string(line)
	}
	return historyStyle.Render(string(line[:nHist])) + forecastStyle.Render(string(line[nHist:]))
}

// RenderCards renders the headline figures of a forecast side by side.
func RenderCards(r model.ForecastResult) string {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1).
		Width(16)

	cards := []string{
		card.Render(mutedStyle.Render("Predicted units") + "\n" + valueStyle.Bold(true).Render(FormatNumber(int64(r.PredictedUnits)))),
		card.Render(mutedStyle.Render("Sales trend") + "\n" + TrendStyle(r.SalesTrend).Bold(true).Render(r.SalesTrend)),
		card.Render(mutedStyle.Render("Peak period") + "\n" + valueStyle.Bold(true).Render(r.PeakDemandPeriod)),
		card.Render(mutedStyle.Render("Confidence") + "\n" + valueStyle.Bold(true).Render(r.Confidence)),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// RenderSummary wraps the forecast summary to width.
func RenderSummary(r model.ForecastResult, width int) string {
	return lipgloss.NewStyle().Width(width).PaddingLeft(2).Render(r.Summary)
}

// RenderConfusion renders the simulated confusion matrix as a 2x2 grid.
func RenderConfusion(c model.ConfusionMatrix) string {
	return RenderTable(Table{
		Title:   "Confusion matrix",
		Headers: []string{"", "Pred. high", "Pred. low"},
		Rows: [][]string{
			{"Actual high", FormatNumber(int64(c.TruePositive)), FormatNumber(int64(c.FalseNegative))},
			{"Actual low", FormatNumber(int64(c.FalsePositive)), FormatNumber(int64(c.TrueNegative))},
		},
	})
}

// RenderFeatureImportance renders feature scores as percentage bars.
func RenderFeatureImportance(features []model.FeatureScore, barWidth int) string {
	if len(features) == 0 {
		return ""
	}
	labelWidth := 0
	for _, f := range features {
		labelWidth = max(labelWidth, len(f.Feature))
	}
	var b strings.Builder
	for _, f := range features {
		n := int(f.Importance * float64(barWidth))
		fmt.Fprintf(&b, "  %-*s %s %s\n", labelWidth, f.Feature,
			forecastStyle.Render(strings.Repeat("█", n))+dimStyle.Render(strings.Repeat("░", barWidth-n)),
			mutedStyle.Render(FormatPercent(f.Importance)))
	}
	return b.String()
}

// RenderDropped lists discarded input lines.
func RenderDropped(rows []model.DroppedRow, limit int) string {
	if len(rows) == 0 {
		return ""
	}
	var b strings.Builder
	for i, d := range rows {
		if limit > 0 && i == limit {
			fmt.Fprintf(&b, "  %s\n", mutedStyle.Render(fmt.Sprintf("... and %d more", len(rows)-limit)))
			break
		}
		raw := d.Raw
		if len(raw) > 40 {
			raw = raw[:37] + "..."
		}
		fmt.Fprintf(&b, "  %s %-42q %s\n", dimStyle.Render(fmt.Sprintf("line %4d", d.Line)), raw, warnStyle.Render(d.Reason))
	}
	return b.String()
}
