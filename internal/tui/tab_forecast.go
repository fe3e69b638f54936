package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/demandcast/internal/cli"
	"github.com/theirongolddev/demandcast/internal/model"
	"github.com/theirongolddev/demandcast/internal/tui/components"
	"github.com/theirongolddev/demandcast/internal/tui/theme"
)

const chartHeight = 10

func trendColor(trend string) lipgloss.Color {
	if trend == model.TrendDecreasing {
		return theme.Active.Red
	}
	return theme.Active.Green
}

func (a App) renderForecastTab(cw int) string {
	t := theme.Active
	r := a.rec.Result

	peakUnits := 0
	for _, p := range r.Forecast {
		if p.Month == r.PeakDemandPeriod {
			peakUnits = p.Predicted
			break
		}
	}

	cards := components.MetricCardRow([]components.Card{
		{Label: "Predicted units", Value: cli.FormatNumber(int64(r.PredictedUnits)), Note: fmt.Sprintf("next %d periods", len(r.Forecast))},
		{Label: "Sales trend", Value: r.SalesTrend, Color: trendColor(r.SalesTrend)},
		{Label: "Peak period", Value: r.PeakDemandPeriod, Note: cli.FormatNumber(int64(peakUnits)) + " units"},
		{Label: "Confidence", Value: r.Confidence, Note: r.ModelUsed},
	}, cw)

	split := len(r.ChartData) - len(r.Forecast)
	values := make([]float64, len(r.ChartData))
	labels := make([]string, len(r.ChartData))
	for i, row := range r.ChartData {
		labels[i] = row.Month
		if i < split {
			values[i] = float64(row.Historical)
		} else {
			values[i] = float64(row.Predicted)
		}
	}
	legend := lipgloss.NewStyle().Foreground(t.Historical).Background(t.Surface).Render("■ historical") +
		lipgloss.NewStyle().Background(t.Surface).Render("  ") +
		lipgloss.NewStyle().Foreground(t.Forecast).Background(t.Surface).Render("■ forecast")
	chart := components.ContentCard("Sales history and forecast",
		components.SeriesChart(values, labels, split, components.CardInnerWidth(cw), chartHeight)+"\n"+legend, cw)

	if a.isCompactLayout() {
		return strings.Join([]string{
			cards, chart,
			a.summaryCard(cw),
			a.forecastTableCard(cw),
		}, "\n")
	}
	widths := components.LayoutRow(cw, 2)
	bottom := components.CardRow([]string{a.summaryCard(widths[0]), a.forecastTableCard(widths[1])})
	return strings.Join([]string{cards, chart, bottom}, "\n")
}

func (a App) summaryCard(w int) string {
	t := theme.Active
	body := lipgloss.NewStyle().
		Foreground(t.TextPrimary).
		Background(t.Surface).
		Width(components.CardInnerWidth(w)).
		Render(a.rec.Result.Summary)
	return components.ContentCard("Summary", body, w)
}

func (a App) forecastTableCard(w int) string {
	t := theme.Active
	r := a.rec.Result
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	peak := 0
	labelW := 3
	for _, p := range r.Forecast {
		peak = max(peak, p.Predicted)
		labelW = max(labelW, lipgloss.Width(p.Month))
	}
	barW := max(5, components.CardInnerWidth(w)-labelW-10)

	lines := make([]string, 0, len(r.Forecast))
	for _, p := range r.Forecast {
		lines = append(lines,
			label.Render(fmt.Sprintf("%-*s ", labelW, p.Month))+
				value.Render(fmt.Sprintf("%7s ", cli.FormatNumber(int64(p.Predicted))))+
				components.HBar(float64(p.Predicted), float64(peak), barW, t.Forecast))
	}
	return components.ContentCard("Forecast by period", strings.Join(lines, "\n"), w)
}
