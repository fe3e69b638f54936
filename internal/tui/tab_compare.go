package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/demandcast/internal/cli"
	"github.com/theirongolddev/demandcast/internal/tui/components"
	"github.com/theirongolddev/demandcast/internal/tui/theme"
)

func (a App) renderCompareTab(cw int) string {
	t := theme.Active
	head := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	current := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	failed := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	cols := []struct {
		title   string
		width   int
		left    bool
		compact bool // shown in compact layouts
	}{
		{"#", 3, true, true},
		{"Model", 14, true, true},
		{"Units", 9, false, true},
		{"Trend", 11, true, true},
		{"Peak", 8, true, false},
		{"Accuracy", 9, false, true},
		{"F1", 7, false, true},
		{"MAE", 7, false, false},
		{"Catalog", 9, false, false},
		{"Delta", 9, false, true},
	}
	compact := a.isCompactLayout()
	render := func(cells []string) string {
		parts := make([]string, 0, len(cols))
		for i, c := range cols {
			if compact && !c.compact {
				continue
			}
			if c.left {
				parts = append(parts, fmt.Sprintf("%-*s", c.width, cells[i]))
			} else {
				parts = append(parts, fmt.Sprintf("%*s", c.width, cells[i]))
			}
		}
		return strings.Join(parts, " ")
	}

	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.title
	}
	lines := []string{head.Render(render(titles))}

	for i, c := range a.comparisons {
		if c.Err != nil {
			lines = append(lines, failed.Render(fmt.Sprintf("%-3s %-14s %s", "-", c.Model.String(), c.Err)))
			continue
		}
		r := c.Result
		line := render([]string{
			fmt.Sprintf("%d", i+1),
			c.Model.String(),
			cli.FormatNumber(int64(r.PredictedUnits)),
			r.SalesTrend,
			r.PeakDemandPeriod,
			cli.FormatPercent(r.Accuracy),
			cli.FormatScore(r.F1Score),
			cli.FormatNumber(int64(r.MAE)),
			cli.FormatPercent(c.Benchmark.Accuracy),
			cli.FormatDelta(r.Accuracy, c.Benchmark.Accuracy),
		})
		style := row
		if c.Model == a.opts.Model {
			style = current
		}
		lines = append(lines, style.Render(line))
	}

	table := components.ContentCard("All models on "+a.rec.Source, strings.Join(lines, "\n"), cw)

	units := make([]string, 0, len(a.comparisons))
	peak := 0
	for _, c := range a.comparisons {
		if c.Err == nil {
			peak = max(peak, c.Result.PredictedUnits)
		}
	}
	barW := max(10, components.CardInnerWidth(cw)-28)
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	for _, c := range a.comparisons {
		if c.Err != nil {
			continue
		}
		units = append(units, label.Render(fmt.Sprintf("%-14s %9s ", c.Model.String(), cli.FormatNumber(int64(c.Result.PredictedUnits))))+
			components.HBar(float64(c.Result.PredictedUnits), float64(peak), barW, trendColor(c.Result.SalesTrend)))
	}
	bars := components.ContentCard("Predicted units", strings.Join(units, "\n"), cw)

	hint := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background).
		Render(" Ranked by held-out accuracy, then F1, then MAE. Press m to switch the active model.")
	return strings.Join([]string{table, bars, hint}, "\n")
}
