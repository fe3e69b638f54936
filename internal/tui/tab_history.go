package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/demandcast/internal/cli"
	"github.com/theirongolddev/demandcast/internal/model"
	"github.com/theirongolddev/demandcast/internal/tui/components"
	"github.com/theirongolddev/demandcast/internal/tui/theme"
)

func (a App) renderHistoryTab(cw, h int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	switch {
	case a.historyPath == "":
		return components.ContentCard("History", muted.Render("Forecast history is disabled. Set keep_history = true or drop --no-history."), cw)
	case a.historyErr != nil:
		return components.ContentCard("History", lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render(a.historyErr.Error()), cw)
	case len(a.history) == 0:
		return components.ContentCard("History", muted.Render("No stored forecasts yet. Press s to save the current one."), cw)
	}

	if a.isCompactLayout() {
		listH := max(3, h/2-2)
		return a.historyList(cw, listH) + "\n" + a.historyDetail(a.history[a.histCursor], cw)
	}
	widths := components.LayoutRow(cw, 5)
	listW := widths[0] + widths[1] + widths[2]
	detailW := cw - listW
	return components.CardRow([]string{
		a.historyList(listW, h-3),
		a.historyDetail(a.history[a.histCursor], detailW),
	})
}

func (a App) historyList(w, rows int) string {
	t := theme.Active
	head := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	sel := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)

	inner := components.CardInnerWidth(w)
	srcW := max(8, inner-60)
	format := fmt.Sprintf("%%-8s %%-8s %%-%ds %%-13s %%8s %%-10s %%7s", srcW)

	// Keep the cursor inside the visible window.
	visible := max(1, rows-1)
	offset := 0
	if a.histCursor >= visible {
		offset = a.histCursor - visible + 1
	}
	end := min(len(a.history), offset+visible)

	now := time.Now()
	lines := []string{head.Render(fmt.Sprintf(format, "ID", "Age", "Source", "Model", "Units", "Trend", "Acc"))}
	for i := offset; i < end; i++ {
		rec := a.history[i]
		line := fmt.Sprintf(format,
			cli.ShortID(rec.ID),
			cli.FormatAge(rec.CreatedAt, now),
			truncStr(filepath.Base(rec.Source), srcW),
			rec.Model,
			cli.FormatNumber(int64(rec.Result.PredictedUnits)),
			rec.Result.SalesTrend,
			cli.FormatPercent(rec.Result.Accuracy),
		)
		style := row
		if i == a.histCursor {
			style = sel
		}
		lines = append(lines, style.Render(line))
	}

	title := fmt.Sprintf("History (%d/%d)", a.histCursor+1, len(a.history))
	return components.ContentCard(title, strings.Join(lines, "\n"), w)
}

func (a App) historyDetail(rec model.ForecastRecord, w int) string {
	t := theme.Active
	r := rec.Result
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	inner := components.CardInnerWidth(w)

	hist := make([]float64, 0, len(r.ChartData))
	for _, row := range r.HistoricalSeries() {
		hist = append(hist, float64(row.Historical))
	}
	fc := make([]float64, len(r.Forecast))
	for i, p := range r.Forecast {
		fc[i] = float64(p.Predicted)
	}

	seed := "random"
	if rec.Seed != nil {
		seed = fmt.Sprintf("%d", *rec.Seed)
	}
	rows := [][2]string{
		{"Created", rec.CreatedAt.Local().Format("2006-01-02 15:04")},
		{"Source", truncStr(rec.Source, inner-10)},
		{"Model", rec.Model + " (" + r.Confidence + ")"},
		{"Seed", seed},
		{"Peak", r.PeakDemandPeriod},
		{"F1 / R²", cli.FormatScore(r.F1Score) + " / " + cli.FormatScore(r.RSquared)},
	}
	lines := make([]string, 0, len(rows)+4)
	for _, row := range rows {
		lines = append(lines, label.Render(fmt.Sprintf("%-9s ", row[0]))+value.Render(row[1]))
	}
	lines = append(lines, "",
		components.Sparkline(hist, t.Historical)+lipgloss.NewStyle().Background(t.Surface).Render(" ")+components.Sparkline(fc, t.Forecast),
		"",
		value.Width(inner).Render(r.Summary),
	)
	return components.ContentCard("Forecast "+cli.ShortID(rec.ID), strings.Join(lines, "\n"), w)
}
