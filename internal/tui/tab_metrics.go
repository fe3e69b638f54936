package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/demandcast/internal/cli"
	"github.com/theirongolddev/demandcast/internal/tui/components"
	"github.com/theirongolddev/demandcast/internal/tui/theme"
)

func (a App) renderMetricsTab(cw int) string {
	r := a.rec.Result

	cards := components.MetricCardRow([]components.Card{
		{Label: "Accuracy", Value: cli.FormatPercent(r.Accuracy), Color: components.ColorForScore(r.Accuracy), Note: a.catalogNote()},
		{Label: "F1 score", Value: cli.FormatScore(r.F1Score)},
		{Label: "MAE", Value: cli.FormatNumber(int64(r.MAE)), Note: "units"},
		{Label: "RMSE", Value: cli.FormatNumber(int64(r.RMSE)), Note: "units"},
		{Label: "R²", Value: cli.FormatScore(r.RSquared)},
	}, cw)

	if a.isCompactLayout() {
		return strings.Join([]string{
			cards,
			a.scoresCard(cw),
			a.confusionCard(cw),
			a.featuresCard(cw),
			a.profileCard(cw),
		}, "\n")
	}
	top := components.LayoutRow(cw, 3)
	bottom := components.LayoutRow(cw, 2)
	return strings.Join([]string{
		cards,
		components.CardRow([]string{a.scoresCard(top[0]), a.confusionCard(top[1]), a.profileCard(top[2])}),
		components.CardRow([]string{a.featuresCard(bottom[0]), a.splitCard(bottom[1])}),
	}, "\n")
}

// catalogNote compares the run's accuracy with the model's catalog figure.
func (a App) catalogNote() string {
	for _, b := range a.catalog {
		if b.Model == a.opts.Model {
			return cli.FormatDelta(a.rec.Result.Accuracy, b.Accuracy) + " vs catalog"
		}
	}
	return ""
}

func (a App) scoresCard(w int) string {
	t := theme.Active
	r := a.rec.Result
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	barW := max(10, components.CardInnerWidth(w)-14)

	rows := []struct {
		name  string
		score float64
	}{
		{"Accuracy", r.Accuracy},
		{"F1 score", r.F1Score},
		{"ROC AUC", r.RocAucScore},
		{"R²", r.RSquared},
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = label.Render(fmt.Sprintf("%-9s ", row.name)) + components.ScoreBar(row.score, barW)
	}
	return components.ContentCard("Evaluation", strings.Join(lines, "\n"), w)
}

func (a App) confusionCard(w int) string {
	t := theme.Active
	c := a.rec.Result.ConfusionMatrix
	head := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	good := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Bold(true)
	bad := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)

	lines := []string{
		head.Render(fmt.Sprintf("%-10s %8s %8s", "", "pred +", "pred -")),
		head.Render(fmt.Sprintf("%-10s ", "actual +")) + good.Render(fmt.Sprintf("%8d", c.TruePositive)) + bad.Render(fmt.Sprintf(" %8d", c.FalseNegative)),
		head.Render(fmt.Sprintf("%-10s ", "actual -")) + bad.Render(fmt.Sprintf("%8d", c.FalsePositive)) + good.Render(fmt.Sprintf(" %8d", c.TrueNegative)),
		"",
		head.Render(fmt.Sprintf("%d simulated predictions", c.Total())),
	}
	return components.ContentCard("Confusion matrix", strings.Join(lines, "\n"), w)
}

func (a App) featuresCard(w int) string {
	t := theme.Active
	features := a.rec.Result.FeatureImportance
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	top := 0.0
	nameW := 0
	for _, f := range features {
		top = max(top, f.Importance)
		nameW = max(nameW, len(f.Feature))
	}
	barW := max(5, components.CardInnerWidth(w)-nameW-7)

	lines := make([]string, len(features))
	for i, f := range features {
		lines[i] = label.Render(fmt.Sprintf("%-*s ", nameW, f.Feature)) +
			components.HBar(f.Importance, top, barW, t.Accent) +
			value.Render(fmt.Sprintf(" %.2f", f.Importance))
	}
	return components.ContentCard("Feature importance", strings.Join(lines, "\n"), w)
}

func (a App) profileCard(w int) string {
	t := theme.Active
	p := a.profile
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	rows := [][2]string{
		{"Data lines", fmt.Sprintf("%d", p.DataLines)},
		{"Usable rows", fmt.Sprintf("%d", len(p.Valid))},
		{"Discarded", fmt.Sprintf("%d", len(p.Dropped))},
		{"Range", p.FirstLabel() + " – " + p.LastLabel()},
		{"Min / max", cli.FormatNumber(int64(p.MinSales)) + " / " + cli.FormatNumber(int64(p.MaxSales))},
		{"Mean", fmt.Sprintf("%.1f", p.MeanSales)},
		{"Median", fmt.Sprintf("%.1f", p.MedianSales)},
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = label.Render(fmt.Sprintf("%-12s", r[0])) + value.Render(r[1])
	}
	return components.ContentCard("Input data", strings.Join(lines, "\n"), w)
}

func (a App) splitCard(w int) string {
	t := theme.Active
	p := a.profile
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	total := p.TrainSize + p.TestSize
	barW := max(10, components.CardInnerWidth(w)-16)

	lines := []string{
		label.Render(fmt.Sprintf("%-6s %4d ", "train", p.TrainSize)) + components.HBar(float64(p.TrainSize), float64(total), barW, t.Historical),
		label.Render(fmt.Sprintf("%-6s %4d ", "test", p.TestSize)) + components.HBar(float64(p.TestSize), float64(total), barW, t.Forecast),
		"",
		label.Render("The last quarter of the history is held out and scored;"),
		label.Render("the projection is fitted on the full history."),
	}
	return components.ContentCard("Train / test split", strings.Join(lines, "\n"), w)
}
