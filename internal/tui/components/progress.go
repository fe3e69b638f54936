package components

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/demandcast/internal/tui/theme"
)

// ScoreBar renders a static gauge for a score in [0, 1], colored by level.
func ScoreBar(score float64, width int) string {
	p := progress.New(
		progress.WithSolidFill(string(ColorForScore(score))),
		progress.WithWidth(width),
	)
	p.EmptyColor = string(theme.Active.TextDim)
	p.PercentageStyle = lipgloss.NewStyle().Foreground(theme.Active.TextMuted).Background(theme.Active.Surface)
	return p.ViewAs(score)
}

// ColorForScore returns green, yellow, orange or red by score level.
func ColorForScore(score float64) lipgloss.Color {
	t := theme.Active
	switch {
	case score >= 0.9:
		return t.Green
	case score >= 0.75:
		return t.Yellow
	case score >= 0.5:
		return t.Orange
	default:
		return t.Red
	}
}
