package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/demandcast/internal/tui/theme"
)

// RenderStatusBar renders the bottom bar with key hints on the left and
// run details on the right.
func RenderStatusBar(width int, right string) string {
	t := theme.Active
	style := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	left := " [?]help  [m]odel  [r]eseed  [s]ave  [q]uit"
	if right != "" {
		right += " "
	}
	pad := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return style.Width(width).Render(left + strings.Repeat(" ", pad) + right)
}
