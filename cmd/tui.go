package cmd

import (
	"fmt"

	"github.com/theirongolddev/demandcast/internal/config"
	"github.com/theirongolddev/demandcast/internal/tui"
	"github.com/theirongolddev/demandcast/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui FILE",
	Short: "Launch the interactive forecast dashboard",
	Args:  cobra.ExactArgs(1),
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	opts, err := forecastOptions(cmd)
	if err != nil {
		return err
	}
	theme.Apply(cfg.Appearance.Theme)

	hist := ""
	if historyEnabled() {
		hist = historyPath()
	}

	app := tui.NewApp(tui.Options{
		Path:        args[0],
		Forecast:    opts,
		Catalog:     config.Catalog(cfg),
		HistoryPath: hist,
		NeedSetup:   !config.Exists(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
