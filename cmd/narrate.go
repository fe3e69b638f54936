package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/demandcast/internal/cli"
	"github.com/theirongolddev/demandcast/internal/config"
	"github.com/theirongolddev/demandcast/internal/narrative"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var flagNarrateTimeout time.Duration

var narrateCmd = &cobra.Command{
	Use:   "narrate [ID|latest]",
	Short: "Ask Gemini for a written narrative of a stored forecast",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNarrate,
}

func init() {
	narrateCmd.Flags().DurationVar(&flagNarrateTimeout, "timeout", 90*time.Second, "Overall request timeout")
	rootCmd.AddCommand(narrateCmd)
}

func runNarrate(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	ref := "latest"
	if len(args) == 1 {
		ref = args[0]
	}
	rec, err := resolveRecord(ref)
	if err != nil {
		return err
	}

	client, err := narrative.NewClient(config.GetGeminiAPIKey(cfg), cfg.Gemini.Model)
	if errors.Is(err, narrative.ErrNoAPIKey) {
		return errors.New("no Gemini API key: set GEMINI_API_KEY or run `demandcast setup`")
	}
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), flagNarrateTimeout)
	defer cancel()

	progress("Asking %s about %s...\n", client.Model(), cli.ShortID(rec.ID))
	n, err := narrative.Narrate(ctx, client, rec)
	if err != nil {
		return err
	}

	if format != cli.FormatTable {
		return cli.Export(os.Stdout, format, n)
	}

	headline := n.Headline
	if headline == "" {
		headline = "NARRATIVE  " + rec.Source
	}
	wrap := lipgloss.NewStyle().Width(76).PaddingLeft(2)
	fmt.Println()
	fmt.Println(cli.RenderTitle(headline))
	fmt.Println()
	fmt.Println(wrap.Render(n.Narrative))
	printBullets("Drivers", n.Drivers)
	printBullets("Actions", n.Actions)
	fmt.Println()
	note := fmt.Sprintf("  %s on %s, %s", n.Model, rec.Source, cli.ShortID(rec.ID))
	if n.Repaired {
		note += " (reply JSON was repaired)"
	}
	fmt.Println(note)
	return nil
}

func printBullets(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n  %s\n", title)
	for _, it := range items {
		fmt.Printf("    - %s\n", it)
	}
}
