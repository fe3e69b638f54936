// Package cmd implements the demandcast CLI commands.
package cmd

import (
	"fmt"

	"github.com/theirongolddev/demandcast/internal/config"
	"github.com/theirongolddev/demandcast/internal/pipeline"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Default model: %s\n", cfg.General.Model())
	fmt.Printf("    Period labels: %s\n", cfg.General.Labels())
	if cfg.General.Seed != nil {
		fmt.Printf("    Seed:          %d\n", *cfg.General.Seed)
	} else {
		fmt.Println("    Seed:          random")
	}
	fmt.Printf("    Keep history:  %v\n", cfg.General.KeepHistory)
	fmt.Printf("    History file:  %s\n", historyPath())
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:       %s\n", config.GetServerAddr(cfg))
	if cfg.Server.InboxDir != "" {
		fmt.Printf("    Inbox:         %s\n", cfg.Server.InboxDir)
	}
	fmt.Printf("    Poll interval: %ds\n", cfg.Server.IntervalSec)
	fmt.Printf("    Events buffer: %d\n", cfg.Server.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Gemini]")
	if key := config.GetGeminiAPIKey(cfg); key != "" {
		fmt.Printf("    API key: %s\n", maskAPIKey(key))
	} else {
		fmt.Println("    API key: not configured")
	}
	fmt.Printf("    Model:   %s\n", cfg.Gemini.Model)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	if len(cfg.Catalog.Overrides) > 0 {
		fmt.Println("  [Catalog]")
		for _, b := range config.Catalog(cfg) {
			if b.Overridden {
				fmt.Printf("    %-14s accuracy %.2f  f1 %.2f\n", b.Model, b.Accuracy, b.F1Score)
			}
		}
		fmt.Println()
	}

	fmt.Printf("  Data directory: %s\n", pipeline.DataDir(dataDirOverride()))
	fmt.Println("  Run `demandcast setup` to reconfigure.")
	return nil
}
