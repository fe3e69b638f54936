package cmd

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/demandcast/internal/cli"
	"github.com/theirongolddev/demandcast/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagReportMD   string
	flagReportHTML string
	flagReportPNG  string
	flagReportXLSX string
)

var reportCmd = &cobra.Command{
	Use:   "report [ID|latest]",
	Short: "Write a Markdown, HTML, PNG or XLSX report for a stored forecast",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&flagReportMD, "md", "", "Write the Markdown report to a file")
	reportCmd.Flags().StringVar(&flagReportHTML, "html", "", "Write a standalone HTML report")
	reportCmd.Flags().StringVar(&flagReportPNG, "png", "", "Write the forecast chart as PNG")
	reportCmd.Flags().StringVar(&flagReportXLSX, "xlsx", "", "Write the chart data and metrics as XLSX")
	rootCmd.AddCommand(reportCmd)
}

func runReport(_ *cobra.Command, args []string) error {
	ref := "latest"
	if len(args) == 1 {
		ref = args[0]
	}
	rec, err := resolveRecord(ref)
	if err != nil {
		return err
	}

	md := cli.MarkdownReport(rec)
	if flagReportMD == "" && flagReportHTML == "" && flagReportPNG == "" && flagReportXLSX == "" {
		fmt.Print(md)
		return nil
	}

	if flagReportMD != "" {
		if err := os.WriteFile(flagReportMD, []byte(md), 0o644); err != nil { //nolint:gosec // report is meant to be shared
			return fmt.Errorf("writing %s: %w", flagReportMD, err)
		}
		fmt.Printf("  Markdown: %s\n", flagReportMD)
	}

	if flagReportPNG != "" {
		if err := cli.SavePlot(rec, flagReportPNG); err != nil {
			return err
		}
		fmt.Printf("  Chart:    %s\n", flagReportPNG)
	}

	if flagReportHTML != "" {
		chartSrc, err := htmlChartSrc(rec)
		if err != nil {
			return err
		}
		page, err := cli.HTMLReport("Demand forecast: "+rec.Source, md, chartSrc)
		if err != nil {
			return err
		}
		if err := os.WriteFile(flagReportHTML, []byte(page), 0o644); err != nil { //nolint:gosec // report is meant to be shared
			return fmt.Errorf("writing %s: %w", flagReportHTML, err)
		}
		fmt.Printf("  HTML:     %s\n", flagReportHTML)
	}

	if flagReportXLSX != "" {
		if err := writeFile(flagReportXLSX, func(f *os.File) error { return cli.WriteWorkbook(f, rec) }); err != nil {
			return err
		}
		fmt.Printf("  XLSX:     %s\n", flagReportXLSX)
	}
	return nil
}

// htmlChartSrc links the PNG written alongside the report, or inlines the
// chart as a data URI when no PNG was requested.
func htmlChartSrc(rec model.ForecastRecord) (string, error) {
	if flagReportPNG != "" {
		rel, err := filepath.Rel(filepath.Dir(flagReportHTML), flagReportPNG)
		if err != nil {
			return flagReportPNG, nil
		}
		return filepath.ToSlash(rel), nil
	}
	var buf bytes.Buffer
	if err := cli.WritePlotPNG(&buf, rec); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
