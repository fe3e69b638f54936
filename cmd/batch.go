package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/demandcast/internal/cli"
	"github.com/theirongolddev/demandcast/internal/pipeline"

	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch DIR",
	Short: "Forecast every CSV and XLSX file in a directory",
	Long: "Forecast every sales file under DIR with a bounded worker pool.\n" +
		"With history enabled, files unchanged since their last stored forecast are skipped.",
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	opts, err := forecastOptions(cmd)
	if err != nil {
		return err
	}
	dir := args[0]
	if fi, err := os.Stat(dir); err != nil {
		return err
	} else if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Forecasting %s", cli.RenderProgressBar(current, total, 24))
	}

	progress("Scanning %s...\n", dir)
	result, err := loadBatch(dir, opts, progressFn)
	if err != nil {
		return err
	}
	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  %d forecast, %d unchanged, %d failed    \n",
			len(result.Results), result.Unchanged, len(result.Failed))
	}
	if result.SaveErrors > 0 {
		progress("%d forecasts could not be saved to history\n", result.SaveErrors)
	}

	if format != cli.FormatTable {
		records := make([]any, 0, len(result.Results))
		for _, fr := range result.Results {
			records = append(records, fr.Record)
		}
		return cli.Export(os.Stdout, format, records)
	}

	if result.TotalFiles == 0 {
		fmt.Println("\n  No CSV or XLSX files found.")
		return nil
	}

	if len(result.Results) > 0 {
		rows := make([][]string, 0, len(result.Results))
		for _, fr := range result.Results {
			r := fr.Record.Result
			id := "-"
			if fr.Record.ID != "" {
				id = cli.ShortID(fr.Record.ID)
			}
			rows = append(rows, []string{
				fr.File.Dataset,
				r.ModelUsed,
				cli.FormatNumber(int64(r.PredictedUnits)),
				r.SalesTrend,
				r.PeakDemandPeriod,
				cli.FormatPercent(r.Accuracy),
				id,
			})
		}
		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("BATCH  %s  %s units", dir, cli.FormatUnits(result.TotalUnits()))))
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Headers:  []string{"Dataset", "Model", "Units", "Trend", "Peak", "Accuracy", "ID"},
			Rows:     rows,
			LeftCols: 2,
		}))
	}

	if len(result.Failed) > 0 {
		fmt.Println("  Failed")
		for _, fr := range result.Failed {
			fmt.Printf("    %s: %v\n", fr.File.Path, fr.Err)
		}
		fmt.Println()
	}
	return nil
}

// loadBatch runs the incremental path when history is on and a plain run
// otherwise.
func loadBatch(dir string, opts pipeline.Options, progressFn pipeline.ProgressFunc) (*pipeline.IncrementalResult, error) {
	if historyEnabled() {
		st, err := openHistory()
		if err == nil {
			defer func() { _ = st.Close() }()
			return pipeline.LoadIncremental(dir, opts, st, progressFn)
		}
		progress("History unavailable, forecasting every file: %v\n", err)
	}
	result, err := pipeline.Load(dir, opts, progressFn)
	if err != nil {
		return nil, err
	}
	return &pipeline.IncrementalResult{BatchResult: *result, Forecast: result.TotalFiles}, nil
}
