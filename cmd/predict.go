package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/demandcast/internal/cli"
	"github.com/theirongolddev/demandcast/internal/forecast"
	"github.com/theirongolddev/demandcast/internal/model"
	"github.com/theirongolddev/demandcast/internal/pipeline"
	"github.com/theirongolddev/demandcast/internal/source"

	"github.com/spf13/cobra"
)

var flagPredictXLSX string

var predictCmd = &cobra.Command{
	Use:   "predict FILE",
	Short: "Forecast the next six periods of a sales file",
	Args:  cobra.ExactArgs(1),
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().StringVar(&flagPredictXLSX, "xlsx", "", "Also write the forecast to an XLSX workbook")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	opts, err := forecastOptions(cmd)
	if err != nil {
		return err
	}

	ds, err := source.ReadPath(args[0])
	if err != nil {
		return err
	}
	progress("Forecasting %s with %s...\n", ds.Name, opts.Model)

	rec, err := pipeline.ForecastDataset(ds, opts)
	if err != nil {
		var de *forecast.DataError
		if errors.As(err, &de) && !flagQuiet {
			if dropped := cli.RenderDropped(forecast.Profile(ds.CSV).Dropped, 10); dropped != "" {
				fmt.Fprintf(os.Stderr, "\n  Discarded rows:\n%s\n", dropped)
			}
		}
		return err
	}

	if historyEnabled() {
		if err := saveRecord(&rec); err != nil {
			progress("History not updated: %v\n", err)
		}
	}

	if flagPredictXLSX != "" {
		if err := writeFile(flagPredictXLSX, func(f *os.File) error { return cli.WriteWorkbook(f, rec) }); err != nil {
			return err
		}
		progress("Wrote %s\n", flagPredictXLSX)
	}

	if format != cli.FormatTable {
		return cli.Export(os.Stdout, format, rec)
	}
	printForecast(rec)
	return nil
}

func saveRecord(rec *model.ForecastRecord) error {
	st, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	return st.SaveForecast(rec)
}

func printForecast(rec model.ForecastRecord) {
	r := rec.Result

	title := fmt.Sprintf("DEMAND FORECAST  %s  %s", rec.Source, r.ModelUsed)
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()
	fmt.Println(cli.RenderCards(r))
	fmt.Println()
	fmt.Println(cli.RenderSummary(r, 76))
	fmt.Println()
	fmt.Printf("  %s\n\n", cli.RenderSeries(r))
	fmt.Print(cli.RenderForecastChart(r, 40))
	fmt.Println()
	fmt.Print(cli.RenderTable(metricsTable(r)))
	fmt.Print(cli.RenderTable(forecastTable(r)))
	if rec.ID != "" {
		fmt.Printf("  Saved as %s\n", cli.ShortID(rec.ID))
	}
	fmt.Println()
}

func metricsTable(r model.ForecastResult) cli.Table {
	return cli.Table{
		Title:   "Evaluation",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Accuracy", cli.FormatPercent(r.Accuracy)},
			{"F1 score", cli.FormatScore(r.F1Score)},
			{"MAE", cli.FormatNumber(int64(r.MAE))},
			{"RMSE", cli.FormatNumber(int64(r.RMSE))},
			{"R²", cli.FormatScore(r.RSquared)},
			{"ROC AUC", cli.FormatScore(r.RocAucScore)},
		},
	}
}

func forecastTable(r model.ForecastResult) cli.Table {
	rows := make([][]string, 0, len(r.Forecast))
	for _, p := range r.Forecast {
		rows = append(rows, []string{p.Month, cli.FormatNumber(int64(p.Predicted))})
	}
	return cli.Table{
		Title:   "Forecast",
		Headers: []string{"Period", "Units"},
		Rows:    rows,
	}
}

// writeFile creates path and hands it to write, closing it afterwards.
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path) //nolint:gosec // output path is chosen by the local user
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
