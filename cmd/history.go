package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/demandcast/internal/cli"
	"github.com/theirongolddev/demandcast/internal/forecast"
	"github.com/theirongolddev/demandcast/internal/pipeline"
	"github.com/theirongolddev/demandcast/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagHistoryLimit  int
	flagHistorySource string
	flagHistoryDays   int
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"ls"},
	Short:   "List stored forecasts",
	RunE:    runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID|latest",
	Short: "Show a stored forecast",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm"},
	Short:   "Delete a stored forecast",
	Args:    cobra.ExactArgs(1),
	RunE:    runHistoryDelete,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize stored forecasts",
	RunE:  runHistoryStats,
}

func init() {
	historyCmd.PersistentFlags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Maximum forecasts to list (0 for all)")
	historyCmd.PersistentFlags().StringVar(&flagHistorySource, "source", "", "Filter to source (substring match)")
	historyCmd.PersistentFlags().IntVar(&flagHistoryDays, "days", 0, "Only forecasts from the last N days")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyStatsCmd)
	rootCmd.AddCommand(historyCmd)
}

func historySince() time.Time {
	if flagHistoryDays <= 0 {
		return time.Time{}
	}
	return time.Now().AddDate(0, 0, -flagHistoryDays)
}

func runHistoryList(_ *cobra.Command, _ []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	st, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	opts := store.ListOptions{Since: historySince(), Limit: flagHistoryLimit}
	if flagModel != "" {
		m, err := forecast.ParseModel(flagModel)
		if err != nil {
			return err
		}
		opts.Model = m.String()
	}
	if flagHistorySource != "" {
		// Source matching is a substring match, so the limit applies after it.
		opts.Limit = 0
	}
	records, err := st.ListForecasts(opts)
	if err != nil {
		return err
	}
	records = pipeline.FilterBySource(records, flagHistorySource)
	if flagHistoryLimit > 0 && len(records) > flagHistoryLimit {
		records = records[:flagHistoryLimit]
	}

	if format != cli.FormatTable {
		return cli.Export(os.Stdout, format, records)
	}
	if len(records) == 0 {
		fmt.Println("\n  No stored forecasts.")
		return nil
	}

	now := time.Now()
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			cli.ShortID(rec.ID),
			cli.FormatAge(rec.CreatedAt, now),
			rec.Source,
			rec.Model,
			cli.FormatNumber(int64(rec.Result.PredictedUnits)),
			rec.Result.SalesTrend,
			cli.FormatPercent(rec.Result.Accuracy),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("FORECAST HISTORY"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"ID", "Age", "Source", "Model", "Units", "Trend", "Accuracy"},
		Rows:     rows,
		LeftCols: 4,
	}))
	return nil
}

func runHistoryShow(_ *cobra.Command, args []string) error {
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
	if format != cli.FormatTable {
		return cli.Export(os.Stdout, format, rec)
	}
	printForecast(rec)
	return nil
}

func runHistoryDelete(_ *cobra.Command, args []string) error {
	st, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	rec, err := st.GetForecast(args[0])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no stored forecast matches %q", args[0])
		}
		return err
	}
	if err := st.DeleteForecast(rec.ID); err != nil {
		return err
	}
	fmt.Printf("  Deleted %s (%s, %s)\n", cli.ShortID(rec.ID), rec.Source, rec.Model)
	return nil
}

func runHistoryStats(_ *cobra.Command, _ []string) error {
	st, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	records, err := st.ListForecasts(store.ListOptions{})
	if err != nil {
		return err
	}
	if flagModel != "" {
		m, err := forecast.ParseModel(flagModel)
		if err != nil {
			return err
		}
		records = pipeline.FilterByModel(records, m.String())
	}
	records = pipeline.FilterBySource(records, flagHistorySource)
	since := historySince()
	summary := pipeline.Aggregate(records, since, time.Time{})
	if summary.Forecasts == 0 {
		fmt.Println("\n  No stored forecasts.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("HISTORY SUMMARY"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Figure", "Value"},
		Rows: [][]string{
			{"Forecasts", cli.FormatNumber(int64(summary.Forecasts))},
			{"Sources", cli.FormatNumber(int64(summary.Sources))},
			{"Predicted units", cli.FormatUnits(summary.TotalUnits)},
			{"Mean accuracy", cli.FormatPercent(summary.MeanAccuracy)},
			{"Increasing", cli.FormatPercent(summary.IncreasingRate)},
			{"First", summary.First.Local().Format("2006-01-02 15:04")},
			{"Last", summary.Last.Local().Format("2006-01-02 15:04")},
		},
	}))

	days := pipeline.AggregateDays(records, since, time.Time{})
	if len(days) > 1 {
		// AggregateDays is newest first; the sparkline reads left to right.
		values := make([]float64, len(days))
		for i, d := range days {
			values[len(days)-1-i] = float64(d.Runs)
		}
		fmt.Printf("  Runs per day  %s\n\n", cli.RenderSparkline(values))
	}

	periods, err := st.PeriodTotals(6)
	if err != nil {
		return err
	}
	if len(periods) > 0 {
		rows := make([][]string, 0, len(periods))
		for _, p := range periods {
			rows = append(rows, []string{p.Month, cli.FormatNumber(int64(p.Predicted))})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Busiest forecast periods",
			Headers: []string{"Period", "Units"},
			Rows:    rows,
		}))
	}
	return nil
}
