package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/theirongolddev/demandcast/internal/cli"
	"github.com/theirongolddev/demandcast/internal/config"
	"github.com/theirongolddev/demandcast/internal/pipeline"
	"github.com/theirongolddev/demandcast/internal/source"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare FILE",
	Short: "Run every model on a sales file and rank them",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

type comparisonRow struct {
	Rank      int     `json:"rank" yaml:"rank"`
	Model     string  `json:"model" yaml:"model"`
	Error     string  `json:"error,omitempty" yaml:"error,omitempty"`
	Units     int     `json:"predictedUnits" yaml:"predictedUnits"`
	Trend     string  `json:"salesTrend" yaml:"salesTrend"`
	Peak      string  `json:"peakDemandPeriod" yaml:"peakDemandPeriod"`
	Accuracy  float64 `json:"accuracy" yaml:"accuracy"`
	F1Score   float64 `json:"f1Score" yaml:"f1Score"`
	MAE       int     `json:"mae" yaml:"mae"`
	Benchmark float64 `json:"benchmarkAccuracy" yaml:"benchmarkAccuracy"`
}

func runCompare(cmd *cobra.Command, args []string) error {
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

	progress("Running %d models on %s...\n", len(config.Catalog(cfg)), ds.Name)
	results := pipeline.Compare(ds.CSV, opts, config.Catalog(cfg))

	out := make([]comparisonRow, 0, len(results))
	for i, c := range results {
		row := comparisonRow{Rank: i + 1, Model: c.Model.String(), Benchmark: c.Benchmark.Accuracy}
		if c.Err != nil {
			row.Error = c.Err.Error()
		} else {
			r := c.Result
			row.Units, row.Trend, row.Peak = r.PredictedUnits, r.SalesTrend, r.PeakDemandPeriod
			row.Accuracy, row.F1Score, row.MAE = r.Accuracy, r.F1Score, r.MAE
		}
		out = append(out, row)
	}

	if format != cli.FormatTable {
		return cli.Export(os.Stdout, format, out)
	}

	if len(out) > 0 && out[0].Error != "" {
		// Every model sees the same rows, so a failure is the same for all.
		return results[0].Err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("MODEL COMPARISON  " + ds.Name))
	fmt.Println()

	rows := make([][]string, 0, len(out))
	for _, r := range out {
		if r.Error != "" {
			rows = append(rows, []string{strconv.Itoa(r.Rank), r.Model, "-", "-", "-", "-", "-", "-", cli.FormatPercent(r.Benchmark)})
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(r.Rank),
			r.Model,
			cli.FormatNumber(int64(r.Units)),
			r.Trend,
			r.Peak,
			cli.FormatPercent(r.Accuracy),
			cli.FormatScore(r.F1Score),
			cli.FormatNumber(int64(r.MAE)),
			cli.FormatPercent(r.Benchmark),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"#", "Model", "Units", "Trend", "Peak", "Accuracy", "F1", "MAE", "Catalog"},
		Rows:     rows,
		LeftCols: 2,
	}))
	return nil
}
