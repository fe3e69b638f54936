package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/theirongolddev/demandcast/internal/cli"
	"github.com/theirongolddev/demandcast/internal/forecast"
	"github.com/theirongolddev/demandcast/internal/source"

	"github.com/spf13/cobra"
)

var flagInspectLimit int

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Profile a sales file without forecasting it",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().IntVar(&flagInspectLimit, "limit", 20, "Maximum discarded rows to list (0 for all)")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	ds, err := source.ReadPath(args[0])
	if err != nil {
		return err
	}
	p := forecast.Profile(ds.CSV)

	if format != cli.FormatTable {
		return cli.Export(os.Stdout, format, p)
	}

	ready := "yes"
	if !p.Ready {
		ready = fmt.Sprintf("no (need %d valid rows)", forecast.MinRows)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("DATA PROFILE  " + ds.Name))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Field", "Value"},
		Rows: [][]string{
			{"Format", ds.Format},
			{"Data lines", strconv.Itoa(p.DataLines)},
			{"Valid rows", strconv.Itoa(len(p.Valid))},
			{"Discarded rows", strconv.Itoa(len(p.Dropped))},
			{"First period", p.FirstLabel()},
			{"Last period", p.LastLabel()},
			{"Min sales", cli.FormatNumber(int64(p.MinSales))},
			{"Max sales", cli.FormatNumber(int64(p.MaxSales))},
			{"Mean sales", fmt.Sprintf("%.1f", p.MeanSales)},
			{"Median sales", fmt.Sprintf("%.1f", p.MedianSales)},
			{"Total sales", cli.FormatNumber(p.TotalSales)},
			{"Train / test", fmt.Sprintf("%d / %d", p.TrainSize, p.TestSize)},
			{"Ready", ready},
		},
	}))

	if len(p.Valid) > 1 {
		values := make([]float64, len(p.Valid))
		for i, v := range p.Valid {
			values[i] = float64(v.Sales)
		}
		fmt.Printf("  %s\n\n", cli.RenderSparkline(values))
	}

	if len(p.Dropped) > 0 {
		fmt.Println("  Discarded rows")
		fmt.Print(cli.RenderDropped(p.Dropped, flagInspectLimit))
		fmt.Println()
	}
	return nil
}
