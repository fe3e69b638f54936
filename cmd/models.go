package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/demandcast/internal/cli"
	"github.com/theirongolddev/demandcast/internal/config"
	"github.com/theirongolddev/demandcast/internal/model"
	"github.com/theirongolddev/demandcast/internal/pipeline"
	"github.com/theirongolddev/demandcast/internal/store"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Model catalog and history usage",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

type modelRow struct {
	Model        string  `json:"model" yaml:"model"`
	NoiseFactor  float64 `json:"noiseFactor" yaml:"noiseFactor"`
	Confidence   string  `json:"confidence" yaml:"confidence"`
	Accuracy     float64 `json:"accuracy" yaml:"accuracy"`
	F1Score      float64 `json:"f1Score" yaml:"f1Score"`
	Overridden   bool    `json:"overridden,omitempty" yaml:"overridden,omitempty"`
	Default      bool    `json:"default,omitempty" yaml:"default,omitempty"`
	Runs         int     `json:"runs" yaml:"runs"`
	MeanAccuracy float64 `json:"meanAccuracy,omitempty" yaml:"meanAccuracy,omitempty"`
}

func runModels(_ *cobra.Command, _ []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	usage := make(map[string]model.ModelStats)
	if historyEnabled() {
		for _, ms := range historyModelStats() {
			usage[ms.Model] = ms
		}
	}

	def := cfg.General.Model()
	catalog := config.Catalog(cfg)
	out := make([]modelRow, 0, len(catalog))
	for _, b := range catalog {
		p := b.Model.Preset()
		ms := usage[b.Model.String()]
		out = append(out, modelRow{
			Model:        b.Model.String(),
			NoiseFactor:  p.NoiseFactor,
			Confidence:   p.Confidence,
			Accuracy:     b.Accuracy,
			F1Score:      b.F1Score,
			Overridden:   b.Overridden,
			Default:      b.Model == def,
			Runs:         ms.Runs,
			MeanAccuracy: ms.MeanAccuracy,
		})
	}

	if format != cli.FormatTable {
		return cli.Export(os.Stdout, format, out)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("MODELS"))
	fmt.Println()

	rows := make([][]string, 0, len(out))
	for _, r := range out {
		name := r.Model
		if r.Default {
			name += " *"
		}
		acc := cli.FormatPercent(r.Accuracy)
		if r.Overridden {
			acc += " (cfg)"
		}
		mean := "-"
		if r.Runs > 0 {
			mean = cli.FormatPercent(r.MeanAccuracy)
		}
		rows = append(rows, []string{
			name,
			fmt.Sprintf("±%.0f%%", r.NoiseFactor*100),
			r.Confidence,
			acc,
			cli.FormatScore(r.F1Score),
			cli.FormatNumber(int64(r.Runs)),
			mean,
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Model", "Noise", "Confidence", "Catalog acc.", "Catalog F1", "Runs", "Mean acc."},
		Rows:     rows,
		LeftCols: 3,
	}))
	fmt.Println("  * default model")
	return nil
}

// historyModelStats returns per-model usage from history, or nil when the
// history cannot be read.
func historyModelStats() []model.ModelStats {
	st, err := openHistory()
	if err != nil {
		return nil
	}
	defer func() { _ = st.Close() }()

	records, err := st.ListForecasts(store.ListOptions{})
	if err != nil {
		progress("History unavailable: %v\n", err)
		return nil
	}
	return pipeline.AggregateModels(records, time.Time{}, time.Time{})
}
