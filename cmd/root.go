package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/theirongolddev/demandcast/internal/cli"
	"github.com/theirongolddev/demandcast/internal/config"
	"github.com/theirongolddev/demandcast/internal/forecast"
	"github.com/theirongolddev/demandcast/internal/model"
	"github.com/theirongolddev/demandcast/internal/pipeline"
	"github.com/theirongolddev/demandcast/internal/store"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagModel     string
	flagSeed      uint64
	flagLabels    string
	flagDataDir   string
	flagFormat    string
	flagQuiet     bool
	flagNoHistory bool
)

// cfg is loaded once per invocation in PersistentPreRunE.
var cfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "demandcast",
	Short: "Sales demand forecasting CLI",
	Long: "Forecast six periods of sales demand from a CSV or XLSX history,\n" +
		"compare models, keep a local history and serve the engine over HTTP.",
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	PersistentPreRunE: loadEnvAndConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runPredict(cmd, args)
	},
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagModel, "model", "m", "", "Forecasting model (arima, prophet, lstm, random-forest, xgboost)")
	rootCmd.PersistentFlags().Uint64Var(&flagSeed, "seed", 0, "Seed for reproducible forecasts")
	rootCmd.PersistentFlags().StringVar(&flagLabels, "labels", "", "Period labels: continue or fixed")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "History data directory")
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "o", cli.FormatTable, "Output format: table, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "Do not read or write forecast history")
}

func loadEnvAndConfig(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		progress("Ignoring .env: %v\n", err)
	}
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// forecastOptions merges the config defaults with any command-line overrides.
func forecastOptions(cmd *cobra.Command) (pipeline.Options, error) {
	opts := pipeline.OptionsFromConfig(cfg)
	if flagModel != "" {
		m, err := forecast.ParseModel(flagModel)
		if err != nil {
			return opts, err
		}
		opts.Model = m
	}
	if cmd.Flags().Changed("seed") {
		seed := flagSeed
		opts.Seed = &seed
	}
	if flagLabels != "" {
		mode, err := forecast.ParseLabelMode(flagLabels)
		if err != nil {
			return opts, err
		}
		opts.LabelMode = mode
	}
	return opts, nil
}

func outputFormat() (string, error) {
	return cli.ParseFormat(flagFormat)
}

func historyEnabled() bool {
	return !flagNoHistory && cfg.General.KeepHistory
}

func dataDirOverride() string {
	if flagDataDir != "" {
		return flagDataDir
	}
	return cfg.General.DataDir
}

func historyPath() string {
	return pipeline.HistoryPath(dataDirOverride())
}

// openHistory opens the forecast history store. Callers must Close it.
func openHistory() (*store.Store, error) {
	if flagNoHistory {
		return nil, errors.New("history is disabled by --no-history")
	}
	st, err := store.Open(historyPath())
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return st, nil
}

// resolveRecord looks up a stored forecast by id, id prefix or "latest".
func resolveRecord(ref string) (model.ForecastRecord, error) {
	st, err := openHistory()
	if err != nil {
		return model.ForecastRecord{}, err
	}
	defer func() { _ = st.Close() }()

	rec, err := st.Resolve(ref)
	if errors.Is(err, store.ErrNotFound) {
		return rec, fmt.Errorf("no stored forecast matches %q", ref)
	}
	return rec, err
}

func progress(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format, args...)
}
