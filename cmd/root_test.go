package cmd

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/demandcast/internal/config"
	"github.com/theirongolddev/demandcast/internal/forecast"
)

func withFlags(t *testing.T, model, labels string) *cobra.Command {
	t.Helper()
	oldCfg, oldModel, oldLabels, oldSeed := cfg, flagModel, flagLabels, flagSeed
	t.Cleanup(func() {
		cfg, flagModel, flagLabels, flagSeed = oldCfg, oldModel, oldLabels, oldSeed
	})
	cfg = config.DefaultConfig()
	flagModel, flagLabels = model, labels

	c := &cobra.Command{}
	c.Flags().Uint64Var(&flagSeed, "seed", 0, "")
	return c
}

func TestForecastOptions_Defaults(t *testing.T) {
	c := withFlags(t, "", "")
	opts, err := forecastOptions(c)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Model != forecast.ARIMA || opts.Seed != nil || opts.LabelMode != forecast.LabelContinue {
		t.Errorf("opts = %+v", opts)
	}
}

func TestForecastOptions_Overrides(t *testing.T) {
	c := withFlags(t, "xgb", "fixed")
	if err := c.Flags().Set("seed", "9"); err != nil {
		t.Fatal(err)
	}
	opts, err := forecastOptions(c)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Model != forecast.XGBoost || opts.LabelMode != forecast.LabelFixed {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Seed == nil || *opts.Seed != 9 {
		t.Errorf("seed = %v, want 9", opts.Seed)
	}
}

func TestForecastOptions_Rejects(t *testing.T) {
	if _, err := forecastOptions(withFlags(t, "gpt", "")); err == nil {
		t.Error("expected error for unknown model")
	}
	if _, err := forecastOptions(withFlags(t, "", "weekly")); err == nil {
		t.Error("expected error for unknown label mode")
	}
}
