package config

import (
	"github.com/theirongolddev/demandcast/internal/forecast"
)

// Benchmark holds the published accuracy figures for one model. These are
// static reference numbers shown beside live evaluation results; they are
// not computed from any run.
type Benchmark struct {
	Model      forecast.Model `json:"model"`
	Accuracy   float64        `json:"accuracy"`
	F1Score    float64        `json:"f1Score"`
	Overridden bool           `json:"overridden,omitempty"`
}

// CatalogOverrides allows user-defined figures for specific models.
type CatalogOverrides struct {
	Overrides map[string]BenchmarkOverride `toml:"overrides,omitempty"`
}

// BenchmarkOverride holds per-model catalog overrides.
type BenchmarkOverride struct {
	Accuracy *float64 `toml:"accuracy,omitempty"`
	F1Score  *float64 `toml:"f1_score,omitempty"`
}

var defaultCatalog = map[forecast.Model]Benchmark{
	forecast.ARIMA:        {Model: forecast.ARIMA, Accuracy: 0.85, F1Score: 0.82},
	forecast.Prophet:      {Model: forecast.Prophet, Accuracy: 0.92, F1Score: 0.90},
	forecast.LSTM:         {Model: forecast.LSTM, Accuracy: 0.88, F1Score: 0.86},
	forecast.RandomForest: {Model: forecast.RandomForest, Accuracy: 0.95, F1Score: 0.94},
	forecast.XGBoost:      {Model: forecast.XGBoost, Accuracy: 0.96, F1Score: 0.95},
}

// LookupBenchmark returns the built-in figures for m.
func LookupBenchmark(m forecast.Model) (Benchmark, bool) {
	b, ok := defaultCatalog[m]
	return b, ok
}

// Catalog returns every model's figures in display order with the config
// overrides applied. Override keys are matched like model names on the
// command line, so "random-forest" overrides Random Forest.
func Catalog(cfg Config) []Benchmark {
	overrides := make(map[forecast.Model]BenchmarkOverride, len(cfg.Catalog.Overrides))
	for name, o := range cfg.Catalog.Overrides {
		m, err := forecast.ParseModel(name)
		if err != nil {
			continue
		}
		overrides[m] = o
	}

	out := make([]Benchmark, 0, len(defaultCatalog))
	for _, m := range forecast.All() {
		b := defaultCatalog[m]
		if o, ok := overrides[m]; ok {
			if o.Accuracy != nil {
				b.Accuracy = *o.Accuracy
				b.Overridden = true
			}
			if o.F1Score != nil {
				b.F1Score = *o.F1Score
				b.Overridden = true
			}
		}
		out = append(out, b)
	}
	return out
}
