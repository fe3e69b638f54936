package config

import (
	"testing"

	"github.com/theirongolddev/demandcast/internal/forecast"
)

func TestCatalog_Defaults(t *testing.T) {
	want := map[forecast.Model][2]float64{
		forecast.ARIMA:        {0.85, 0.82},
		forecast.Prophet:      {0.92, 0.90},
		forecast.LSTM:         {0.88, 0.86},
		forecast.RandomForest: {0.95, 0.94},
		forecast.XGBoost:      {0.96, 0.95},
	}
	got := Catalog(DefaultConfig())
	if len(got) != len(want) {
		t.Fatalf("len(Catalog) = %d, want %d", len(got), len(want))
	}
	for i, b := range got {
		if b.Model != forecast.All()[i] {
			t.Errorf("Catalog[%d].Model = %v, want %v", i, b.Model, forecast.All()[i])
		}
		w := want[b.Model]
		if b.Accuracy != w[0] || b.F1Score != w[1] || b.Overridden {
			t.Errorf("%v = %+v, want %v/%v", b.Model, b, w[0], w[1])
		}
	}
}

func TestCatalog_Overrides(t *testing.T) {
	acc, f1 := 0.7, 0.65
	cfg := DefaultConfig()
	cfg.Catalog.Overrides = map[string]BenchmarkOverride{
		"random-forest": {Accuracy: &acc},
		"lstm":          {F1Score: &f1},
		"unknown":       {Accuracy: &acc},
	}
	byModel := map[forecast.Model]Benchmark{}
	for _, b := range Catalog(cfg) {
		byModel[b.Model] = b
	}

	rf := byModel[forecast.RandomForest]
	if rf.Accuracy != 0.7 || rf.F1Score != 0.94 || !rf.Overridden {
		t.Errorf("Random Forest = %+v, want accuracy overridden only", rf)
	}
	lstm := byModel[forecast.LSTM]
	if lstm.Accuracy != 0.88 || lstm.F1Score != 0.65 || !lstm.Overridden {
		t.Errorf("LSTM = %+v, want f1 overridden only", lstm)
	}
	if byModel[forecast.ARIMA].Overridden {
		t.Error("ARIMA should not be overridden")
	}

	// Defaults are untouched.
	if b, _ := LookupBenchmark(forecast.RandomForest); b.Accuracy != 0.95 {
		t.Errorf("LookupBenchmark mutated: %+v", b)
	}
}
