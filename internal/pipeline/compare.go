package pipeline

import (
	"sort"
	"sync"

	"github.com/theirongolddev/demandcast/internal/config"
	"github.com/theirongolddev/demandcast/internal/forecast"
	"github.com/theirongolddev/demandcast/internal/model"
)

// Comparison is one model's run over a shared input, next to its catalog
// figures.
type Comparison struct {
	Model     forecast.Model
	Result    model.ForecastResult
	Benchmark config.Benchmark
	Err       error
}

// Compare runs every model over the same history concurrently, one engine
// per goroutine, and ranks them by evaluated accuracy, then F1, then lower
// MAE. Failed runs sort last.
func Compare(csvText string, opts Options, catalog []config.Benchmark) []Comparison {
	history := forecast.Parse(csvText)
	bench := make(map[forecast.Model]config.Benchmark, len(catalog))
	for _, b := range catalog {
		bench[b.Model] = b
	}

	models := forecast.All()
	out := make([]Comparison, len(models))
	var wg sync.WaitGroup
	wg.Add(len(models))
	for i, m := range models {
		go func() {
			defer wg.Done()
			o := opts
			o.Model = m
			res, err := o.Engine().Run(history, m)
			out[i] = Comparison{Model: m, Result: res, Benchmark: bench[m], Err: err}
		}()
	}
	wg.Wait()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		if a.Result.Accuracy != b.Result.Accuracy {
			return a.Result.Accuracy > b.Result.Accuracy
		}
		if a.Result.F1Score != b.Result.F1Score {
			return a.Result.F1Score > b.Result.F1Score
		}
		return a.Result.MAE < b.Result.MAE
	})
	return out
}
