package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/demandcast/internal/model"
	"github.com/theirongolddev/demandcast/internal/source"
)

// FileResult is the outcome for one input file.
type FileResult struct {
	File   source.DiscoveredFile
	Record model.ForecastRecord
	Err    error
}

// BatchResult holds the output of a batch forecasting run.
type BatchResult struct {
	Results    []FileResult // successful forecasts, in scan order
	Failed     []FileResult
	TotalFiles int
	Formats    map[string]int
}

// TotalUnits sums predicted units across successful forecasts.
func (b *BatchResult) TotalUnits() int64 {
	var total int64
	for _, r := range b.Results {
		total += int64(r.Record.Result.PredictedUnits)
	}
	return total
}

// ProgressFunc is called during a run to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers every sales file under dir and forecasts each one.
// It uses a bounded worker pool for parallel processing.
func Load(dir string, opts Options, progressFn ProgressFunc) (*BatchResult, error) {
	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	result := &BatchResult{
		TotalFiles: len(files),
		Formats:    source.CountFormats(files),
	}
	if len(files) == 0 {
		return result, nil
	}

	for _, fr := range Run(files, opts, 0, progressFn) {
		if fr.Err != nil {
			result.Failed = append(result.Failed, fr)
			continue
		}
		result.Results = append(result.Results, fr)
	}
	return result, nil
}

// Run forecasts files with a bounded worker pool. Results are returned in
// input order. progressOffset is added to the reported count so callers
// that skipped some files up front can report against their full total.
func Run(files []source.DiscoveredFile, opts Options, progressOffset int, progressFn ProgressFunc) []FileResult {
	if len(files) == 0 {
		return nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]FileResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = forecastFile(files[idx], opts)
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n)+progressOffset, len(files)+progressOffset)
				}
			}
		}()
	}

	wg.Wait()
	return results
}

func forecastFile(df source.DiscoveredFile, opts Options) FileResult {
	ds, err := source.ReadFile(df)
	if err != nil {
		return FileResult{File: df, Err: err}
	}
	rec, err := ForecastDataset(ds, opts)
	if err != nil {
		return FileResult{File: df, Err: fmt.Errorf("%s: %w", df.Path, err)}
	}
	return FileResult{File: df, Record: rec}
}
