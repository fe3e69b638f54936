package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/demandcast/internal/source"
	"github.com/theirongolddev/demandcast/internal/store"
)

// IncrementalResult extends BatchResult with history metadata.
type IncrementalResult struct {
	BatchResult
	Unchanged  int
	Forecast   int
	SaveErrors int
}

// LoadIncremental discovers files under dir, skips those whose mtime and
// size match what st last recorded, forecasts the rest and saves each new
// forecast to st. Files that fail are tracked too, so they are reported
// once and retried only after they change.
func LoadIncremental(dir string, opts Options, st *store.Store, progressFn ProgressFunc) (*IncrementalResult, error) {
	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	result := &IncrementalResult{
		BatchResult: BatchResult{
			TotalFiles: len(files),
			Formats:    source.CountFormats(files),
		},
	}
	if len(files) == 0 {
		return result, nil
	}

	changed, err := ChangedFiles(files, st)
	if err != nil {
		return nil, err
	}
	result.Unchanged = len(files) - len(changed)
	result.Forecast = len(changed)

	for _, fr := range Run(changed, opts, result.Unchanged, progressFn) {
		if fr.Err != nil {
			result.Failed = append(result.Failed, fr)
			if err := st.TrackFailedFile(fr.File.Path, fr.File.ModTime.UnixNano(), fr.File.Size); err != nil {
				result.SaveErrors++
			}
			continue
		}
		rec := fr.Record
		if err := st.SaveFileForecast(&rec, fr.File.Path, fr.File.ModTime.UnixNano(), fr.File.Size); err != nil {
			result.SaveErrors++
		}
		fr.Record = rec
		result.Results = append(result.Results, fr)
	}
	return result, nil
}

// ChangedFiles returns the files whose mtime or size differ from what st
// last recorded for them.
func ChangedFiles(files []source.DiscoveredFile, st *store.Store) ([]source.DiscoveredFile, error) {
	tracked, err := st.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var changed []source.DiscoveredFile
	for _, f := range files {
		cached, ok := tracked[f.Path]
		if ok && cached.MtimeNs == f.ModTime.UnixNano() && cached.SizeBytes == f.Size {
			continue
		}
		changed = append(changed, f)
	}
	return changed, nil
}

// DataDir returns the platform-appropriate data directory. A non-empty
// override wins.
func DataDir(override string) string {
	if override != "" {
		return override
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "demandcast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "demandcast")
}

// HistoryPath returns the full path to the history database.
func HistoryPath(override string) string {
	return filepath.Join(DataDir(override), "history.db")
}
