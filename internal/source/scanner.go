package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FormatOf returns the input format implied by path's extension, or "" when
// the file is not a supported sales file.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV
	case ".xlsx", ".xlsm":
		return FormatXLSX
	}
	return ""
}

// ScanDir walks dir and discovers every CSV and XLSX file beneath it.
// Hidden files and directories, and Office lock files ("~$..."), are skipped.
// A missing dir yields no files and no error. Results are sorted by path.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			return nil
		}
		format := FormatOf(name)
		if format == "" {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // file vanished between readdir and stat
		}

		files = append(files, DiscoveredFile{
			Path:    path,
			Dataset: DatasetName(path),
			Format:  format,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// DatasetName derives a display name from a file path:
//
//	"/data/store_42-sales.csv" -> "store 42 sales"
//
// Falls back to the bare file name when nothing readable is left.
func DatasetName(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	name := strings.Join(strings.FieldsFunc(stem, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || r == ' '
	}), " ")
	if name == "" {
		return base
	}
	return name
}

// CountFormats returns how many discovered files there are of each format.
func CountFormats(files []DiscoveredFile) map[string]int {
	counts := make(map[string]int)
	for _, f := range files {
		counts[f.Format]++
	}
	return counts
}
