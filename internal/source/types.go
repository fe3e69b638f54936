package source

import "time"

// Supported input formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// DiscoveredFile represents a sales file found during directory scanning.
type DiscoveredFile struct {
	Path    string
	Dataset string // display name derived from the file name
	Format  string // FormatCSV or FormatXLSX
	Size    int64
	ModTime time.Time
}

// Dataset is an input normalized to the CSV text the engine consumes.
type Dataset struct {
	Name   string
	Path   string
	Format string
	CSV    string
}
