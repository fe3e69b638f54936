// Package source discovers sales files and normalizes them to CSV text.
package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MaxInputBytes bounds how much of a single input is read.
const MaxInputBytes = 32 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile loads a discovered file as a Dataset.
func ReadFile(df DiscoveredFile) (Dataset, error) {
	f, err := os.Open(df.Path)
	if err != nil {
		return Dataset{}, err
	}
	defer func() { _ = f.Close() }()

	format := df.Format
	if format == "" {
		format = FormatOf(df.Path)
	}
	text, err := Decode(format, f)
	if err != nil {
		return Dataset{}, fmt.Errorf("reading %s: %w", df.Path, err)
	}
	name := df.Dataset
	if name == "" {
		name = DatasetName(df.Path)
	}
	return Dataset{Name: name, Path: df.Path, Format: format, CSV: text}, nil
}

// ReadPath loads a single file by path.
func ReadPath(path string) (Dataset, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Dataset{}, err
	}
	if fi.IsDir() {
		return Dataset{}, fmt.Errorf("%s is a directory", path)
	}
	format := FormatOf(path)
	if format == "" {
		// Unknown extensions are tried as CSV.
		format = FormatCSV
	}
	return ReadFile(DiscoveredFile{
		Path:    path,
		Dataset: DatasetName(path),
		Format:  format,
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	})
}

// Decode reads r in the given format and returns CSV text.
func Decode(format string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxInputBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxInputBytes {
		return "", fmt.Errorf("input exceeds %d bytes", MaxInputBytes)
	}

	switch format {
	case FormatXLSX:
		return xlsxToCSV(data)
	case FormatCSV, "":
		return string(bytes.TrimPrefix(data, utf8BOM)), nil
	}
	return "", fmt.Errorf("unsupported format %q", format)
}

// xlsxToCSV flattens the first worksheet. Cells are read as stored values so
// number formats such as thousands separators do not leak into the text.
// Commas inside cells are replaced with spaces because the engine splits
// fields on bare commas.
func xlsxToCSV(data []byte) (string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return "", fmt.Errorf("no worksheet found")
	}

	rows, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("worksheet is empty")
	}

	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strings.ReplaceAll(strings.TrimSpace(cell), ",", " "))
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
