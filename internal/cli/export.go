package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v2"

	"github.com/theirongolddev/demandcast/internal/model"
)

// Output formats accepted by Export.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ParseFormat normalizes an output format flag.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want table, json or yaml)", s)
}

// Export writes v to w as indented JSON or YAML.
func Export(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	}
	return fmt.Errorf("cannot export as %q", format)
}

// Sheet names used by WriteWorkbook.
const (
	SheetChart   = "Chart"
	SheetMetrics = "Metrics"
)

// WriteWorkbook writes a forecast as an XLSX workbook: the combined chart
// rows on one sheet and the headline metrics on another.
func WriteWorkbook(w io.Writer, rec model.ForecastRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetChart); err != nil {
		return err
	}
	rows := [][]any{{"Period", "Historical", "Predicted"}}
	for _, row := range rec.Result.ChartData {
		rows = append(rows, []any{row.Month, row.Historical, row.Predicted})
	}
	if err := writeRows(f, SheetChart, rows); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetChart, "A", "C", 14)

	if _, err := f.NewSheet(SheetMetrics); err != nil {
		return err
	}
	r := rec.Result
	metrics := [][]any{
		{"Metric", "Value"},
		{"Source", rec.Source},
		{"Model", r.ModelUsed},
		{"Predicted units", r.PredictedUnits},
		{"Sales trend", r.SalesTrend},
		{"Peak period", r.PeakDemandPeriod},
		{"Confidence", r.Confidence},
		{"Accuracy", r.Accuracy},
		{"F1 score", r.F1Score},
		{"MAE", r.MAE},
		{"RMSE", r.RMSE},
		{"R squared", r.RSquared},
		{"ROC AUC", r.RocAucScore},
		{"Summary", r.Summary},
	}
	if err := writeRows(f, SheetMetrics, metrics); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetMetrics, "A", "A", 18)
	_ = f.SetColWidth(SheetMetrics, "B", "B", 60)

	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
