package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v2"

	"github.com/theirongolddev/demandcast/internal/model"
)

func sampleRecord() model.ForecastRecord {
	r := sampleResult()
	r.ModelUsed = "Prophet"
	r.Summary = "Based on a simulated Prophet model trained on your data."
	r.Accuracy = 0.912
	r.F1Score = 0.87
	r.MAE = 12
	r.RMSE = 15
	r.RSquared = 0.5
	r.RocAucScore = 0.95
	r.ConfusionMatrix = model.ConfusionMatrix{TruePositive: 6, FalsePositive: 1, TrueNegative: 3}
	r.FeatureImportance = []model.FeatureScore{{Feature: "Seasonal Trend", Importance: 0.9}}
	return model.ForecastRecord{
		ID:        "0123456789abcdef",
		CreatedAt: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		Source:    "store_1.csv",
		Model:     "Prophet",
		Rows:      4,
		Result:    r,
	}
}

func TestMarkdownReport(t *testing.T) {
	md := MarkdownReport(sampleRecord())
	for _, want := range []string{
		"# Demand forecast: store\\_1.csv",
		"## Executive summary",
		"| Predicted units | 660 |",
		"| Accuracy | 91.2% |",
		"| Sep | 300 |",
		"## Feature importance",
		"| Actual high | 6 | 0 |",
		"id `01234567`",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q\n%s", want, md)
		}
	}
}

func TestHTMLReport(t *testing.T) {
	md := MarkdownReport(sampleRecord())
	page, err := HTMLReport("Q3 <forecast>", md, "chart.png")
	if err != nil {
		t.Fatalf("HTMLReport: %v", err)
	}
	for _, want := range []string{"<!DOCTYPE html>", "<title>Q3 &lt;forecast&gt;</title>", "<table>", "<h2>Executive summary</h2>", `<img src="chart.png"`} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestExport(t *testing.T) {
	rec := sampleRecord()

	var buf bytes.Buffer
	if err := Export(&buf, FormatJSON, rec.Result); err != nil {
		t.Fatalf("Export json: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for _, key := range []string{"summary", "predictedUnits", "confidence", "salesTrend", "peakDemandPeriod",
		"chartData", "modelUsed", "accuracy", "f1Score", "mae", "rmse", "rSquared"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("json missing %q", key)
		}
	}

	buf.Reset()
	if err := Export(&buf, FormatYAML, rec.Result); err != nil {
		t.Fatalf("Export yaml: %v", err)
	}
	var y map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &y); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if y["predictedUnits"] != 660 {
		t.Errorf("yaml predictedUnits = %v", y["predictedUnits"])
	}
	var rows struct {
		ChartData []map[string]any `yaml:"chartData"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("invalid yaml chartData: %v", err)
	}
	if len(rows.ChartData) == 0 {
		t.Fatal("yaml chartData is empty")
	}
	for _, key := range []string{"month", "historical", "predicted"} {
		if _, ok := rows.ChartData[0][key]; !ok {
			t.Errorf("yaml chartData row missing %q: %v", key, rows.ChartData[0])
		}
	}

	if err := Export(&buf, FormatTable, rec.Result); err == nil {
		t.Error("Export(table) should fail")
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]string{"": FormatTable, "JSON": FormatJSON, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, sampleRecord()); err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetChart)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 || rows[4][0] != "Sep" || rows[4][2] != "300" {
		t.Errorf("chart rows = %v", rows)
	}
	v, err := f.GetCellValue(SheetMetrics, "B3")
	if err != nil || v != "Prophet" {
		t.Errorf("Metrics!B3 = %q, %v", v, err)
	}
}

func TestWritePlotPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePlotPNG(&buf, sampleRecord()); err != nil {
		t.Fatalf("WritePlotPNG: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
	if _, err := ForecastPlot(model.ForecastRecord{}); err == nil {
		t.Error("ForecastPlot accepted an empty result")
	}
}
