package cli

import (
	"strings"
	"testing"

	"github.com/theirongolddev/demandcast/internal/model"
)

func sampleResult() model.ForecastResult {
	return model.ForecastResult{
		PredictedUnits:   660,
		SalesTrend:       model.TrendIncreasing,
		PeakDemandPeriod: "Sep",
		Confidence:       "High",
		ChartData: []model.ChartRow{
			{Month: "Jun", Historical: 100, Predicted: 100},
			{Month: "Jul", Predicted: 200},
			{Month: "Aug", Predicted: 160},
			{Month: "Sep", Predicted: 300},
		},
		Forecast: []model.ForecastPoint{
			{Month: "Jul", Predicted: 200},
			{Month: "Aug", Predicted: 160},
			{Month: "Sep", Predicted: 300},
		},
	}
}

func TestRenderForecastChart(t *testing.T) {
	out := RenderForecastChart(sampleResult(), 20)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// legend + 1 history row + separator + 3 forecast rows
	if len(lines) != 6 {
		t.Fatalf("chart has %d lines, want 6:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[5], "Sep") || !strings.Contains(lines[5], "300") {
		t.Errorf("last row = %q, want the Sep forecast", lines[5])
	}
	if strings.Count(lines[5], "█") != 20 {
		t.Errorf("peak row should fill the bar width: %q", lines[5])
	}
}

func TestRenderForecastChart_Empty(t *testing.T) {
	if out := RenderForecastChart(model.ForecastResult{}, 20); out != "" {
		t.Errorf("empty chart = %q", out)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 50, 100}); got != "▁▄█" {
		t.Errorf("RenderSparkline = %q", got)
	}
	if RenderSparkline(nil) != "" {
		t.Error("RenderSparkline(nil) should be empty")
	}
}

func TestRenderSeries_KeepsAllPoints(t *testing.T) {
	out := RenderSeries(sampleResult())
	if n := strings.Count(out, "▁") + strings.Count(out, "▂") + strings.Count(out, "▃") +
		strings.Count(out, "▄") + strings.Count(out, "▅") + strings.Count(out, "▆") +
		strings.Count(out, "▇") + strings.Count(out, "█"); n != 4 {
		t.Errorf("RenderSeries has %d blocks, want 4: %q", n, out)
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Model", "Accuracy"},
		Rows:    [][]string{{"ARIMA", "85.0%"}, {SeparatorRow}, {"XGBoost", "96.0%"}},
	})
	for _, want := range []string{"Model", "ARIMA", "XGBoost", "96.0%", "╭", "╯"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderDropped_Limit(t *testing.T) {
	rows := []model.DroppedRow{
		{Line: 2, Raw: "a", Reason: model.DropUnparsable},
		{Line: 3, Raw: "b", Reason: model.DropUnparsable},
		{Line: 4, Raw: "c", Reason: model.DropUnparsable},
	}
	out := RenderDropped(rows, 2)
	if !strings.Contains(out, "and 1 more") {
		t.Errorf("RenderDropped = %q", out)
	}
}
