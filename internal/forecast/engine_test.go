package forecast

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/theirongolddev/demandcast/internal/model"
)

const halfYear = "Month,Sales\nJan,100\nFeb,120\nMar,140\nApr,160\nMay,180\nJun,200"

// quiet returns an engine whose noise terms are all zero.
func quiet(opts ...Option) *Engine {
	return New(append([]Option{WithRand(&SequenceSource{})}, opts...)...)
}

func TestForecast_HalfYearRoundTrip(t *testing.T) {
	res, err := quiet().Forecast(halfYear, ARIMA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []model.ForecastPoint{
		{Month: "Jul", Predicted: 220},
		{Month: "Aug", Predicted: 253},
		{Month: "Sep", Predicted: 281},
		{Month: "Oct", Predicted: 301},
		{Month: "Nov", Predicted: 313},
		{Month: "Dec", Predicted: 320},
	}
	if !reflect.DeepEqual(res.Forecast, want) {
		t.Fatalf("Forecast = %+v, want %+v", res.Forecast, want)
	}
	if res.PredictedUnits != 1688 {
		t.Errorf("PredictedUnits = %d, want 1688", res.PredictedUnits)
	}
	if res.SalesTrend != model.TrendIncreasing {
		t.Errorf("SalesTrend = %q, want Increasing", res.SalesTrend)
	}
	if res.PeakDemandPeriod != "Dec" {
		t.Errorf("PeakDemandPeriod = %q, want Dec", res.PeakDemandPeriod)
	}
	if res.Confidence != ConfidenceMedium {
		t.Errorf("Confidence = %q, want Medium", res.Confidence)
	}
	if res.ModelUsed != "ARIMA" {
		t.Errorf("ModelUsed = %q, want ARIMA", res.ModelUsed)
	}
	if res.Accuracy != 1 {
		t.Errorf("Accuracy = %v, want 1", res.Accuracy)
	}
	if res.F1Score != 0.95 {
		t.Errorf("F1Score = %v, want 0.95", res.F1Score)
	}
	if res.MAE != 0 || res.RMSE != 0 {
		t.Errorf("MAE/RMSE = %d/%d, want 0/0", res.MAE, res.RMSE)
	}
	// One test row has no variance.
	if res.RSquared != 0 {
		t.Errorf("RSquared = %v, want 0", res.RSquared)
	}

	wantSummary := "Based on a simulated ARIMA model trained on your data, the forecast suggests a increasing trend. " +
		"The model's performance on a held-out test set achieved an accuracy of 100%. " +
		"We predict total sales of 1,688 units over the next period, with demand peaking in Dec."
	if res.Summary != wantSummary {
		t.Errorf("Summary =\n%s\nwant\n%s", res.Summary, wantSummary)
	}
}

func TestForecast_ChartRows(t *testing.T) {
	res, err := quiet().Forecast(halfYear, Prophet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.ChartData) != 12 {
		t.Fatalf("len(ChartData) = %d, want 12", len(res.ChartData))
	}
	for i, row := range res.ChartData[:5] {
		if row.Predicted != 0 {
			t.Errorf("ChartData[%d].Predicted = %d, want 0", i, row.Predicted)
		}
	}
	boundary := res.ChartData[5]
	if boundary.Month != "Jun" || boundary.Historical != 200 || boundary.Predicted != 200 {
		t.Errorf("boundary row = %+v, want Jun mirrored at 200", boundary)
	}
	for i, row := range res.ChartData[6:] {
		if row.Historical != 0 {
			t.Errorf("forecast row %d Historical = %d, want 0", i, row.Historical)
		}
		if row != (model.ChartRow{Month: res.Forecast[i].Month, Predicted: res.Forecast[i].Predicted}) {
			t.Errorf("forecast row %d = %+v, want %+v", i, row, res.Forecast[i])
		}
	}
	if got := res.HistoricalSeries(); len(got) != 6 {
		t.Errorf("len(HistoricalSeries) = %d, want 6", len(got))
	}
}

func TestForecast_FlatSeriesIsDecreasing(t *testing.T) {
	csv := "Month,Sales\n" + strings.Repeat("M,100\n", 8)
	res, err := quiet().Forecast(csv, XGBoost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SalesTrend != model.TrendDecreasing {
		t.Errorf("SalesTrend = %q, want Decreasing for zero slope", res.SalesTrend)
	}
	// Peak is the first maximum: the seasonal swing peaks at i=2 and i=3
	// with equal magnitude.
	if res.PeakDemandPeriod != res.Forecast[2].Month {
		t.Errorf("PeakDemandPeriod = %q, want %q", res.PeakDemandPeriod, res.Forecast[2].Month)
	}
}

func TestForecast_Errors(t *testing.T) {
	tests := []struct {
		name  string
		csv   string
		want  error
		valid int
	}{
		{"empty", "", ErrNoValidRows, 0},
		{"header only", "Month,Sales", ErrNoValidRows, 0},
		{"all invalid", "Month,Sales\nJan,abc\nFeb,0\nMar,-4\nApr", ErrNoValidRows, 0},
		{"three rows", "Month,Sales\nJan,10\nFeb,20\nMar,30", ErrInsufficientRows, 3},
		{"three after drops", "Month,Sales\nJan,10\nFeb,x\nMar,30\nApr,0\nMay,5", ErrInsufficientRows, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := quiet().Forecast(tt.csv, ARIMA)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var de *DataError
			if !errors.As(err, &de) {
				t.Fatalf("err is %T, want *DataError", err)
			}
			if de.Valid != tt.valid || de.Need != MinRows {
				t.Errorf("DataError = %+v, want Valid=%d Need=%d", de, tt.valid, MinRows)
			}
		})
	}
}

func TestForecast_CRLFAndExtraColumns(t *testing.T) {
	csv := "Month,Sales,Region\r\nJan, 100 ,EU\r\nFeb,120,EU\r\nMar,140\r\nApr,160,US\r\n"
	res, err := quiet().Forecast(csv, LSTM)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.ChartData[0]; got.Month != "Jan" || got.Historical != 100 {
		t.Errorf("first row = %+v, want Jan/100", got)
	}
	if res.Forecast[0].Month != "May" {
		t.Errorf("first forecast month = %q, want May", res.Forecast[0].Month)
	}
}

func TestForecast_SeededIsIdempotent(t *testing.T) {
	csv := "Month,Sales\n2024-01,340\n2024-02,310\n2024-03,420\n2024-04,380\n2024-05,460\n2024-06,440\n2024-07,520\n2024-08,500"
	for _, m := range All() {
		a, err := New(WithSeed(42)).Forecast(csv, m)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", m, err)
		}
		b, err := New(WithSeed(42)).Forecast(csv, m)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", m, err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%v: seeded runs differ", m)
		}
	}
}

func TestForecast_InvariantsUnderAdversarialInput(t *testing.T) {
	inputs := []string{
		"h\na,1\nb,100000\nc,1\nd,100000\ne,1",
		"h\na,5000\nb,4000\nc,3000\nd,2000\ne,1000\nf,1",
		"h\na,1\nb,1\nc,1\nd,1000000",
		"h\na,7\nb,7\nc,7\nd,7",
		"h\na,1\nb,2\nc,3\nd,4\ne,5\nf,6\ng,7\nh,8\ni,9\nj,10\nk,11\nl,12",
	}
	for seed := uint64(0); seed < 20; seed++ {
		for i, csv := range inputs {
			for _, m := range All() {
				res, err := New(WithSeed(seed)).Forecast(csv, m)
				if err != nil {
					t.Fatalf("input %d: unexpected error: %v", i, err)
				}
				checkInvariants(t, fmt.Sprintf("seed=%d input=%d model=%v", seed, i, m), csv, res)
			}
		}
	}
}

func checkInvariants(t *testing.T, label, csv string, res model.ForecastResult) {
	t.Helper()
	n := len(Parse(csv))
	if len(res.Forecast) != Horizon {
		t.Fatalf("%s: len(Forecast) = %d, want %d", label, len(res.Forecast), Horizon)
	}
	if len(res.ChartData) != n+Horizon {
		t.Fatalf("%s: len(ChartData) = %d, want %d", label, len(res.ChartData), n+Horizon)
	}
	sum := 0
	for _, f := range res.Forecast {
		if f.Predicted < 0 {
			t.Errorf("%s: negative prediction %d", label, f.Predicted)
		}
		sum += f.Predicted
	}
	if sum != res.PredictedUnits {
		t.Errorf("%s: PredictedUnits = %d, sum = %d", label, res.PredictedUnits, sum)
	}
	for name, v := range map[string]float64{"Accuracy": res.Accuracy, "F1Score": res.F1Score, "RSquared": res.RSquared} {
		if v < 0 || v > 1 {
			t.Errorf("%s: %s = %v, want within [0,1]", label, name, v)
		}
	}
	if res.MAE < 0 || res.RMSE < 0 {
		t.Errorf("%s: MAE/RMSE = %d/%d, want non-negative", label, res.MAE, res.RMSE)
	}
	if res.RMSE < res.MAE {
		t.Errorf("%s: RMSE %d < MAE %d", label, res.RMSE, res.MAE)
	}
	if res.RocAucScore < 0.5 || res.RocAucScore > 0.99 {
		t.Errorf("%s: RocAucScore = %v, want within [0.5,0.99]", label, res.RocAucScore)
	}
	if got, want := res.ConfusionMatrix.Total(), TestSize(n)*10; got < want {
		t.Errorf("%s: confusion total = %d, want >= %d", label, got, want)
	}
}

func TestForecast_SupplementedOutputs(t *testing.T) {
	res, err := quiet().Forecast(halfYear, RandomForest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := model.ConfusionMatrix{TruePositive: 7, TrueNegative: 3}
	if res.ConfusionMatrix != want {
		t.Errorf("ConfusionMatrix = %+v, want %+v", res.ConfusionMatrix, want)
	}
	if res.RocAucScore != 0.99 {
		t.Errorf("RocAucScore = %v, want 0.99", res.RocAucScore)
	}
	if len(res.FeatureImportance) != len(Features) {
		t.Fatalf("len(FeatureImportance) = %d, want %d", len(res.FeatureImportance), len(Features))
	}
	for i, f := range res.FeatureImportance {
		if f.Feature != Features[i] || math.Abs(f.Importance-0.6) > 1e-9 {
			t.Errorf("FeatureImportance[%d] = %+v, want %s/0.6", i, f, Features[i])
		}
	}
}

func TestForecast_FixedLabelMode(t *testing.T) {
	csv := "Month,Sales\n2024-01,10\n2024-02,20\n2024-03,30\n2024-04,40"
	res, err := quiet(WithLabelMode(LabelFixed)).Forecast(csv, ARIMA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Forecast[0].Month != "Jul" || res.Forecast[5].Month != "Dec" {
		t.Errorf("labels = %s..%s, want Jul..Dec", res.Forecast[0].Month, res.Forecast[5].Month)
	}
}

func TestGroupThousands(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		1688:     "1,688",
		1234567:  "1,234,567",
		-1234567: "-1,234,567",
	}
	for in, want := range tests {
		if got := GroupThousands(in); got != want {
			t.Errorf("GroupThousands(%d) = %q, want %q", in, got, want)
		}
	}
}
