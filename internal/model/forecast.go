// Package model defines domain types for demandcast forecasts and data profiles.
package model

// Sales trend labels.
const (
	TrendIncreasing = "Increasing"
	TrendDecreasing = "Decreasing"
)

// HistoricalPoint is one usable row of the input CSV.
type HistoricalPoint struct {
	Month string `json:"month" yaml:"month"`
	Sales int    `json:"sales" yaml:"sales"`
}

// ForecastPoint is one projected period.
type ForecastPoint struct {
	Month     string `json:"month" yaml:"month"`
	Predicted int    `json:"predicted" yaml:"predicted"`
}

// ChartRow is one x-axis position of the combined history/forecast chart.
// Historical rows carry Predicted=0 except the last one, which mirrors its
// historical value so a line chart has no gap at the boundary.
type ChartRow struct {
	Month      string `json:"month" yaml:"month"`
	Historical int    `json:"historical" yaml:"historical"`
	Predicted  int    `json:"predicted" yaml:"predicted"`
}

// ConfusionMatrix is the simulated binary-classification breakdown shown
// next to the regression metrics.
type ConfusionMatrix struct {
	TruePositive  int `json:"truePositive" yaml:"truePositive"`
	FalsePositive int `json:"falsePositive" yaml:"falsePositive"`
	TrueNegative  int `json:"trueNegative" yaml:"trueNegative"`
	FalseNegative int `json:"falseNegative" yaml:"falseNegative"`
}

// Total returns the number of simulated predictions in the matrix.
func (c ConfusionMatrix) Total() int {
	return c.TruePositive + c.FalsePositive + c.TrueNegative + c.FalseNegative
}

// FeatureScore is one entry of the feature-importance heatmap.
type FeatureScore struct {
	Feature    string  `json:"feature" yaml:"feature"`
	Importance float64 `json:"importance" yaml:"importance"`
}

// ForecastResult is the complete output of one engine run. It is built once
// and never mutated afterwards.
type ForecastResult struct {
	Summary          string     `json:"summary" yaml:"summary"`
	PredictedUnits   int        `json:"predictedUnits" yaml:"predictedUnits"`
	Confidence       string     `json:"confidence" yaml:"confidence"`
	SalesTrend       string     `json:"salesTrend" yaml:"salesTrend"`
	PeakDemandPeriod string     `json:"peakDemandPeriod" yaml:"peakDemandPeriod"`
	ChartData        []ChartRow `json:"chartData" yaml:"chartData"`
	ModelUsed        string     `json:"modelUsed" yaml:"modelUsed"`
	Accuracy         float64    `json:"accuracy" yaml:"accuracy"`
	F1Score          float64    `json:"f1Score" yaml:"f1Score"`
	MAE              int        `json:"mae" yaml:"mae"`
	RMSE             int        `json:"rmse" yaml:"rmse"`
	RSquared         float64    `json:"rSquared" yaml:"rSquared"`

	Forecast          []ForecastPoint `json:"forecast" yaml:"forecast"`
	ConfusionMatrix   ConfusionMatrix `json:"confusionMatrix" yaml:"confusionMatrix"`
	RocAucScore       float64         `json:"rocAucScore" yaml:"rocAucScore"`
	FeatureImportance []FeatureScore  `json:"featureImportance" yaml:"featureImportance"`
}

// HistoricalSeries returns the historical values of the chart in order.
func (r ForecastResult) HistoricalSeries() []ChartRow {
	n := len(r.ChartData) - len(r.Forecast)
	if n < 0 {
		n = 0
	}
	return r.ChartData[:n]
}
