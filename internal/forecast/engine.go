// Package forecast turns historical sales CSV into a demand forecast.
//
// The engine fits a least-squares trend on a training window, scores it on a
// held-out window and projects six periods ahead with a seasonal swing and
// model-dependent noise. The model names are presets selecting constants;
// no statistical model is trained.
package forecast

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/demandcast/internal/model"
)

// Engine runs forecasts. An Engine is only as safe for concurrent use as its
// RandomSource; build one per goroutine when using a seeded source.
type Engine struct {
	rnd    RandomSource
	labels LabelMode
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the source of the noise draws.
func WithRand(r RandomSource) Option {
	return func(e *Engine) {
		if r != nil {
			e.rnd = r
		}
	}
}

// WithSeed is shorthand for WithRand(NewSeededSource(seed)).
func WithSeed(seed uint64) Option {
	return WithRand(NewSeededSource(seed))
}

// WithLabelMode sets how forecast periods are named.
func WithLabelMode(m LabelMode) Option {
	return func(e *Engine) { e.labels = m }
}

// New returns an Engine drawing from the system source unless configured
// otherwise.
func New(opts ...Option) *Engine {
	e := &Engine{rnd: SystemSource{}, labels: LabelContinue}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Forecast parses csvText and runs m over the usable rows. It fails with a
// *DataError when fewer than MinRows rows survive parsing.
func (e *Engine) Forecast(csvText string, m Model) (model.ForecastResult, error) {
	return e.Run(Parse(csvText), m)
}

// Run forecasts from already-parsed history. Points are used in the order
// given; they are not filtered again.
func (e *Engine) Run(history []model.HistoricalPoint, m Model) (model.ForecastResult, error) {
	if len(history) < MinRows {
		return model.ForecastResult{}, newDataError(len(history))
	}
	preset := m.Preset()
	sales := salesOf(history)
	n := len(sales)

	testSize := TestSize(n)
	nTrain := n - testSize
	train, test := sales[:nTrain], sales[nTrain:]

	slope, intercept := FitOLS(train)
	predicted := make([]float64, len(test))
	for i := range test {
		p := slope*float64(nTrain+i) + intercept
		noise := (e.rnd.Float64() - 0.5) * p * preset.NoiseFactor
		predicted[i] = math.Max(0, p+noise)
	}
	metrics := Evaluate(test, predicted)
	f1 := clamp01(metrics.Accuracy * (1 - preset.NoiseFactor/2))

	fullSlope, _ := FitOLS(sales)
	values := Project(sales[n-1], fullSlope, Mean(sales), preset.NoiseFactor, Horizon, e.rnd)
	labels := NextLabels(history[n-1].Month, Horizon, e.labels)

	forecast := make([]model.ForecastPoint, Horizon)
	total := 0
	peak := 0
	for i, v := range values {
		forecast[i] = model.ForecastPoint{Month: labels[i], Predicted: v}
		total += v
		if v > values[peak] {
			peak = i
		}
	}

	trend := model.TrendDecreasing
	if fullSlope > 0 {
		trend = model.TrendIncreasing
	}

	res := model.ForecastResult{
		PredictedUnits:   total,
		Confidence:       preset.Confidence,
		SalesTrend:       trend,
		PeakDemandPeriod: forecast[peak].Month,
		ChartData:        chartRows(history, forecast),
		ModelUsed:        preset.Label,
		Accuracy:         metrics.Accuracy,
		F1Score:          f1,
		MAE:              int(math.Round(metrics.MAE)),
		RMSE:             int(math.Round(metrics.RMSE)),
		RSquared:         metrics.RSquared,
		Forecast:         forecast,
	}
	res.Summary = Summarize(res)

	res.ConfusionMatrix = SimulateConfusion(testSize, res.Accuracy)
	res.RocAucScore = SimulateROCAUC(res.Accuracy, e.rnd)
	res.FeatureImportance = SimulateFeatureImportance(e.rnd)
	return res, nil
}

// Forecast runs m over csvText with a fresh system-seeded engine.
func Forecast(csvText string, m Model) (model.ForecastResult, error) {
	return New().Forecast(csvText, m)
}

func chartRows(history []model.HistoricalPoint, forecast []model.ForecastPoint) []model.ChartRow {
	rows := make([]model.ChartRow, 0, len(history)+len(forecast))
	for _, h := range history {
		rows = append(rows, model.ChartRow{Month: h.Month, Historical: h.Sales})
	}
	if len(rows) > 0 && len(forecast) > 0 {
		rows[len(rows)-1].Predicted = rows[len(rows)-1].Historical
	}
	for _, f := range forecast {
		rows = append(rows, model.ChartRow{Month: f.Month, Predicted: f.Predicted})
	}
	return rows
}

// Summarize renders the one-paragraph description of a result.
func Summarize(r model.ForecastResult) string {
	return fmt.Sprintf("Based on a simulated %s model trained on your data, the forecast suggests a %s trend. "+
		"The model's performance on a held-out test set achieved an accuracy of %.0f%%. "+
		"We predict total sales of %s units over the next period, with demand peaking in %s.",
		r.ModelUsed, strings.ToLower(r.SalesTrend), r.Accuracy*100, GroupThousands(int64(r.PredictedUnits)), r.PeakDemandPeriod)
}

// GroupThousands formats n with comma thousands separators.
func GroupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
