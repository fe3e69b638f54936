package forecast

import (
	"math"
	"sort"
)

// TestSplit is the share of rows held out for evaluation.
const TestSplit = 0.25

// TestSize returns how many trailing rows of n are held out. At least one
// row is always held out.
func TestSize(n int) int {
	return max(1, int(math.Floor(float64(n)*TestSplit)))
}

// Sum returns the sum of xs.
func Sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return Sum(xs) / float64(len(xs))
}

// Median returns the median of xs without modifying it, or 0 when empty.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// FitOLS fits y = slope*i + intercept over i = 0..len(ys)-1 by ordinary
// least squares. A degenerate fit (fewer than two points) has slope 0 and
// intercept at the mean.
func FitOLS(ys []float64) (slope, intercept float64) {
	n := float64(len(ys))
	if n == 0 {
		return 0, 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// Metrics are the evaluation figures for one held-out window.
type Metrics struct {
	MAE      float64
	RMSE     float64
	RSquared float64 // clamped to [0, 1]
	MAPE     float64
	Accuracy float64 // clamped to [0, 1]
}

// Evaluate scores predicted against actual pairwise. Both slices must have
// the same length. R² is 0 when the actual values have no variance; MAPE
// skips zero actuals.
func Evaluate(actual, predicted []float64) Metrics {
	n := len(actual)
	if n == 0 || len(predicted) != n {
		return Metrics{}
	}
	var sumAbs, sumSq, sumPct float64
	pctN := 0
	for i := range actual {
		e := actual[i] - predicted[i]
		sumAbs += math.Abs(e)
		sumSq += e * e
		if actual[i] != 0 {
			sumPct += math.Abs(e) / actual[i]
			pctN++
		}
	}
	m := Metrics{
		MAE:  sumAbs / float64(n),
		RMSE: math.Sqrt(sumSq / float64(n)),
	}

	mean := Mean(actual)
	var sst float64
	for _, a := range actual {
		sst += (a - mean) * (a - mean)
	}
	if sst > 0 {
		m.RSquared = clamp01(1 - sumSq/sst)
	}
	if pctN > 0 {
		m.MAPE = sumPct / float64(pctN)
	}
	m.Accuracy = clamp01(1 - m.MAPE)
	return m
}

// Seasonality is the amplitude of the seasonal term relative to mean sales.
const Seasonality = 0.15

// Project extends a series horizon steps past its last value along slope,
// adding a half-sine seasonal swing scaled by avg and noise scaled by
// avg*noiseFactor. Values are rounded and never negative.
func Project(last, slope, avg, noiseFactor float64, horizon int, rnd RandomSource) []int {
	out := make([]int, horizon)
	span := float64(horizon - 1)
	for i := range out {
		trend := last + slope*float64(i+1)
		var seasonal float64
		if span > 0 {
			seasonal = avg * Seasonality * math.Sin(math.Pi*float64(i)/span)
		}
		noise := (rnd.Float64() - 0.5) * avg * noiseFactor
		out[i] = int(math.Round(math.Max(0, trend+seasonal+noise)))
	}
	return out
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
