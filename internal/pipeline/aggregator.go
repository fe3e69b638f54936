// Package pipeline orchestrates batch forecasting, history diffing and
// aggregation over stored forecasts.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/demandcast/internal/model"
)

// Aggregate computes summary statistics over stored forecasts created
// within [since, until).
func Aggregate(records []model.ForecastRecord, since, until time.Time) model.HistorySummary {
	filtered := FilterByTime(records, since, until)

	var stats model.HistorySummary
	sources := make(map[string]struct{})
	var accSum float64
	increasing := 0

	for _, r := range filtered {
		stats.Forecasts++
		stats.TotalUnits += int64(r.Result.PredictedUnits)
		accSum += r.Result.Accuracy
		if r.Result.SalesTrend == model.TrendIncreasing {
			increasing++
		}
		sources[r.Source] = struct{}{}

		if stats.First.IsZero() || r.CreatedAt.Before(stats.First) {
			stats.First = r.CreatedAt
		}
		if r.CreatedAt.After(stats.Last) {
			stats.Last = r.CreatedAt
		}
	}

	stats.Sources = len(sources)
	if stats.Forecasts > 0 {
		stats.MeanAccuracy = accSum / float64(stats.Forecasts)
		stats.IncreasingRate = float64(increasing) / float64(stats.Forecasts)
	}
	return stats
}

// AggregateModels computes per-model statistics, most-used first.
func AggregateModels(records []model.ForecastRecord, since, until time.Time) []model.ModelStats {
	filtered := FilterByTime(records, since, until)

	modelMap := make(map[string]*model.ModelStats)
	for _, r := range filtered {
		ms, ok := modelMap[r.Model]
		if !ok {
			ms = &model.ModelStats{Model: r.Model}
			modelMap[r.Model] = ms
		}
		ms.Runs++
		ms.MeanAccuracy += r.Result.Accuracy
		ms.MeanF1 += r.Result.F1Score
		ms.MeanMAE += float64(r.Result.MAE)
		ms.TotalUnits += int64(r.Result.PredictedUnits)
		if r.Result.SalesTrend == model.TrendIncreasing {
			ms.IncreasingRuns++
		}
		if r.CreatedAt.After(ms.LastRun) {
			ms.LastRun = r.CreatedAt
		}
	}

	models := make([]model.ModelStats, 0, len(modelMap))
	for _, ms := range modelMap {
		n := float64(ms.Runs)
		ms.MeanAccuracy /= n
		ms.MeanF1 /= n
		ms.MeanMAE /= n
		ms.SharePercent = n / float64(len(filtered)) * 100
		models = append(models, *ms)
	}
	sort.Slice(models, func(i, j int) bool {
		if models[i].Runs != models[j].Runs {
			return models[i].Runs > models[j].Runs
		}
		return models[i].Model < models[j].Model
	})
	return models
}

// AggregateDays computes per-day run counts, newest first.
func AggregateDays(records []model.ForecastRecord, since, until time.Time) []model.DailyRuns {
	filtered := FilterByTime(records, since, until)

	dayMap := make(map[string]*model.DailyRuns)
	for _, r := range filtered {
		local := r.CreatedAt.Local()
		key := local.Format("2006-01-02")
		d, ok := dayMap[key]
		if !ok {
			d = &model.DailyRuns{Date: time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)}
			dayMap[key] = d
		}
		d.Runs++
		d.Units += int64(r.Result.PredictedUnits)
	}

	days := make([]model.DailyRuns, 0, len(dayMap))
	for _, d := range dayMap {
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})
	return days
}

// FilterByTime returns records created within [since, until).
func FilterByTime(records []model.ForecastRecord, since, until time.Time) []model.ForecastRecord {
	if since.IsZero() && until.IsZero() {
		return records
	}

	var result []model.ForecastRecord
	for _, r := range records {
		if !since.IsZero() && r.CreatedAt.Before(since) {
			continue
		}
		if !until.IsZero() && !r.CreatedAt.Before(until) {
			continue
		}
		result = append(result, r)
	}
	return result
}

// FilterBySource returns records whose source contains the substring.
func FilterBySource(records []model.ForecastRecord, src string) []model.ForecastRecord {
	if src == "" {
		return records
	}
	var result []model.ForecastRecord
	for _, r := range records {
		if containsIgnoreCase(r.Source, src) {
			result = append(result, r)
		}
	}
	return result
}

// FilterByModel returns records produced by a model whose label contains
// the substring.
func FilterByModel(records []model.ForecastRecord, modelFilter string) []model.ForecastRecord {
	if modelFilter == "" {
		return records
	}
	var result []model.ForecastRecord
	for _, r := range records {
		if containsIgnoreCase(r.Model, modelFilter) {
			result = append(result, r)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
