package model

import "time"

// ForecastRecord is a stored forecast together with where it came from.
type ForecastRecord struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	Source    string         `json:"source"`
	Model     string         `json:"model"`
	Seed      *uint64        `json:"seed,omitempty"`
	Rows      int            `json:"rows"`
	Result    ForecastResult `json:"result"`
}

// ModelStats holds aggregated history metrics for a single model label.
type ModelStats struct {
	Model          string
	Runs           int
	MeanAccuracy   float64
	MeanF1         float64
	MeanMAE        float64
	TotalUnits     int64
	IncreasingRuns int
	LastRun        time.Time
	SharePercent   float64
}

// HistorySummary holds the top-level aggregate across stored forecasts.
type HistorySummary struct {
	Forecasts      int
	Sources        int
	TotalUnits     int64
	MeanAccuracy   float64
	IncreasingRate float64
	First          time.Time
	Last           time.Time
}

// DailyRuns holds forecast counts for a single calendar day.
type DailyRuns struct {
	Date  time.Time
	Runs  int
	Units int64
}
