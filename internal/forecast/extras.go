package forecast

import (
	"math"
	"sort"

	"github.com/theirongolddev/demandcast/internal/model"
)

// Features scored by SimulateFeatureImportance, in draw order.
var Features = []string{"Historical Sales", "Seasonal Trend", "Market Conditions", "Price Factor", "Competition"}

// SimulateConfusion spreads testSize*10 synthetic predictions over the four
// cells in proportion to accuracy. False positives absorb the rounding
// remainder and never go negative.
func SimulateConfusion(testSize int, accuracy float64) model.ConfusionMatrix {
	total := float64(testSize * 10)
	c := model.ConfusionMatrix{
		TruePositive:  int(math.Round(total * accuracy * 0.7)),
		FalseNegative: int(math.Round(total * (1 - accuracy) * 0.4)),
		TrueNegative:  int(math.Round(total * accuracy * 0.3)),
	}
	c.FalsePositive = max(0, int(total)-c.TruePositive-c.FalseNegative-c.TrueNegative)
	return c
}

// SimulateROCAUC jitters accuracy+0.1 by up to ±0.05 and bounds it to
// [0.5, 0.99], rounded to three decimals.
func SimulateROCAUC(accuracy float64, rnd RandomSource) float64 {
	v := accuracy + 0.1 + (rnd.Float64()*0.1 - 0.05)
	return round3(math.Min(0.99, math.Max(0.5, v)))
}

// SimulateFeatureImportance scores each of Features in [0.2, 1.0) and returns
// them highest first.
func SimulateFeatureImportance(rnd RandomSource) []model.FeatureScore {
	out := make([]model.FeatureScore, len(Features))
	for i, f := range Features {
		out[i] = model.FeatureScore{Feature: f, Importance: rnd.Float64()*0.8 + 0.2}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Importance > out[j].Importance })
	return out
}
