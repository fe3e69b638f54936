package narrative

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/demandcast/internal/model"
)

const responseShape = `{"headline":"string","narrative":"string","drivers":["string",...],"actions":["string",...]}`

// BuildPrompt describes rec to the model and asks for a JSON narrative.
func BuildPrompt(rec model.ForecastRecord) string {
	r := rec.Result

	var history strings.Builder
	for _, row := range r.HistoricalSeries() {
		fmt.Fprintf(&history, "- %s: %d units\n", row.Month, row.Historical)
	}
	var projected strings.Builder
	for _, p := range r.Forecast {
		fmt.Fprintf(&projected, "- %s: %d units\n", p.Month, p.Predicted)
	}

	return fmt.Sprintf(`You are a retail demand planner explaining a sales forecast to a store manager.

Forecast context:
- Data source: %s
- Model preset: %s (confidence %s)
- Sales trend: %s
- Predicted units over the next %d periods: %d
- Peak demand period: %s
- Held-out accuracy: %.1f%%, F1 %.3f, MAE %d, RMSE %d, R squared %.3f

Historical sales:
%s
Projected sales:
%s
Write a short headline, a narrative of at most 120 words, up to 4 demand drivers and up to 4 concrete stocking or staffing actions.
Respond with a single minified JSON object with exactly this structure and no markdown or text around it:
%s
`, rec.Source, r.ModelUsed, r.Confidence, strings.ToLower(r.SalesTrend), len(r.Forecast), r.PredictedUnits,
		r.PeakDemandPeriod, r.Accuracy*100, r.F1Score, r.MAE, r.RMSE, r.RSquared,
		history.String(), projected.String(), responseShape)
}
