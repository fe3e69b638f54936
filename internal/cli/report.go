package cli

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/theirongolddev/demandcast/internal/model"
)

// mdRenderer is a goldmark instance with GFM tables; raw HTML in the input
// is not passed through.
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// MarkdownReport renders a stored forecast as a Markdown document.
func MarkdownReport(rec model.ForecastRecord) string {
	r := rec.Result
	var b strings.Builder

	fmt.Fprintf(&b, "# Demand forecast: %s\n\n", mdEscape(rec.Source))
	fmt.Fprintf(&b, "_%s model, %d rows, generated %s (id `%s`)_\n\n",
		r.ModelUsed, rec.Rows, rec.CreatedAt.Local().Format("2006-01-02 15:04"), ShortID(rec.ID))

	b.WriteString("## Executive summary\n\n")
	b.WriteString(r.Summary)
	b.WriteString("\n\n")

	b.WriteString("## Key figures\n\n")
	b.WriteString("| Figure | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Predicted units | %s |\n", FormatNumber(int64(r.PredictedUnits)))
	fmt.Fprintf(&b, "| Sales trend | %s |\n", r.SalesTrend)
	fmt.Fprintf(&b, "| Peak period | %s |\n", mdEscape(r.PeakDemandPeriod))
	fmt.Fprintf(&b, "| Confidence | %s |\n\n", r.Confidence)

	b.WriteString("## Evaluation on held-out data\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Accuracy | %s |\n", FormatPercent(r.Accuracy))
	fmt.Fprintf(&b, "| F1 score | %s |\n", FormatScore(r.F1Score))
	fmt.Fprintf(&b, "| MAE | %s |\n", FormatNumber(int64(r.MAE)))
	fmt.Fprintf(&b, "| RMSE | %s |\n", FormatNumber(int64(r.RMSE)))
	fmt.Fprintf(&b, "| R² | %s |\n", FormatScore(r.RSquared))
	fmt.Fprintf(&b, "| ROC AUC | %s |\n\n", FormatScore(r.RocAucScore))

	b.WriteString("## Forecast\n\n")
	b.WriteString("| Period | Predicted units |\n|---|---:|\n")
	for _, p := range r.Forecast {
		fmt.Fprintf(&b, "| %s | %s |\n", mdEscape(p.Month), FormatNumber(int64(p.Predicted)))
	}
	b.WriteString("\n")

	if len(r.FeatureImportance) > 0 {
		b.WriteString("## Feature importance\n\n")
		b.WriteString("| Feature | Importance |\n|---|---:|\n")
		for _, f := range r.FeatureImportance {
			fmt.Fprintf(&b, "| %s | %s |\n", f.Feature, FormatPercent(f.Importance))
		}
		b.WriteString("\n")
	}

	c := r.ConfusionMatrix
	if c.Total() > 0 {
		b.WriteString("## Confusion matrix\n\n")
		b.WriteString("| | Predicted high | Predicted low |\n|---|---:|---:|\n")
		fmt.Fprintf(&b, "| Actual high | %d | %d |\n", c.TruePositive, c.FalseNegative)
		fmt.Fprintf(&b, "| Actual low | %d | %d |\n\n", c.FalsePositive, c.TrueNegative)
	}

	b.WriteString("---\n\nModel names select preset noise and confidence levels; figures are simulated.\n")
	return b.String()
}

// HTMLReport converts a Markdown report into a standalone HTML page. When
// chartSrc is non-empty it is embedded as an image under the title.
func HTMLReport(title, markdown, chartSrc string) (string, error) {
	var body bytes.Buffer
	if err := mdRenderer.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("<style>\n" + reportCSS + "</style>\n</head>\n<body>\n<main>\n")
	if chartSrc != "" {
		fmt.Fprintf(&b, "<figure><img src=\"%s\" alt=\"forecast chart\"></figure>\n", html.EscapeString(chartSrc))
	}
	b.Write(body.Bytes())
	b.WriteString("</main>\n</body>\n</html>\n")
	return b.String(), nil
}

const reportCSS = `body { background: #FFFCF0; color: #100F0F; font: 15px/1.5 system-ui, sans-serif; }
main { max-width: 760px; margin: 2rem auto; padding: 0 1rem; }
h1, h2 { color: #24837B; }
table { border-collapse: collapse; margin: 0.5rem 0 1rem; }
th, td { border: 1px solid #DAD8CE; padding: 0.25rem 0.75rem; }
th { background: #F2F0E5; text-align: left; }
img { max-width: 100%; }
`

func mdEscape(s string) string {
	return strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`").Replace(s)
}
