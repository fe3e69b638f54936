package cli

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/theirongolddev/demandcast/internal/model"
)

// Default PNG size.
const (
	PlotWidth  = 10 * vg.Inch
	PlotHeight = 5 * vg.Inch
)

var (
	plotHistoryColor  = color.RGBA{R: 0x43, G: 0x85, B: 0xBE, A: 0xFF}
	plotForecastColor = color.RGBA{R: 0x8B, G: 0x7E, B: 0xC8, A: 0xFF}
)

// ForecastPlot builds a line chart of history followed by the forecast.
// The two lines share the boundary point so they join without a gap.
func ForecastPlot(rec model.ForecastRecord) (*plot.Plot, error) {
	r := rec.Result
	if len(r.ChartData) == 0 {
		return nil, fmt.Errorf("forecast has no chart data")
	}
	nHist := len(r.ChartData) - len(r.Forecast)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s demand forecast (%s)", rec.Source, r.ModelUsed)
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Period"
	p.Y.Label.Text = "Units"
	p.Y.Min = 0

	hist := make(plotter.XYs, nHist)
	for i := 0; i < nHist; i++ {
		hist[i].X = float64(i)
		hist[i].Y = float64(r.ChartData[i].Historical)
	}
	fc := make(plotter.XYs, 0, len(r.Forecast)+1)
	if nHist > 0 {
		fc = append(fc, hist[nHist-1])
	}
	for i := nHist; i < len(r.ChartData); i++ {
		fc = append(fc, plotter.XY{X: float64(i), Y: float64(r.ChartData[i].Predicted)})
	}

	if len(hist) > 0 {
		line, err := plotter.NewLine(hist)
		if err != nil {
			return nil, err
		}
		line.Color = plotHistoryColor
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add("history", line)
	}
	if len(fc) > 0 {
		line, err := plotter.NewLine(fc)
		if err != nil {
			return nil, err
		}
		line.Color = plotForecastColor
		line.Width = vg.Points(2)
		line.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		p.Add(line)
		p.Legend.Add("forecast", line)
	}
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	labels := make([]string, len(r.ChartData))
	for i, row := range r.ChartData {
		labels[i] = row.Month
	}
	p.NominalX(labels...)
	return p, nil
}

// SavePlot writes the forecast chart to path; the image format follows the
// extension (.png, .svg, .pdf).
func SavePlot(rec model.ForecastRecord, path string) error {
	p, err := ForecastPlot(rec)
	if err != nil {
		return err
	}
	return p.Save(PlotWidth, PlotHeight, path)
}

// WritePlotPNG writes the forecast chart as PNG to w.
func WritePlotPNG(w io.Writer, rec model.ForecastRecord) error {
	p, err := ForecastPlot(rec)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(PlotWidth, PlotHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
