package analysis

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotWaterfall renders the gap analysis as a waterfall bar chart: the EYA
// AEP on the left, floating bars for each difference term, and the OA AEP on
// the right. The plot is written to `path`; the extension selects the image
// format.
func (r *GapAnalysisResult) PlotWaterfall(title, path string) error {
	n := len(r.Data) + 1

	amounts := make(plotter.Values, n)
	blanks := make(plotter.Values, n)
	cumulative := 0.0
	for i, v := range r.Data {
		amounts[i] = v
		blanks[i] = cumulative
		cumulative += v
	}
	// The final bar shows the OA AEP from the baseline.
	amounts[n-1] = cumulative
	blanks[n-1] = 0

	// Negative amounts hang downwards from the running level.
	for i := range amounts {
		if amounts[i] < 0 {
			blanks[i] += amounts[i]
			amounts[i] = -amounts[i]
		}
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Energy (GWh/yr)"

	blankBars, err := plotter.NewBarChart(blanks, vg.Points(40))
	if err != nil {
		return fmt.Errorf("create offset bars: %w", err)
	}
	blankBars.Color = color.Transparent
	blankBars.LineStyle.Width = 0

	bars, err := plotter.NewBarChart(amounts, vg.Points(40))
	if err != nil {
		return fmt.Errorf("create bars: %w", err)
	}
	bars.Color = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	bars.StackOn(blankBars)

	p.Add(blankBars, bars)
	labels := append(append([]string{}, WaterfallLabels...), "oa_aep")
	p.NominalX(labels...)

	if err := p.Save(12*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save waterfall plot: %w", err)
	}
	return nil
}
