// Package report renders audit outcomes for people: a per-group selection
// rate chart and a JSON report file.
package report

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// GroupSeries is what the chart needs from an evaluation: group names and
// their selection rates, index-aligned.
type GroupSeries interface {
	Groups() []string
	SelectionRates() []float64
}

var barColor = color.RGBA{R: 50, G: 90, B: 200, A: 255}

// SelectionRateChart draws a bar per group and saves the plot to path. The
// image format follows the extension (png, svg, pdf, ...).
func SelectionRateChart(series GroupSeries, title, path string) error {
	groups, rates := series.Groups(), series.SelectionRates()
	if len(groups) == 0 {
		return errors.New("report: no groups to chart")
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Selection rate"
	p.Y.Min = 0
	p.Y.Max = 1

	values := make(plotter.Values, len(rates))
	copy(values, rates)
	bars, err := plotter.NewBarChart(values, vg.Points(28))
	if err != nil {
		return fmt.Errorf("report: bar chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(groups...)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	width := vg.Length(max(4, len(groups))) * vg.Inch
	if err := p.Save(width, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("report: saving chart: %w", err)
	}
	return nil
}
