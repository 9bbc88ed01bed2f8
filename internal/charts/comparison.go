package charts

import (
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"labordash/internal/dashboard"
)

// Comparison draws employment and unemployment rates per region as grouped
// bars
func Comparison(w io.Writer, panel dashboard.ComparisonPanel) error {
	if panel.Empty || len(panel.Rates) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = panel.Title
	p.Y.Label.Text = "비율 (%)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	regions := make([]string, len(panel.Rates))
	employment := make(plotter.Values, len(panel.Rates))
	unemployment := make(plotter.Values, len(panel.Rates))
	for i, r := range panel.Rates {
		regions[i] = r.Region
		employment[i] = r.EmploymentRate
		unemployment[i] = r.UnemploymentRate
	}

	barWidth := vg.Points(14)

	empBars, err := plotter.NewBarChart(employment, barWidth)
	if err != nil {
		return err
	}
	empBars.Color = employedColor
	empBars.LineStyle.Width = vg.Length(0)
	empBars.Offset = -barWidth / 2

	unempBars, err := plotter.NewBarChart(unemployment, barWidth)
	if err != nil {
		return err
	}
	unempBars.Color = unemployedColor
	unempBars.LineStyle.Width = vg.Length(0)
	unempBars.Offset = barWidth / 2

	p.Add(empBars, unempBars)
	p.Legend.Add(dashboard.LabelEmployRate, empBars)
	p.Legend.Add(dashboard.LabelUnemployRate, unempBars)
	p.NominalX(regions...)
	p.Y.Min = 0

	return writeSVG(p, w)
}
