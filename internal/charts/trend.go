package charts

import (
	"image/color"
	"io"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"labordash/internal/dashboard"
)

// Trend draws employed and unemployed counts by year as two labelled lines
func Trend(w io.Writer, panel dashboard.TrendPanel) error {
	if panel.Empty || len(panel.Points) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = panel.Title
	p.X.Label.Text = "년도"
	p.Y.Label.Text = "인원 (천명)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	employed := make(plotter.XYs, len(panel.Points))
	unemployed := make(plotter.XYs, len(panel.Points))
	ticks := make([]plot.Tick, len(panel.Points))
	for i, pt := range panel.Points {
		x := float64(pt.Year)
		employed[i] = plotter.XY{X: x, Y: pt.Employed}
		unemployed[i] = plotter.XY{X: x, Y: pt.Unemployed}
		ticks[i] = plot.Tick{Value: x, Label: strconv.Itoa(pt.Year)}
	}

	if err := addSeries(p, dashboard.LabelEmployed, employed, employedColor); err != nil {
		return err
	}
	if err := addSeries(p, dashboard.LabelUnemployed, unemployed, unemployedColor); err != nil {
		return err
	}

	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Min = 0

	return writeSVG(p, w)
}

func addSeries(p *plot.Plot, name string, xys plotter.XYs, c color.Color) error {
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = vg.Points(2)
	points.Color = c
	points.Shape = draw.CircleGlyph{}

	texts := make([]string, len(xys))
	for i, xy := range xys {
		texts[i] = dashboard.FormatCount(xy.Y)
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
	}
	labels.Offset = vg.Point{Y: vg.Points(6)}

	p.Add(line, points, labels)
	p.Legend.Add(name, line, points)
	return nil
}
