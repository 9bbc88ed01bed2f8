package charts

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"labordash/internal/dashboard"
)

// Composition draws the employed/unemployed split as a donut
func Composition(w io.Writer, panel dashboard.CompositionPanel) error {
	if panel.Empty || len(panel.Slices) == 0 {
		return ErrNoData
	}

	fills := []drawing.Color{
		drawing.ColorFromHex("1f77b4"),
		drawing.ColorFromHex("ff7f0e"),
	}

	values := make([]chart.Value, 0, len(panel.Slices))
	for i, s := range panel.Slices {
		values = append(values, chart.Value{
			Value: s.Value,
			Label: fmt.Sprintf("%s %s", s.Label, s.Display),
			Style: chart.Style{
				FillColor:   fills[i%len(fills)],
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
				FontColor:   drawing.ColorWhite,
			},
		})
	}

	donut := chart.DonutChart{
		Title:  panel.Title,
		Width:  480,
		Height: 480,
		Values: values,
	}
	if err := donut.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("failed to render composition chart: %w", err)
	}
	return nil
}
