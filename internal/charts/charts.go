package charts

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"labordash/internal/dashboard"
)

// ErrNoData is returned when the chart's input view is empty
var ErrNoData = errors.New("no data to chart")

// Kind names a chart of the dashboard
type Kind string

const (
	KindTrend       Kind = "trend"
	KindComposition Kind = "composition"
	KindComparison  Kind = "comparison"
)

// Kinds lists every chart kind in page order
func Kinds() []Kind {
	return []Kind{KindTrend, KindComposition, KindComparison}
}

// ParseKind validates a chart kind name
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown chart kind %q", s)
}

// ContentType of every rendered chart
const ContentType = "image/svg+xml"

var (
	width  = vg.Points(640)
	height = vg.Points(400)

	employedColor   = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	unemployedColor = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
)

// Render draws the chart of the given kind for vm. Panels in their empty
// state yield ErrNoData.
func Render(w io.Writer, kind Kind, vm dashboard.ViewModel) error {
	switch kind {
	case KindTrend:
		return Trend(w, vm.Trend)
	case KindComposition:
		return Composition(w, vm.Composition)
	case KindComparison:
		return Comparison(w, vm.Comparison)
	}
	return fmt.Errorf("unknown chart kind %q", kind)
}

// Notice returns the empty-state message of the panel behind kind
func Notice(kind Kind, vm dashboard.ViewModel) string {
	switch kind {
	case KindTrend:
		return vm.Trend.Notice
	case KindComposition:
		return vm.Composition.Notice
	case KindComparison:
		return vm.Comparison.Notice
	}
	return ""
}

func writeSVG(p *plot.Plot, w io.Writer) error {
	wt, err := p.WriterTo(width, height, "svg")
	if err != nil {
		return fmt.Errorf("failed to create svg canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write svg: %w", err)
	}
	return nil
}
