// Package charts renders the dashboard's charts as SVG.
//
// The trend and comparison charts are drawn with gonum/plot; the composition
// donut uses go-chart. Every chart returns ErrNoData for an empty panel and
// NoData draws the placeholder shown in its place.
package charts
