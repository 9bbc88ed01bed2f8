package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"labordash/internal/charts"
	"labordash/internal/dashboard"
	"labordash/internal/dataprocessing"
	"labordash/internal/dataset"
	"labordash/internal/exporter"
	"labordash/internal/infrastructure"
	"labordash/pkg/contracts/domain"
	"labordash/pkg/contracts/events"
)

// TableSource provides the memoized source table
type TableSource interface {
	Get(ctx context.Context, path string) (*domain.Table, error)
	Reload(ctx context.Context, path string) (*domain.Table, error)
	Stats() dataset.CacheStats
}

// Broadcaster pushes messages to every open dashboard page
type Broadcaster interface {
	Broadcast(msg events.WebSocketMessage)
}

// Options lists the selectable values and the default selection
type Options struct {
	Years       []int            `json:"years"`
	Regions     []string         `json:"regions"`
	Aggregate   string           `json:"aggregate"`
	Default     domain.Selection `json:"default"`
	Fingerprint string           `json:"fingerprint"`
}

// RawData is the whole table as displayed in the raw panel
type RawData struct {
	Source      string     `json:"source"`
	Encoding    string     `json:"encoding"`
	Fingerprint string     `json:"fingerprint"`
	LoadedAt    time.Time  `json:"loaded_at"`
	Header      []string   `json:"header"`
	Rows        [][]string `json:"rows"`
}

// ChartResult describes a rendered chart
type ChartResult struct {
	Fingerprint string
	// Notice is set when the placeholder was drawn instead of the chart
	Notice string
}

// DashboardService loads the table, resolves selections and renders views
type DashboardService struct {
	source      TableSource
	path        string
	aggregate   string
	exporter    *exporter.Exporter
	broadcaster Broadcaster
	metrics     *infrastructure.DashboardMetrics
	tracer      trace.Tracer
	logger      *slog.Logger
}

// NewDashboardService creates the service for the table at path
func NewDashboardService(source TableSource, path, aggregate string, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &DashboardService{
		source:    source,
		path:      path,
		aggregate: aggregate,
		exporter:  exporter.New(),
		metrics:   metrics,
		tracer:    otel.Tracer(infrastructure.MeterName),
		logger:    infrastructure.WithComponent(logger, "dashboard_service"),
	}
}

// SetBroadcaster attaches the hub notified about reloads
func (s *DashboardService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// DataPath returns the path of the source table
func (s *DashboardService) DataPath() string {
	return s.path
}

// CacheStats reports the memoizing cache counters
func (s *DashboardService) CacheStats() dataset.CacheStats {
	return s.source.Stats()
}

// Table returns the current table
func (s *DashboardService) Table(ctx context.Context) (*domain.Table, error) {
	table, err := s.source.Get(ctx, s.path)
	if err != nil {
		return nil, mapDataError(err)
	}
	if table == nil {
		return nil, mapDataError(ErrNoTable)
	}
	return table, nil
}

// Fingerprint returns the content hash of the current table
func (s *DashboardService) Fingerprint(ctx context.Context) (string, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return "", err
	}
	return table.Fingerprint, nil
}

// Dashboard renders the view model for a selection. A zero year selects the
// most recent year and an empty region selects the aggregate.
func (s *DashboardService) Dashboard(ctx context.Context, sel domain.Selection) (dashboard.ViewModel, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return dashboard.ViewModel{}, err
	}
	return s.render(ctx, table, sel)
}

func (s *DashboardService) render(ctx context.Context, table *domain.Table, sel domain.Selection) (dashboard.ViewModel, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.render")
	defer span.End()

	resolved, err := dashboard.ResolveSelection(table, sel.Year, sel.Region, s.aggregate)
	if err != nil {
		return dashboard.ViewModel{}, mapDataError(err)
	}
	span.SetAttributes(
		attribute.Int("selection.year", resolved.Year),
		attribute.String("selection.region", resolved.Region),
	)

	vm := dashboard.Render(table, resolved, dashboard.Options{Aggregate: s.aggregate})

	empty := vm.EmptyPanels()
	infrastructure.RecordDashboardRender(ctx, s.metrics, empty)
	if len(empty) > 0 {
		s.logger.DebugContext(ctx, "panels rendered empty",
			slog.Int("year", resolved.Year),
			slog.String("region", resolved.Region),
			slog.Any("panels", empty))
	}
	return vm, nil
}

// Options returns the selectable years and regions
func (s *DashboardService) Options(ctx context.Context) (Options, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return Options{}, err
	}

	def, err := dashboard.ResolveSelection(table, 0, "", s.aggregate)
	if err != nil {
		return Options{}, mapDataError(err)
	}

	return Options{
		Years:       dataprocessing.AvailableYears(table),
		Regions:     dataprocessing.AvailableRegions(table, s.aggregate),
		Aggregate:   s.aggregate,
		Default:     def,
		Fingerprint: table.Fingerprint,
	}, nil
}

// RawTable returns the whole table, unfiltered
func (s *DashboardService) RawTable(ctx context.Context) (RawData, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return RawData{}, err
	}
	return RawData{
		Source:      table.Source,
		Encoding:    table.Encoding,
		Fingerprint: table.Fingerprint,
		LoadedAt:    table.LoadedAt,
		Header:      table.Header,
		Rows:        table.Rows(),
	}, nil
}

// Chart draws one chart for a selection. An empty view draws the
// placeholder and reports its notice in the result.
func (s *DashboardService) Chart(ctx context.Context, w io.Writer, kind charts.Kind, sel domain.Selection) (ChartResult, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return ChartResult{}, err
	}
	vm, err := s.render(ctx, table, sel)
	if err != nil {
		return ChartResult{}, err
	}

	ctx, span := s.tracer.Start(ctx, "chart.render", trace.WithAttributes(attribute.String("chart.kind", string(kind))))
	defer span.End()

	result := ChartResult{Fingerprint: table.Fingerprint}

	var buf bytes.Buffer
	err = charts.Render(&buf, kind, vm)
	if errors.Is(err, charts.ErrNoData) {
		result.Notice = charts.Notice(kind, vm)
		buf.Reset()
		err = charts.NoData(&buf, result.Notice)
	}
	infrastructure.RecordChartRender(ctx, s.metrics, string(kind), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return ChartResult{}, mapDataError(fmt.Errorf("render %s chart: %w", kind, err))
	}

	if _, err := buf.WriteTo(w); err != nil {
		return ChartResult{}, fmt.Errorf("write %s chart: %w", kind, err)
	}
	return result, nil
}

// Export writes the table (and for workbooks the selected view) in format.
// It returns the suggested file name.
func (s *DashboardService) Export(ctx context.Context, w io.Writer, format exporter.Format, sel domain.Selection) (string, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return "", err
	}
	vm, err := s.render(ctx, table, sel)
	if err != nil {
		return "", err
	}

	ctx, span := s.tracer.Start(ctx, "export.write", trace.WithAttributes(attribute.String("export.format", string(format))))
	defer span.End()

	var buf bytes.Buffer
	err = s.exporter.Export(&buf, format, table, vm)
	infrastructure.RecordExport(ctx, s.metrics, string(format), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return "", mapDataError(fmt.Errorf("export %s: %w", format, err))
	}

	if _, err := buf.WriteTo(w); err != nil {
		return "", fmt.Errorf("write %s export: %w", format, err)
	}

	s.logger.InfoContext(ctx, "dataset exported",
		slog.String("format", string(format)),
		slog.Int("year", vm.Selection.Year),
		slog.String("region", vm.Selection.Region))
	return exporter.FileName(format, vm.Selection.Year, vm.Selection.Region), nil
}

// Reload drops the memoized table, loads it again and notifies open pages
func (s *DashboardService) Reload(ctx context.Context, reason string) (events.DatasetChange, error) {
	table, err := s.source.Reload(ctx, s.path)
	if err != nil {
		s.notify(ctx, dataset.ChangeEvent{Path: s.path, Op: reason, Err: err}, reason)
		return events.DatasetChange{}, mapDataError(err)
	}
	return s.notify(ctx, dataset.ChangeEvent{Path: s.path, Op: reason, Table: table}, reason), nil
}

// OnDatasetChange is the watcher callback; it broadcasts the outcome of an
// automatic reload
func (s *DashboardService) OnDatasetChange(ctx context.Context, ev dataset.ChangeEvent) {
	s.notify(ctx, ev, "watcher")
}

func (s *DashboardService) notify(ctx context.Context, ev dataset.ChangeEvent, reason string) events.DatasetChange {
	change := events.DatasetChange{Source: ev.Path, Reason: reason}
	msgType := events.MessageTypeDatasetReloaded

	switch {
	case ev.Err != nil:
		msgType = events.MessageTypeDatasetUnavailable
		s.logger.WarnContext(ctx, "dataset reload failed",
			slog.String("path", ev.Path),
			slog.String("reason", reason),
			slog.String("error", ev.Err.Error()))
	case ev.Table != nil:
		change.Fingerprint = ev.Table.Fingerprint
		change.Records = len(ev.Table.Records)
		s.logger.InfoContext(ctx, "dataset reloaded",
			slog.String("path", ev.Path),
			slog.String("reason", reason),
			slog.String("fingerprint", change.Fingerprint),
			slog.Int("records", change.Records))
	}

	if s.broadcaster != nil {
		msg := events.NewDatasetMessage(msgType, change)
		msg.TraceID = infrastructure.GetTraceID(ctx)
		s.broadcaster.Broadcast(msg)
	}
	return change
}
