package http

import (
	"context"
	"io"

	"labordash/internal/charts"
	"labordash/internal/dashboard"
	"labordash/internal/exporter"
	"labordash/internal/services"
	"labordash/pkg/contracts/domain"
	"labordash/pkg/contracts/events"
)

// DashboardService is the part of services.DashboardService the handlers use
type DashboardService interface {
	Dashboard(ctx context.Context, sel domain.Selection) (dashboard.ViewModel, error)
	Options(ctx context.Context) (services.Options, error)
	RawTable(ctx context.Context) (services.RawData, error)
	Chart(ctx context.Context, w io.Writer, kind charts.Kind, sel domain.Selection) (services.ChartResult, error)
	Export(ctx context.Context, w io.Writer, format exporter.Format, sel domain.Selection) (string, error)
	Reload(ctx context.Context, reason string) (events.DatasetChange, error)
	DataPath() string
}

// HealthService is the part of services.HealthService the handlers use
type HealthService interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}
