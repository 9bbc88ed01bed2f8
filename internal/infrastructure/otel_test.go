package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "stdout"

	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelDisabledExporters(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "none"
	cfg.MetricExporter = "none"

	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.NotNil(t, providers.Meter, "falls back to the global meter")
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestOTelUnsupportedExporter(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "zipkin"

	_, err := InitializeOTel(cfg, quietLogger())
	assert.Error(t, err)
}

func TestDashboardMetricsExposed(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateDashboardMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordDatasetLoad(ctx, metrics, "labor.csv", 20*time.Millisecond, nil)
	RecordCacheLookup(ctx, metrics, true)
	RecordCacheLookup(ctx, metrics, false)
	RecordDashboardRender(ctx, metrics, []string{"trend"})
	RecordChartRender(ctx, metrics, "trend", nil)
	RecordExport(ctx, metrics, "csv", nil)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	for _, name := range []string{
		"dataset_loads_total",
		"dataset_load_duration_seconds",
		"dataset_cache_hits_total",
		"dataset_cache_misses_total",
		"dashboard_renders_total",
		"dashboard_empty_panels_total",
		"chart_renders_total",
		"exports_total",
	} {
		assert.Contains(t, body, name)
	}
}

func TestRecordHelpersNilSafe(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordDatasetLoad(ctx, nil, "x", time.Second, nil)
		RecordCacheLookup(ctx, nil, true)
		RecordDashboardRender(ctx, nil, nil)
		RecordChartRender(ctx, nil, "trend", nil)
		RecordExport(ctx, nil, "csv", nil)
	})
}
