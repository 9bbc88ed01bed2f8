package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"labordash/internal/charts"
	apierrors "labordash/internal/errors"
	"labordash/internal/exporter"
	"labordash/internal/middleware"
	"labordash/pkg/contracts/domain"
)

// NoticeHeader carries the placeholder notice of a chart drawn for an empty view
const NoticeHeader = "X-Dashboard-Notice"

// DashboardHandler serves the dashboard JSON API, charts and exports
type DashboardHandler struct {
	service      DashboardService
	validator    *middleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardService, validator *middleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the API routes, mounted under /api
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(h.validator.ValidateSelection).Get("/dashboard", h.GetDashboard)
	r.Get("/options", h.GetOptions)

	r.Route("/data", func(r chi.Router) {
		r.Get("/", h.GetData)
		r.Post("/reload", h.ReloadData)
	})

	r.With(h.validator.ValidateSelection).Get("/charts/{kind}.svg", h.GetChart)
	r.With(h.validator.ValidateSelection).Get("/export/{format}", h.Export)

	return r
}

func selection(r *http.Request) domain.Selection {
	sel, _ := middleware.SelectionFromContext(r.Context())
	return sel
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	vm, err := h.service.Dashboard(r.Context(), selection(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if setETag(w, r, vm.Fingerprint) {
		return
	}
	render.JSON(w, r, vm)
}

// GetOptions handles GET /api/options
func (h *DashboardHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.Options(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, opts)
}

// GetData handles GET /api/data
func (h *DashboardHandler) GetData(w http.ResponseWriter, r *http.Request) {
	raw, err := h.service.RawTable(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if setETag(w, r, raw.Fingerprint) {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   raw,
		"count":  len(raw.Rows),
	})
}

// ReloadData handles POST /api/data/reload
func (h *DashboardHandler) ReloadData(w http.ResponseWriter, r *http.Request) {
	change, err := h.service.Reload(r.Context(), "api")
	if err != nil {
		h.logger.WarnContext(r.Context(), "reload failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "reloaded",
		"data":   change,
	})
}

// GetChart handles GET /api/charts/{kind}.svg
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	req := middleware.ChartRequest{Kind: strings.ToLower(chi.URLParam(r, "kind"))}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	kind, err := charts.ParseKind(req.Kind)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("chart "+req.Kind))
		return
	}

	var buf bytes.Buffer
	result, err := h.service.Chart(r.Context(), &buf, kind, selection(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if result.Notice != "" {
		// header values must be ASCII-safe
		w.Header().Set(NoticeHeader, url.QueryEscape(result.Notice))
	}
	if setETag(w, r, result.Fingerprint) {
		return
	}

	w.Header().Set("Content-Type", charts.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.DebugContext(r.Context(), "chart write aborted", slog.String("error", err.Error()))
	}
}

// Export handles GET /api/export/{format}
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	req := middleware.ExportRequest{Format: strings.ToLower(chi.URLParam(r, "format"))}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format, err := exporter.ParseFormat(req.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("export format "+req.Format))
		return
	}

	var buf bytes.Buffer
	filename, err := h.service.Export(r.Context(), &buf, format, selection(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", contentDisposition(filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.DebugContext(r.Context(), "export write aborted", slog.String("error", err.Error()))
	}
}

// contentDisposition carries both an ASCII fallback and the RFC 5987 name
func contentDisposition(filename string) string {
	fallback := strings.Map(func(r rune) rune {
		if r > 0x7e || r < 0x20 || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, filename)
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, fallback, url.PathEscape(filename))
}
