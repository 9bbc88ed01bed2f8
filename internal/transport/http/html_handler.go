package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"labordash/internal/charts"
	"labordash/internal/config"
	"labordash/internal/dashboard"
	apierrors "labordash/internal/errors"
	"labordash/internal/exporter"
	"labordash/internal/middleware"
	"labordash/pkg/contracts/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageHandler renders the server-side dashboard page
type PageHandler struct {
	service   DashboardService
	validator *middleware.ValidationMiddleware
	tmpl      *template.Template
	logger    *slog.Logger
}

type pageData struct {
	AppName   string
	Error     string
	View      *dashboard.ViewModel
	ChartURLs map[string]string
	ExportURL string
}

// NewPageHandler parses the embedded page template
func NewPageHandler(service DashboardService, validator *middleware.ValidationMiddleware, logger *slog.Logger) (*PageHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, err
	}
	return &PageHandler{
		service:   service,
		validator: validator,
		tmpl:      tmpl,
		logger:    logger.With(slog.String("component", "page_handler")),
	}, nil
}

// RedirectToDashboard redirects root requests to the dashboard page
func RedirectToDashboard(w http.ResponseWriter, r *http.Request) {
	target := "/dashboard"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// ServeDashboard handles GET /dashboard. Failures are shown in place of the
// page with the status of the underlying error.
func (h *PageHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	sel, err := h.validator.ParseSelection(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	vm, err := h.service.Dashboard(r.Context(), sel)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data := pageData{
		AppName:   config.AppName,
		View:      &vm,
		ChartURLs: make(map[string]string, len(charts.Kinds())),
		ExportURL: "/api/export/" + string(exporter.FormatXLSX) + "?" + selectionQuery(vm.Selection),
	}
	for _, kind := range charts.Kinds() {
		data.ChartURLs[string(kind)] = "/api/charts/" + string(kind) + ".svg?" + selectionQuery(vm.Selection)
	}
	h.execute(w, r, http.StatusOK, data)
}

func selectionQuery(sel domain.Selection) string {
	q := url.Values{}
	q.Set("year", strconv.Itoa(sel.Year))
	q.Set("region", sel.Region)
	return q.Encode()
}

func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "대시보드를 표시할 수 없습니다."

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
		message = apiErr.Message
		if details, ok := apiErr.Details.([]apierrors.ValidationError); ok && len(details) > 0 {
			message = details[0].Message
		}
	}

	h.logger.WarnContext(r.Context(), "dashboard page unavailable",
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	h.execute(w, r, status, pageData{AppName: config.AppName, Error: message})
}

func (h *PageHandler) execute(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(r.Context(), "template execution failed", slog.String("error", err.Error()))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
