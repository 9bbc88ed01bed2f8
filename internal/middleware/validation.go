package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	apierrors "labordash/internal/errors"
	"labordash/pkg/contracts/domain"
)

type selectionKey struct{}

// SelectionQuery is the query string accepted by every dashboard view
type SelectionQuery struct {
	Year   string `json:"year" validate:"omitempty,numeric,len=4"`
	Region string `json:"region" validate:"omitempty,max=64,region"`
}

// ChartRequest names the chart to draw
type ChartRequest struct {
	Kind string `json:"kind" validate:"required,oneof=trend composition comparison"`
}

// ExportRequest names the export format
type ExportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv xlsx"`
}

// ValidationMiddleware validates query parameters using struct tags
type ValidationMiddleware struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewValidationMiddleware creates a new validation middleware
func NewValidationMiddleware(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ValidationMiddleware {
	v := validator.New()
	_ = v.RegisterValidation("region", isValidRegion)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ValidationMiddleware{
		validator:    v,
		logger:       logger.With(slog.String("component", "validation_middleware")),
		errorHandler: errorHandler,
	}
}

// ValidateStruct validates a struct and returns validation errors
func (m *ValidationMiddleware) ValidateStruct(v interface{}) error {
	err := m.validator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.NewInternalError("validation failed", err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Value:   fmt.Sprintf("%v", fe.Value()),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors...)
}

// ParseSelection validates the year and region query parameters. Absent
// values stay zero so the service can apply the defaults.
func (m *ValidationMiddleware) ParseSelection(r *http.Request) (domain.Selection, error) {
	q := SelectionQuery{
		Year:   strings.TrimSpace(r.URL.Query().Get("year")),
		Region: strings.TrimSpace(r.URL.Query().Get("region")),
	}
	if err := m.ValidateStruct(q); err != nil {
		return domain.Selection{}, err
	}

	sel := domain.Selection{Region: q.Region}
	if q.Year != "" {
		year, err := strconv.Atoi(q.Year)
		if err != nil {
			return domain.Selection{}, apierrors.InvalidSelection("year", q.Year)
		}
		sel.Year = year
	}
	return sel, nil
}

// ValidateSelection parses the selection query into the request context and
// rejects malformed values with a 400 problem
func (m *ValidationMiddleware) ValidateSelection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sel, err := m.ParseSelection(r)
		if err != nil {
			m.logger.DebugContext(r.Context(), "invalid selection query",
				slog.String("query", r.URL.RawQuery),
				slog.String("error", err.Error()),
			)
			m.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSelection(r.Context(), sel)))
	})
}

// WithSelection stores a parsed selection in ctx
func WithSelection(ctx context.Context, sel domain.Selection) context.Context {
	return context.WithValue(ctx, selectionKey{}, sel)
}

// SelectionFromContext returns the selection stored by ValidateSelection
func SelectionFromContext(ctx context.Context) (domain.Selection, bool) {
	sel, ok := ctx.Value(selectionKey{}).(domain.Selection)
	return sel, ok
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "numeric":
		return fmt.Sprintf("%s must be a number", field)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "region":
		return fmt.Sprintf("%s must be a region name", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isValidRegion accepts printable names without path or markup characters
func isValidRegion(fl validator.FieldLevel) bool {
	for _, ch := range fl.Field().String() {
		if !unicode.IsPrint(ch) || strings.ContainsRune(`<>/\"`, ch) {
			return false
		}
	}
	return true
}
