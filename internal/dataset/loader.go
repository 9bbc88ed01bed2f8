package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"labordash/internal/dataprocessing"
	"labordash/internal/infrastructure"
	"labordash/pkg/contracts/domain"
)

// Load reads the table at path. A missing file yields an error matching
// ErrFileNotFound; undecodable or malformed content yields *DecodeError,
// *ParseError or *SchemaError.
func Load(path string, opts Options) (*domain.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(path, raw, opts)
}

// Parse builds a table from the raw bytes of a source file. path selects the
// file format and is recorded as the table source.
func Parse(path string, raw []byte, opts Options) (*domain.Table, error) {
	var (
		rows     [][]string
		encoding string
		err      error
	)

	switch kind, delimiter := opts.detect(path); kind {
	case formatXLSX:
		if rows, err = readWorkbook(raw, opts.Sheet); err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		encoding = "xlsx"
	default:
		var text string
		if text, encoding, err = decodeText(path, raw, opts.FallbackEncoding); err != nil {
			return nil, err
		}
		if rows, err = readDelimited(text, delimiter); err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				return nil, &ParseError{Path: path, Line: csvErr.Line, Err: csvErr.Err}
			}
			return nil, &ParseError{Path: path, Err: err}
		}
	}

	header, cells, records, err := buildRecords(path, rows, opts.Columns)
	if err != nil {
		return nil, err
	}

	return &domain.Table{
		Header:      header,
		Cells:       cells,
		Records:     records,
		Source:      path,
		Encoding:    encoding,
		Fingerprint: Fingerprint(raw),
		LoadedAt:    time.Now().UTC(),
	}, nil
}

// Loader wraps Load with logging, tracing and metrics
type Loader struct {
	opts    Options
	logger  *slog.Logger
	metrics *infrastructure.DashboardMetrics
	tracer  trace.Tracer
}

// NewLoader creates a loader. metrics may be nil.
func NewLoader(opts Options, logger *slog.Logger, metrics *infrastructure.DashboardMetrics) *Loader {
	return &Loader{
		opts:    opts,
		logger:  infrastructure.WithComponent(logger, "dataset"),
		metrics: metrics,
		tracer:  otel.Tracer("labordash/dataset"),
	}
}

// Options returns the loader options
func (l *Loader) Options() Options {
	return l.opts
}

// Load reads the table at path
func (l *Loader) Load(ctx context.Context, path string) (*domain.Table, error) {
	ctx, span := l.tracer.Start(ctx, "dataset.load", trace.WithAttributes(attribute.String("dataset.path", path)))
	defer span.End()

	start := time.Now()
	table, err := Load(path, l.opts)
	duration := time.Since(start)
	infrastructure.RecordDatasetLoad(ctx, l.metrics, path, duration, err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		level := slog.LevelError
		if errors.Is(err, ErrFileNotFound) {
			level = slog.LevelWarn
		}
		l.logger.Log(ctx, level, "dataset load failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("dataset.records", table.Len()),
		attribute.String("dataset.encoding", table.Encoding),
	)

	if dups := dataprocessing.DuplicateKeys(table); len(dups) > 0 {
		keys := make([]string, len(dups))
		for i, k := range dups {
			keys[i] = k.String()
		}
		l.logger.WarnContext(ctx, "duplicate year/region rows, first match is used",
			slog.String("path", path),
			slog.String("keys", strings.Join(keys, ", ")))
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", path),
		slog.Int("records", table.Len()),
		slog.String("encoding", table.Encoding),
		slog.String("fingerprint", table.Fingerprint),
		slog.Duration("duration", duration))

	return table, nil
}
