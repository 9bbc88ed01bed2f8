package exporter

import (
	"fmt"
	"io"

	"labordash/internal/dashboard"
	"labordash/pkg/contracts/domain"
)

// Exporter dispatches an export to the writer of the requested format
type Exporter struct {
	csv  *CSVWriter
	xlsx *XLSXWriter
}

// New creates an exporter with the default writers
func New() *Exporter {
	return &Exporter{csv: NewCSVWriter(), xlsx: NewXLSXWriter()}
}

// Export writes table (and for workbooks the rendered view) in format f
func (e *Exporter) Export(w io.Writer, f Format, table *domain.Table, vm dashboard.ViewModel) error {
	switch f {
	case FormatCSV:
		return e.csv.WriteTable(w, table)
	case FormatXLSX:
		return e.xlsx.WriteView(w, table, vm)
	}
	return fmt.Errorf("unsupported export format %q", f)
}
