package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"labordash/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes the raw table as CSV
type CSVWriter struct {
	// BOMPrefix adds a UTF-8 BOM so spreadsheet programs detect the encoding
	BOMPrefix bool
}

// NewCSVWriter creates a CSV writer that prefixes its output with a BOM
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{BOMPrefix: true}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool
}

// WriteTable writes the table's header and original cells
func (c *CSVWriter) WriteTable(w io.Writer, table *domain.Table) error {
	if table == nil {
		return fmt.Errorf("no table to export")
	}
	return WriteCSV(w, WriteOptions{
		Headers:   table.Header,
		Records:   table.Rows(),
		BOMPrefix: c.BOMPrefix,
	})
}

// WriteCSV writes headers and records to w
func WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
