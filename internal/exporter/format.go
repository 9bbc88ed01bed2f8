package exporter

import (
	"fmt"
	"strings"
)

// Format names an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported export formats
func Formats() []Format {
	return []Format{FormatCSV, FormatXLSX}
}

// ParseFormat validates an export format name
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// FileName builds the download name for a selection
func FileName(f Format, year int, region string) string {
	if f == FormatCSV {
		return "labor_force.csv"
	}
	return fmt.Sprintf("labor_force_%d_%s.%s", year, region, f)
}
