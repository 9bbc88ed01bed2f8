// Package exporter writes the dashboard's data for download.
//
// CSV exports carry the raw table exactly as loaded, prefixed with a UTF-8
// BOM for spreadsheet programs. XLSX exports hold the current view as KPI,
// Trend and Comparison sheets followed by the raw Data sheet.
package exporter
