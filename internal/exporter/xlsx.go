package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"labordash/internal/dashboard"
	"labordash/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetKPI        = "KPI"
	SheetTrend      = "Trend"
	SheetComparison = "Comparison"
	SheetData       = "Data"
)

// XLSXWriter writes the current view and the raw table as a workbook
type XLSXWriter struct{}

// NewXLSXWriter creates a workbook writer
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{}
}

// WriteView writes one sheet per dashboard panel plus the raw data
func (x *XLSXWriter) WriteView(w io.Writer, table *domain.Table, vm dashboard.ViewModel) error {
	if table == nil {
		return fmt.Errorf("no table to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetKPI); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	for _, name := range []string{SheetTrend, SheetComparison, SheetData} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	sheets := []struct {
		name   string
		header []interface{}
		rows   [][]interface{}
		notice string
	}{
		{SheetKPI, []interface{}{vm.Title, "값", "표시"}, kpiRows(vm.KPI), vm.KPI.Notice},
		{SheetTrend, []interface{}{"년도", dashboard.LabelEmployed, dashboard.LabelUnemployed}, trendRows(vm.Trend), vm.Trend.Notice},
		{SheetComparison, []interface{}{"지역", dashboard.LabelEmployRate, dashboard.LabelUnemployRate}, comparisonRows(vm.Comparison), vm.Comparison.Notice},
		{SheetData, stringsToRow(table.Header), dataRows(table), ""},
	}

	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.header, s.rows, s.notice, bold); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}, notice string, headerStyle int) error {
	if len(header) == 0 {
		return nil
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	if len(rows) == 0 && notice != "" {
		return f.SetCellValue(sheet, "A2", notice)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 18)
}

func kpiRows(p dashboard.KPIPanel) [][]interface{} {
	rows := make([][]interface{}, 0, len(p.Values))
	for _, k := range p.Values {
		rows = append(rows, []interface{}{k.Label, k.Value, k.Display})
	}
	return rows
}

func trendRows(p dashboard.TrendPanel) [][]interface{} {
	rows := make([][]interface{}, 0, len(p.Points))
	for _, pt := range p.Points {
		rows = append(rows, []interface{}{pt.Year, pt.Employed, pt.Unemployed})
	}
	return rows
}

func comparisonRows(p dashboard.ComparisonPanel) [][]interface{} {
	rows := make([][]interface{}, 0, len(p.Rates))
	for _, r := range p.Rates {
		rows = append(rows, []interface{}{r.Region, r.EmploymentRate, r.UnemploymentRate})
	}
	return rows
}

func dataRows(table *domain.Table) [][]interface{} {
	cells := table.Rows()
	rows := make([][]interface{}, 0, len(cells))
	for _, c := range cells {
		rows = append(rows, stringsToRow(c))
	}
	return rows
}

func stringsToRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
