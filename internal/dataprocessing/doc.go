// Package dataprocessing holds the filter engine and metric calculator of the
// dashboard. Every function is a pure query over an immutable domain.Table:
// results preserve the table's row order and the table is never modified.
//
// # Filters
//
//	yearSlice := dataprocessing.ByYear(table, 2023)
//	regionSlice := dataprocessing.ByRegion(table, "서울")
//	point, ok := dataprocessing.ByYearAndRegion(table, 2023, "계")
//
// # Metrics
//
// Rates are percentages of the economically active population and are
// exactly zero when that population is zero:
//
//	rate := dataprocessing.UnemploymentRate(point)
//	rates := dataprocessing.RegionalRates(yearSlice, "계")
package dataprocessing
