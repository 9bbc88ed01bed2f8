// Package services implements the business logic between the HTTP handlers
// and the data layer.
//
// DashboardService loads the table through the memoizing cache, resolves the
// selection, renders the view model and hands it to the chart and export
// writers. Data layer failures are translated into API errors here, so
// handlers only ever see *errors.APIError values:
//
//	file not found            -> 503 DATA_UNAVAILABLE
//	decode, parse, schema     -> 500 DATA_CORRUPTED
//	year or region not offered -> 400 VALIDATION_FAILED
//
// Empty selections are not errors; they produce panels in their empty state.
//
// HealthService reports liveness, readiness (is the data file loadable) and
// version information.
package services
