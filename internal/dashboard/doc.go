// Package dashboard turns a loaded table and a (year, region) selection into
// a ViewModel: title, KPI values, chart series and the raw table. Render has
// no side effects, so each request simply calls it again.
package dashboard
