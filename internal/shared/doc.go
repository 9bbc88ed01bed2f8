// Package shared groups helpers used across the dashboard's packages.
//
// The testutil subpackage provides:
//
//	- a buffered slog handler for asserting on log output
//	- labor-force fixtures (a sample CSV, its records, CP949 writers)
//
// Example usage:
//
//	func TestLoad(t *testing.T) {
//	    path := testutil.WriteFile(t, t.TempDir(), "labor.csv", testutil.SampleCSV)
//	    logger, logs := testutil.NewTestLogger(t)
//	    ...
//	}
package shared
