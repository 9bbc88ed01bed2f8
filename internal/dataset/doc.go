// Package dataset loads the labor-force source table.
//
// Load reads a CSV, TSV or XLSX file into an immutable domain.Table. Text
// files are decoded as UTF-8 and fall back to CP949 when the bytes are not
// valid UTF-8. Cache memoizes tables by path and Watcher invalidates the
// entry when the file changes on disk.
package dataset
