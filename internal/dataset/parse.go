package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"labordash/pkg/contracts/domain"
)

var (
	errNotNumber  = errors.New("not a number")
	errNotYear    = errors.New("not a year")
	errEmptyValue = errors.New("value is required")
)

// readDelimited splits decoded text into rows
func readDelimited(text string, delimiter rune) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// buildRecords maps rows onto records using the configured column labels.
// The first non-blank row is the header. Blank rows are skipped.
func buildRecords(path string, rows [][]string, cols Columns) ([]string, [][]string, []domain.Record, error) {
	start := 0
	for start < len(rows) && isBlank(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, nil, nil, &SchemaError{Path: path, Missing: cols.labels()}
	}

	header := make([]string, len(rows[start]))
	index := make(map[string]int, len(header))
	for i, h := range rows[start] {
		h = strings.TrimSpace(h)
		header[i] = h
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var missing []string
	for _, label := range cols.labels() {
		if _, ok := index[strings.TrimSpace(label)]; !ok {
			missing = append(missing, label)
		}
	}
	if len(missing) > 0 {
		return nil, nil, nil, &SchemaError{Path: path, Missing: missing}
	}

	col := func(label string) int { return index[strings.TrimSpace(label)] }
	yearCol, regionCol := col(cols.Year), col(cols.Region)
	activeCol, employedCol, unemployedCol := col(cols.EconomicallyActive), col(cols.Employed), col(cols.Unemployed)

	var (
		cells   [][]string
		records []domain.Record
	)
	for i := start + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		line := i + 1
		cell := func(c int) string {
			if c < len(row) {
				return row[c]
			}
			return ""
		}
		fail := func(c int, err error) error {
			return &ParseError{Path: path, Line: line, Column: header[c], Value: cell(c), Err: err}
		}

		year, err := parseYear(cell(yearCol))
		if err != nil {
			return nil, nil, nil, fail(yearCol, err)
		}
		region := strings.TrimSpace(cell(regionCol))
		if region == "" {
			return nil, nil, nil, fail(regionCol, errEmptyValue)
		}

		var counts [3]float64
		for n, c := range []int{activeCol, employedCol, unemployedCol} {
			if counts[n], err = parseCount(cell(c)); err != nil {
				return nil, nil, nil, fail(c, err)
			}
		}

		raw := make([]string, len(header))
		for c := range raw {
			raw[c] = strings.TrimSpace(cell(c))
		}
		cells = append(cells, raw)
		records = append(records, domain.Record{
			Year:               year,
			Region:             region,
			EconomicallyActive: counts[0],
			Employed:           counts[1],
			Unemployed:         counts[2],
		})
	}

	return header, cells, records, nil
}

// parseCount reads a count in thousands. Thousands separators are allowed
// and the statistical blanks "-" and "" read as zero.
func parseCount(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotNumber
	}
	return v, nil
}

// parseYear accepts "2023", "2023년" and "2023.0"
func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "년"))
	s = strings.TrimSuffix(s, ".0")
	if s == "" {
		return 0, errEmptyValue
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errNotYear, s)
	}
	return year, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
