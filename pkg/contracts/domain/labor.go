package domain

import (
	"strconv"
	"time"
)

// Record is one row of the labor-force table. Counts are in thousands of persons.
type Record struct {
	Year               int     `json:"year"`
	Region             string  `json:"region"`
	EconomicallyActive float64 `json:"economically_active"`
	Employed           float64 `json:"employed"`
	Unemployed         float64 `json:"unemployed"`
}

// Key returns the (year, region) pair identifying the record.
func (r Record) Key() RecordKey {
	return RecordKey{Year: r.Year, Region: r.Region}
}

// RecordKey identifies a record by year and region
type RecordKey struct {
	Year   int    `json:"year"`
	Region string `json:"region"`
}

// String renders the key as "year/region"
func (k RecordKey) String() string {
	return strconv.Itoa(k.Year) + "/" + k.Region
}

// Table is the loaded source table. It is never mutated after load.
type Table struct {
	// Header holds the source column labels in file order.
	Header []string `json:"header"`
	// Cells holds the raw cell text of every data row, aligned with Records.
	Cells   [][]string `json:"-"`
	Records []Record   `json:"records"`

	Source      string    `json:"source"`
	Encoding    string    `json:"encoding"`
	Fingerprint string    `json:"fingerprint"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// Len returns the number of records
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Rows returns the raw cells for display. Tables built in memory without
// source cells get their rows synthesized from the records.
func (t *Table) Rows() [][]string {
	if t == nil {
		return nil
	}
	if len(t.Cells) == len(t.Records) && len(t.Cells) > 0 {
		return t.Cells
	}
	rows := make([][]string, 0, len(t.Records))
	for _, r := range t.Records {
		rows = append(rows, []string{
			strconv.Itoa(r.Year),
			r.Region,
			strconv.FormatFloat(r.EconomicallyActive, 'f', -1, 64),
			strconv.FormatFloat(r.Employed, 'f', -1, 64),
			strconv.FormatFloat(r.Unemployed, 'f', -1, 64),
		})
	}
	return rows
}

// Selection is the (year, region) pair chosen by the user for one render.
type Selection struct {
	Year   int    `json:"year"`
	Region string `json:"region"`
}

// RegionRate is the employment/unemployment rate pair of one region, in percent.
type RegionRate struct {
	Region           string  `json:"region"`
	EmploymentRate   float64 `json:"employment_rate"`
	UnemploymentRate float64 `json:"unemployment_rate"`
}
