package dataset

import (
	"path/filepath"
	"strings"

	"labordash/internal/config"
)

// Columns holds the header labels of the required columns
type Columns struct {
	Year               string
	Region             string
	EconomicallyActive string
	Employed           string
	Unemployed         string
}

func (c Columns) labels() []string {
	return []string{c.Year, c.Region, c.EconomicallyActive, c.Employed, c.Unemployed}
}

// Options controls how a source table is read
type Options struct {
	// Delimiter is used for files that are neither .csv nor .tsv
	Delimiter rune
	// Sheet selects the worksheet of .xlsx files; empty means the first sheet
	Sheet string
	// FallbackEncoding is tried when the bytes are not valid UTF-8:
	// "cp949", "euc-kr" or "none".
	FallbackEncoding string
	Columns          Columns
}

// DefaultOptions matches the default data configuration
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().Data)
}

// OptionsFromConfig adapts the data section of the application config
func OptionsFromConfig(cfg config.DataConfig) Options {
	delim := ','
	if r := []rune(cfg.Delimiter); len(r) == 1 {
		delim = r[0]
	}
	return Options{
		Delimiter:        delim,
		Sheet:            cfg.Sheet,
		FallbackEncoding: cfg.FallbackEncoding,
		Columns: Columns{
			Year:               cfg.Columns.Year,
			Region:             cfg.Columns.Region,
			EconomicallyActive: cfg.Columns.EconomicallyActive,
			Employed:           cfg.Columns.Employed,
			Unemployed:         cfg.Columns.Unemployed,
		},
	}
}

// format is the physical layout of a source file
type format int

const (
	formatDelimited format = iota
	formatXLSX
)

// detect picks the reader and delimiter from the file extension
func (o Options) detect(path string) (format, rune) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return formatXLSX, 0
	case ".csv":
		return formatDelimited, ','
	case ".tsv":
		return formatDelimited, '\t'
	}
	if o.Delimiter == 0 {
		return formatDelimited, ','
	}
	return formatDelimited, o.Delimiter
}
