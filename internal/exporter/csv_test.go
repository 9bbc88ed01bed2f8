package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labordash/internal/shared/testutil"
	"labordash/pkg/contracts/domain"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCSVWriter_WriteTable(t *testing.T) {
	table := testutil.SampleTable()

	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter().WriteTable(&buf, table))

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, utf8BOM), "output should start with a UTF-8 BOM")

	rows, err := csv.NewReader(bytes.NewReader(out[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, len(table.Records)+1)
	assert.Equal(t, table.Header, rows[0])
	assert.Equal(t, table.Rows(), rows[1:])
}

func TestCSVWriter_KeepsOriginalCells(t *testing.T) {
	table := testutil.SampleTable()
	table.Records = table.Records[:1]
	table.Cells = [][]string{{"2021", "계", "1,000", "950", "-"}}

	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter().WriteTable(&buf, table))

	assert.Contains(t, buf.String(), `2021,계,"1,000",950,-`)
}

func TestWriteCSV(t *testing.T) {
	tests := []struct {
		name    string
		options WriteOptions
		want    string
	}{
		{
			name:    "headers and records",
			options: WriteOptions{Headers: []string{"a", "b"}, Records: [][]string{{"1", "2"}}},
			want:    "a,b\n1,2\n",
		},
		{
			name:    "records only",
			options: WriteOptions{Records: [][]string{{"x"}}},
			want:    "x\n",
		},
		{
			name:    "bom",
			options: WriteOptions{Headers: []string{"h"}, BOMPrefix: true},
			want:    "\ufeffh\n",
		},
		{
			name:    "quotes commas",
			options: WriteOptions{Records: [][]string{{"1,000", "서울"}}},
			want:    "\"1,000\",서울\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteCSV(&buf, tt.options))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriteCSVErrors(t *testing.T) {
	err := WriteCSV(failingWriter{}, WriteOptions{BOMPrefix: true})
	assert.ErrorContains(t, err, "BOM")

	assert.Error(t, NewCSVWriter().WriteTable(&bytes.Buffer{}, (*domain.Table)(nil)))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"XLSX", FormatXLSX, false},
		{" xlsx ", FormatXLSX, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatMetadata(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
	assert.Equal(t, "application/octet-stream", Format("zip").ContentType())

	assert.Equal(t, "labor_force.csv", FileName(FormatCSV, 2023, "계"))
	assert.Equal(t, "labor_force_2023_서울.xlsx", FileName(FormatXLSX, 2023, "서울"))
}
