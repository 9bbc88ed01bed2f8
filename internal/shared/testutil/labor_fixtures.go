package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/korean"

	"labordash/pkg/contracts/domain"
)

// Aggregate is the nationwide sentinel region used by the fixtures
const Aggregate = "계"

// SampleHeader is the header row of the sample CSV
var SampleHeader = []string{"년도", "지역", "경제활동인구 (천명)", "취업자 (천명)", "실업자 (천명)"}

// SampleCSV is a small labor-force table covering two years and two
// sub-regions. 2021 only carries the aggregate row.
const SampleCSV = `년도,지역,경제활동인구 (천명),취업자 (천명),실업자 (천명)
2021,계,900,850,50
2022,계,980,930,50
2022,서울,490,460,30
2022,부산,0,0,0
2023,계,"1,000",950,50
2023,서울,500,470,30
2023,부산,250,240,10
`

// SampleRecords returns the records encoded in SampleCSV
func SampleRecords() []domain.Record {
	return []domain.Record{
		{Year: 2021, Region: "계", EconomicallyActive: 900, Employed: 850, Unemployed: 50},
		{Year: 2022, Region: "계", EconomicallyActive: 980, Employed: 930, Unemployed: 50},
		{Year: 2022, Region: "서울", EconomicallyActive: 490, Employed: 460, Unemployed: 30},
		{Year: 2022, Region: "부산", EconomicallyActive: 0, Employed: 0, Unemployed: 0},
		{Year: 2023, Region: "계", EconomicallyActive: 1000, Employed: 950, Unemployed: 50},
		{Year: 2023, Region: "서울", EconomicallyActive: 500, Employed: 470, Unemployed: 30},
		{Year: 2023, Region: "부산", EconomicallyActive: 250, Employed: 240, Unemployed: 10},
	}
}

// SampleTable returns an in-memory table holding SampleRecords
func SampleTable() *domain.Table {
	return &domain.Table{
		Header:      append([]string(nil), SampleHeader...),
		Records:     SampleRecords(),
		Source:      "sample.csv",
		Encoding:    "utf-8",
		Fingerprint: "sample",
	}
}

// WriteFile writes content under dir and returns its path
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
	return path
}

// WriteCP949 writes content encoded as CP949 (EUC-KR) and returns its path
func WriteCP949(t testing.TB, dir, name, content string) string {
	t.Helper()
	encoded, err := korean.EUCKR.NewEncoder().String(content)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return WriteFile(t, dir, name, encoded)
}

// CSVWith builds a CSV document from the sample header and the given lines
func CSVWith(lines ...string) string {
	return strings.Join(append([]string{strings.Join(SampleHeader, ",")}, lines...), "\n") + "\n"
}
