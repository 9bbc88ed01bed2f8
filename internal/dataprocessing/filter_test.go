package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labordash/internal/shared/testutil"
	"labordash/pkg/contracts/domain"
)

func TestByYearAndRegion(t *testing.T) {
	table := testutil.SampleTable()

	tests := []struct {
		name   string
		year   int
		region string
		want   domain.Record
		found  bool
	}{
		{
			name:   "aggregate row",
			year:   2023,
			region: "계",
			want:   domain.Record{Year: 2023, Region: "계", EconomicallyActive: 1000, Employed: 950, Unemployed: 50},
			found:  true,
		},
		{
			name:   "sub-region row",
			year:   2022,
			region: "서울",
			want:   domain.Record{Year: 2022, Region: "서울", EconomicallyActive: 490, Employed: 460, Unemployed: 30},
			found:  true,
		},
		{
			name:   "region absent for year",
			year:   2021,
			region: "서울",
			found:  false,
		},
		{
			name:   "unknown year",
			year:   1999,
			region: "계",
			found:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ByYearAndRegion(table, tt.year, tt.region)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestByYearAndRegionMatchesEveryPair(t *testing.T) {
	table := testutil.SampleTable()
	for _, r := range table.Records {
		got, ok := ByYearAndRegion(table, r.Year, r.Region)
		require.True(t, ok, r.Key().String())
		assert.Equal(t, r, got)
	}
}

func TestByYearAndRegionFirstDuplicateWins(t *testing.T) {
	table := &domain.Table{Records: []domain.Record{
		{Year: 2023, Region: "계", EconomicallyActive: 1000, Employed: 950, Unemployed: 50},
		{Year: 2023, Region: "계", EconomicallyActive: 1, Employed: 1, Unemployed: 0},
	}}

	got, ok := ByYearAndRegion(table, 2023, "계")
	require.True(t, ok)
	assert.Equal(t, float64(1000), got.EconomicallyActive)
	assert.Equal(t, []domain.RecordKey{{Year: 2023, Region: "계"}}, DuplicateKeys(table))
}

func TestByYearPreservesOrderAndCount(t *testing.T) {
	table := testutil.SampleTable()

	for _, year := range []int{2021, 2022, 2023, 2030} {
		want := 0
		for _, r := range table.Records {
			if r.Year == year {
				want++
			}
		}
		got := ByYear(table, year)
		assert.Len(t, got, want, "year %d", year)
		for _, r := range got {
			assert.Equal(t, year, r.Year)
		}
	}

	regions := make([]string, 0)
	for _, r := range ByYear(table, 2023) {
		regions = append(regions, r.Region)
	}
	assert.Equal(t, []string{"계", "서울", "부산"}, regions)
}

func TestByRegion(t *testing.T) {
	table := testutil.SampleTable()

	got := ByRegion(table, "계")
	require.Len(t, got, 3)
	assert.Equal(t, []int{2021, 2022, 2023}, []int{got[0].Year, got[1].Year, got[2].Year})

	assert.Empty(t, ByRegion(table, "제주"))
	assert.Empty(t, ByRegion(nil, "계"))
}

func TestAvailableYears(t *testing.T) {
	table := &domain.Table{Records: []domain.Record{
		{Year: 2021, Region: "계"},
		{Year: 2023, Region: "계"},
		{Year: 2022, Region: "계"},
		{Year: 2023, Region: "서울"},
		{Year: 2021, Region: "서울"},
	}}

	years := AvailableYears(table)
	assert.Equal(t, []int{2023, 2022, 2021}, years)
	for i := 1; i < len(years); i++ {
		assert.Greater(t, years[i-1], years[i], "strictly descending")
	}

	assert.Empty(t, AvailableYears(&domain.Table{}))
}

func TestAvailableRegions(t *testing.T) {
	tests := []struct {
		name    string
		records []domain.Record
		want    []string
	}{
		{
			name: "aggregate first, first-seen order after",
			records: []domain.Record{
				{Year: 2023, Region: "부산"},
				{Year: 2023, Region: "계"},
				{Year: 2023, Region: "서울"},
				{Year: 2022, Region: "부산"},
			},
			want: []string{"계", "부산", "서울"},
		},
		{
			name:    "aggregate listed even when absent",
			records: []domain.Record{{Year: 2023, Region: "서울"}},
			want:    []string{"계", "서울"},
		},
		{
			name:    "empty table",
			records: nil,
			want:    []string{"계"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AvailableRegions(&domain.Table{Records: tt.records}, "계")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "계", got[0])
		})
	}
}

func TestFiltersDoNotMutateTable(t *testing.T) {
	table := testutil.SampleTable()
	before := append([]domain.Record(nil), table.Records...)

	_ = ByYear(table, 2023)
	_ = ByRegion(table, "서울")
	_ = AvailableYears(table)
	_ = AvailableRegions(table, "계")
	_ = SortByYear(table.Records)

	assert.Equal(t, before, table.Records)
}

func TestSortByYear(t *testing.T) {
	records := []domain.Record{
		{Year: 2023, Region: "a"},
		{Year: 2021, Region: "b"},
		{Year: 2023, Region: "c"},
		{Year: 2022, Region: "d"},
	}
	got := SortByYear(records)
	assert.Equal(t, []string{"b", "d", "a", "c"}, []string{got[0].Region, got[1].Region, got[2].Region, got[3].Region})
}

func TestHasRegion(t *testing.T) {
	table := testutil.SampleTable()
	assert.True(t, HasRegion(table, "부산"))
	assert.False(t, HasRegion(table, "제주"))
}
