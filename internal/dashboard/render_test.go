package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labordash/internal/shared/testutil"
	"labordash/pkg/contracts/domain"
)

var opts = Options{Aggregate: "계"}

func TestRenderKPIScenario(t *testing.T) {
	table := &domain.Table{Records: []domain.Record{
		{Year: 2023, Region: "계", EconomicallyActive: 1000, Employed: 950, Unemployed: 50},
		{Year: 2023, Region: "서울", EconomicallyActive: 500, Employed: 470, Unemployed: 30},
	}}

	vm := Render(table, domain.Selection{Year: 2023, Region: "계"}, opts)

	assert.Equal(t, "2023년 계 주요 지표", vm.Title)
	require.False(t, vm.KPI.Empty)
	require.Len(t, vm.KPI.Values, 5)

	displays := make(map[string]string)
	values := make(map[string]float64)
	for _, k := range vm.KPI.Values {
		displays[k.Key] = k.Display
		values[k.Key] = k.Value
	}
	assert.Equal(t, "1,000", displays["economically_active"])
	assert.Equal(t, "950", displays["employed"])
	assert.Equal(t, "50", displays["unemployed"])
	assert.Equal(t, "5.00%", displays["unemployment_rate"])
	assert.Equal(t, "95.00%", displays["employment_rate"])
	assert.InDelta(t, 5.0, values["unemployment_rate"], 1e-9)
	assert.InDelta(t, 95.0, values["employment_rate"], 1e-9)

	assert.Equal(t, []domain.RegionRate{{Region: "서울", EmploymentRate: 94, UnemploymentRate: 6}}, vm.Comparison.Rates)
	assert.Empty(t, vm.EmptyPanels())
}

func TestRenderTrendAscending(t *testing.T) {
	table := &domain.Table{Records: []domain.Record{
		{Year: 2023, Region: "계", EconomicallyActive: 1000, Employed: 950, Unemployed: 50},
		{Year: 2021, Region: "계", EconomicallyActive: 900, Employed: 850, Unemployed: 50},
		{Year: 2022, Region: "계", EconomicallyActive: 980, Employed: 930, Unemployed: 50},
		{Year: 2022, Region: "계", EconomicallyActive: 1, Employed: 1, Unemployed: 0},
	}}

	vm := Render(table, domain.Selection{Year: 2023, Region: "계"}, opts)

	require.False(t, vm.Trend.Empty)
	assert.Equal(t, "계 연도별 추이", vm.Trend.Title)
	assert.Equal(t, []TrendPoint{
		{Year: 2021, Employed: 850, Unemployed: 50},
		{Year: 2022, Employed: 930, Unemployed: 50},
		{Year: 2023, Employed: 950, Unemployed: 50},
	}, vm.Trend.Points)
	assert.Equal(t, []int{2023, 2022, 2021}, vm.Years)
}

func TestRenderComposition(t *testing.T) {
	vm := Render(testutil.SampleTable(), domain.Selection{Year: 2023, Region: "계"}, opts)

	require.False(t, vm.Composition.Empty)
	require.Len(t, vm.Composition.Slices, 2)
	assert.Equal(t, SliceEmployed, vm.Composition.Slices[0].Label)
	assert.Equal(t, 950.0, vm.Composition.Slices[0].Value)
	assert.Equal(t, "95.00%", vm.Composition.Slices[0].Display)
	assert.Equal(t, "5.00%", vm.Composition.Slices[1].Display)
	assert.Equal(t, "2023년 계 구성", vm.Composition.Title)
}

func TestRenderEmptySelectionIsolated(t *testing.T) {
	// the aggregate row is missing entirely
	table := &domain.Table{
		Header: testutil.SampleHeader,
		Records: []domain.Record{
			{Year: 2023, Region: "서울", EconomicallyActive: 500, Employed: 470, Unemployed: 30},
			{Year: 2023, Region: "부산", EconomicallyActive: 250, Employed: 240, Unemployed: 10},
		},
	}

	vm := Render(table, domain.Selection{Year: 2023, Region: "계"}, opts)

	assert.True(t, vm.KPI.Empty)
	assert.Equal(t, NoticeNoSelection, vm.KPI.Notice)
	assert.Empty(t, vm.KPI.Values)

	assert.True(t, vm.Trend.Empty)
	assert.Equal(t, NoticeNoTrend, vm.Trend.Notice)

	assert.True(t, vm.Composition.Empty)
	assert.Equal(t, NoticeNoComposite, vm.Composition.Notice)

	// the rest of the page still renders
	assert.False(t, vm.Comparison.Empty)
	assert.Len(t, vm.Comparison.Rates, 2)
	assert.False(t, vm.Raw.Empty)
	assert.Len(t, vm.Raw.Rows, 2)

	assert.Equal(t, []string{PanelKPI, PanelTrend, PanelComposition}, vm.EmptyPanels())
}

func TestRenderRawTableIsUnfiltered(t *testing.T) {
	table := testutil.SampleTable()

	vm := Render(table, domain.Selection{Year: 2021, Region: "서울"}, opts)

	assert.True(t, vm.KPI.Empty)
	assert.False(t, vm.Raw.Empty)
	assert.Equal(t, testutil.SampleHeader, vm.Raw.Header)
	assert.Len(t, vm.Raw.Rows, table.Len())
}

func TestRenderComparisonAggregateOnly(t *testing.T) {
	vm := Render(testutil.SampleTable(), domain.Selection{Year: 2021, Region: "계"}, opts)

	assert.False(t, vm.KPI.Empty)
	assert.True(t, vm.Comparison.Empty)
	assert.Equal(t, NoticeNoComparison, vm.Comparison.Notice)
	assert.Nil(t, vm.Comparison.Rates)
}

func TestRenderZeroActiveRegion(t *testing.T) {
	vm := Render(testutil.SampleTable(), domain.Selection{Year: 2022, Region: "부산"}, opts)

	require.False(t, vm.KPI.Empty)
	assert.Equal(t, "0.00%", vm.KPI.Values[3].Display)
	assert.Equal(t, "0.00%", vm.KPI.Values[4].Display)
	// no employed or unemployed persons: nothing to split
	assert.True(t, vm.Composition.Empty)

	// zero-active regions stay in the comparison with zero rates
	require.Len(t, vm.Comparison.Rates, 2)
	assert.Equal(t, domain.RegionRate{Region: "부산"}, vm.Comparison.Rates[1])
}

func TestRenderNilTable(t *testing.T) {
	vm := Render(nil, domain.Selection{Region: "계"}, opts)

	assert.Equal(t, []string{"계"}, vm.Regions)
	assert.ElementsMatch(t, []string{PanelKPI, PanelTrend, PanelComposition, PanelComparison, PanelRaw}, vm.EmptyPanels())
}

func TestResolveSelection(t *testing.T) {
	table := testutil.SampleTable()

	tests := []struct {
		name      string
		year      int
		region    string
		want      domain.Selection
		wantField string
	}{
		{"defaults", 0, "", domain.Selection{Year: 2023, Region: "계"}, ""},
		{"explicit", 2022, "서울", domain.Selection{Year: 2022, Region: "서울"}, ""},
		{"region only", 0, "부산", domain.Selection{Year: 2023, Region: "부산"}, ""},
		{"unknown year", 1999, "", domain.Selection{}, "year"},
		{"unknown region", 2023, "제주", domain.Selection{}, "region"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveSelection(table, tt.year, tt.region, "계")
			if tt.wantField != "" {
				var selErr *SelectionError
				require.ErrorAs(t, err, &selErr)
				assert.Equal(t, tt.wantField, selErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveSelectionAggregateAlwaysValid(t *testing.T) {
	table := &domain.Table{Records: []domain.Record{{Year: 2023, Region: "서울"}}}

	sel, err := ResolveSelection(table, 2023, "계", "계")
	require.NoError(t, err)
	assert.Equal(t, "계", sel.Region)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "0"},
		{950, "950"},
		{1000, "1,000"},
		{1234567.4, "1,234,567"},
		{28432.5, "28,432"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCount(tt.value))
	}

	assert.Equal(t, "5.00%", FormatRate(5))
	assert.Equal(t, "3.33%", FormatRate(100.0/30))
}
