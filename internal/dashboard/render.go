package dashboard

import (
	"fmt"
	"strconv"

	"labordash/internal/dataprocessing"
	"labordash/pkg/contracts/domain"
)

// KPI labels, in display order
const (
	LabelActive       = "경제활동인구 (천명)"
	LabelEmployed     = "취업자 (천명)"
	LabelUnemployed   = "실업자 (천명)"
	LabelUnemployRate = "실업률 (%)"
	LabelEmployRate   = "고용률 (%)"

	SliceEmployed   = "취업자"
	SliceUnemployed = "실업자"
)

// Options configures rendering
type Options struct {
	// Aggregate is the sentinel region meaning the national total
	Aggregate string
}

// SelectionError reports a requested year or region that the table does
// not offer
type SelectionError struct {
	Field string
	Value string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("%s %q is not available", e.Field, e.Value)
}

// ResolveSelection fills in defaults and checks the request against the
// table. year 0 selects the most recent year and an empty region selects the
// aggregate.
func ResolveSelection(table *domain.Table, year int, region string, aggregate string) (domain.Selection, error) {
	years := dataprocessing.AvailableYears(table)

	sel := domain.Selection{Year: year, Region: region}
	if sel.Year == 0 {
		if len(years) > 0 {
			sel.Year = years[0]
		}
	} else if !containsInt(years, sel.Year) {
		return domain.Selection{}, &SelectionError{Field: "year", Value: strconv.Itoa(year)}
	}

	if sel.Region == "" {
		sel.Region = aggregate
	} else if sel.Region != aggregate && !dataprocessing.HasRegion(table, sel.Region) {
		return domain.Selection{}, &SelectionError{Field: "region", Value: region}
	}

	return sel, nil
}

// Render builds the view model for one selection. It is a pure function of
// its arguments; empty views produce panels in their empty state.
func Render(table *domain.Table, sel domain.Selection, opts Options) ViewModel {
	vm := ViewModel{
		Title:     fmt.Sprintf("%d년 %s 주요 지표", sel.Year, sel.Region),
		Selection: sel,
		Aggregate: opts.Aggregate,
		Years:     dataprocessing.AvailableYears(table),
		Regions:   dataprocessing.AvailableRegions(table, opts.Aggregate),
	}
	if table != nil {
		vm.Source = table.Source
		vm.Fingerprint = table.Fingerprint
	}

	point, found := dataprocessing.ByYearAndRegion(table, sel.Year, sel.Region)

	vm.KPI = renderKPI(point, found)
	vm.Trend = renderTrend(sel.Region, dataprocessing.ByRegion(table, sel.Region))
	vm.Composition = renderComposition(sel, point, found)
	vm.Comparison = renderComparison(sel.Year, dataprocessing.ByYear(table, sel.Year), opts.Aggregate)
	vm.Raw = renderRaw(table)

	return vm
}

func renderKPI(r domain.Record, found bool) KPIPanel {
	panel := KPIPanel{Panel: Panel{Title: "주요 지표"}}
	if !found {
		panel.Empty = true
		panel.Notice = NoticeNoSelection
		return panel
	}

	unemployment := dataprocessing.UnemploymentRate(r)
	employment := dataprocessing.EmploymentRate(r)
	panel.Values = []KPI{
		{Key: "economically_active", Label: LabelActive, Value: r.EconomicallyActive, Display: FormatCount(r.EconomicallyActive)},
		{Key: "employed", Label: LabelEmployed, Value: r.Employed, Display: FormatCount(r.Employed)},
		{Key: "unemployed", Label: LabelUnemployed, Value: r.Unemployed, Display: FormatCount(r.Unemployed)},
		{Key: "unemployment_rate", Label: LabelUnemployRate, Value: unemployment, Display: FormatRate(unemployment)},
		{Key: "employment_rate", Label: LabelEmployRate, Value: employment, Display: FormatRate(employment)},
	}
	return panel
}

func renderTrend(region string, regionSlice []domain.Record) TrendPanel {
	panel := TrendPanel{
		Panel:  Panel{Title: fmt.Sprintf("%s 연도별 추이", region)},
		Region: region,
	}

	// one point per year, first match wins
	seen := make(map[int]struct{}, len(regionSlice))
	for _, r := range dataprocessing.SortByYear(regionSlice) {
		if _, dup := seen[r.Year]; dup {
			continue
		}
		seen[r.Year] = struct{}{}
		panel.Points = append(panel.Points, TrendPoint{Year: r.Year, Employed: r.Employed, Unemployed: r.Unemployed})
	}

	if len(panel.Points) == 0 {
		panel.Empty = true
		panel.Notice = NoticeNoTrend
	}
	return panel
}

func renderComposition(sel domain.Selection, r domain.Record, found bool) CompositionPanel {
	panel := CompositionPanel{Panel: Panel{Title: fmt.Sprintf("%d년 %s 구성", sel.Year, sel.Region)}}

	share := dataprocessing.Composition(r)
	if !found || r.Employed+r.Unemployed <= 0 {
		panel.Empty = true
		panel.Notice = NoticeNoComposite
		return panel
	}

	panel.Slices = []Slice{
		{Label: SliceEmployed, Value: share.Employed, Share: share.EmployedShare, Display: FormatRate(share.EmployedShare)},
		{Label: SliceUnemployed, Value: share.Unemployed, Share: share.UnemployedShare, Display: FormatRate(share.UnemployedShare)},
	}
	return panel
}

func renderComparison(year int, yearSlice []domain.Record, aggregate string) ComparisonPanel {
	panel := ComparisonPanel{
		Panel: Panel{Title: fmt.Sprintf("%d년 지역별 고용률 · 실업률", year)},
		Year:  year,
		Rates: dataprocessing.RegionalRates(yearSlice, aggregate),
	}
	if len(panel.Rates) == 0 {
		panel.Rates = nil
		panel.Empty = true
		panel.Notice = NoticeNoComparison
	}
	return panel
}

func renderRaw(table *domain.Table) RawPanel {
	panel := RawPanel{Panel: Panel{Title: "전체 데이터 보기"}}
	if table == nil || table.Len() == 0 {
		panel.Empty = true
		panel.Notice = NoticeNoRows
		if table != nil {
			panel.Header = table.Header
		}
		return panel
	}
	panel.Header = table.Header
	panel.Rows = table.Rows()
	return panel
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
