package dashboard

import (
	"labordash/pkg/contracts/domain"
)

// Panel names, used for metrics and logging
const (
	PanelKPI         = "kpi"
	PanelTrend       = "trend"
	PanelComposition = "composition"
	PanelComparison  = "comparison"
	PanelRaw         = "raw"
)

// Notices shown in place of a panel whose input view is empty
const (
	NoticeNoSelection  = "선택한 조건에 해당하는 데이터가 없습니다."
	NoticeNoTrend      = "추이 데이터를 표시할 수 없습니다."
	NoticeNoComposite  = "구성 데이터를 표시할 수 없습니다."
	NoticeNoComparison = "지역별 비교 데이터를 표시할 수 없습니다."
	NoticeNoRows       = "표시할 데이터가 없습니다."
)

// Panel carries the empty state shared by every panel
type Panel struct {
	Title  string `json:"title"`
	Empty  bool   `json:"empty"`
	Notice string `json:"notice,omitempty"`
}

// ViewModel is everything the page needs for one selection
type ViewModel struct {
	Title       string           `json:"title"`
	Selection   domain.Selection `json:"selection"`
	Aggregate   string           `json:"aggregate"`
	Years       []int            `json:"years"`
	Regions     []string         `json:"regions"`
	Source      string           `json:"source"`
	Fingerprint string           `json:"fingerprint"`

	KPI         KPIPanel         `json:"kpi"`
	Trend       TrendPanel       `json:"trend"`
	Composition CompositionPanel `json:"composition"`
	Comparison  ComparisonPanel  `json:"comparison"`
	Raw         RawPanel         `json:"raw"`
}

// EmptyPanels lists the panels rendered in their empty state
func (vm ViewModel) EmptyPanels() []string {
	var out []string
	for _, p := range []struct {
		name  string
		empty bool
	}{
		{PanelKPI, vm.KPI.Empty},
		{PanelTrend, vm.Trend.Empty},
		{PanelComposition, vm.Composition.Empty},
		{PanelComparison, vm.Comparison.Empty},
		{PanelRaw, vm.Raw.Empty},
	} {
		if p.empty {
			out = append(out, p.name)
		}
	}
	return out
}

// KPI is one headline number
type KPI struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// KPIPanel holds the five headline numbers of the selected record
type KPIPanel struct {
	Panel
	Values []KPI `json:"values,omitempty"`
}

// TrendPoint is one year of the selected region's history
type TrendPoint struct {
	Year       int     `json:"year"`
	Employed   float64 `json:"employed"`
	Unemployed float64 `json:"unemployed"`
}

// TrendPanel holds the selected region's history in ascending year order
type TrendPanel struct {
	Panel
	Region string       `json:"region"`
	Points []TrendPoint `json:"points,omitempty"`
}

// Slice is one part of the composition chart
type Slice struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Share   float64 `json:"share"`
	Display string  `json:"display"`
}

// CompositionPanel splits the selected record into employed and unemployed
type CompositionPanel struct {
	Panel
	Slices []Slice `json:"slices,omitempty"`
}

// ComparisonPanel holds per-region rates for the selected year
type ComparisonPanel struct {
	Panel
	Year  int                 `json:"year"`
	Rates []domain.RegionRate `json:"rates,omitempty"`
}

// RawPanel is the whole table, unfiltered
type RawPanel struct {
	Panel
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}
