package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"labordash/internal/shared/testutil"
	"labordash/pkg/contracts/domain"
)

func TestRates(t *testing.T) {
	tests := []struct {
		name           string
		record         domain.Record
		wantEmployment float64
		wantUnemploy   float64
	}{
		{
			name:           "national aggregate",
			record:         domain.Record{EconomicallyActive: 1000, Employed: 950, Unemployed: 50},
			wantEmployment: 95,
			wantUnemploy:   5,
		},
		{
			name:           "zero active population",
			record:         domain.Record{EconomicallyActive: 0, Employed: 10, Unemployed: 3},
			wantEmployment: 0,
			wantUnemploy:   0,
		},
		{
			name:           "negative active population",
			record:         domain.Record{EconomicallyActive: -5, Employed: 1, Unemployed: 1},
			wantEmployment: 0,
			wantUnemploy:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emp := EmploymentRate(tt.record)
			unemp := UnemploymentRate(tt.record)
			assert.InDelta(t, tt.wantEmployment, emp, 1e-9)
			assert.InDelta(t, tt.wantUnemploy, unemp, 1e-9)
			assert.False(t, math.IsNaN(emp) || math.IsNaN(unemp))
		})
	}
}

func TestZeroActiveIsExactlyZero(t *testing.T) {
	r := domain.Record{Region: "세종", EconomicallyActive: 0, Employed: 0, Unemployed: 0}
	assert.Equal(t, 0.0, UnemploymentRate(r))
	assert.Equal(t, 0.0, EmploymentRate(r))
}

func TestRegionalRates(t *testing.T) {
	table := testutil.SampleTable()

	got := RegionalRates(ByYear(table, 2022), "계")
	assert.Equal(t, []domain.RegionRate{
		{Region: "서울", EmploymentRate: 460.0 / 490 * 100, UnemploymentRate: 30.0 / 490 * 100},
		{Region: "부산", EmploymentRate: 0, UnemploymentRate: 0},
	}, got)
}

func TestRegionalRatesAggregateOnly(t *testing.T) {
	table := testutil.SampleTable()

	got := RegionalRates(ByYear(table, 2021), "계")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestComposition(t *testing.T) {
	share := Composition(domain.Record{EconomicallyActive: 1000, Employed: 950, Unemployed: 50})
	assert.InDelta(t, 95.0, share.EmployedShare, 1e-9)
	assert.InDelta(t, 5.0, share.UnemployedShare, 1e-9)

	empty := Composition(domain.Record{})
	assert.Equal(t, 0.0, empty.EmployedShare)
	assert.Equal(t, 0.0, empty.UnemployedShare)
}
