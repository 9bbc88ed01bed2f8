package dataprocessing

import (
	"labordash/pkg/contracts/domain"
)

// rate returns part as a percentage of whole, or exactly 0 when whole is not
// positive
func rate(part, whole float64) float64 {
	if whole > 0 {
		return part / whole * 100
	}
	return 0
}

// UnemploymentRate is unemployed / economically active * 100
func UnemploymentRate(r domain.Record) float64 {
	return rate(r.Unemployed, r.EconomicallyActive)
}

// EmploymentRate is employed / economically active * 100
func EmploymentRate(r domain.Record) float64 {
	return rate(r.Employed, r.EconomicallyActive)
}

// RegionalRates computes the rate pair of every non-aggregate record of a
// year slice, in slice order. Regions with no active population keep a
// zero entry.
func RegionalRates(yearSlice []domain.Record, aggregate string) []domain.RegionRate {
	out := make([]domain.RegionRate, 0, len(yearSlice))
	for _, r := range yearSlice {
		if r.Region == aggregate {
			continue
		}
		out = append(out, domain.RegionRate{
			Region:           r.Region,
			EmploymentRate:   EmploymentRate(r),
			UnemploymentRate: UnemploymentRate(r),
		})
	}
	return out
}

// Share is the employed/unemployed split of a record for composition
// charts. Shares are percentages of employed+unemployed.
type Share struct {
	Employed        float64 `json:"employed"`
	Unemployed      float64 `json:"unemployed"`
	EmployedShare   float64 `json:"employed_share"`
	UnemployedShare float64 `json:"unemployed_share"`
}

// Composition splits a record into employed and unemployed shares
func Composition(r domain.Record) Share {
	total := r.Employed + r.Unemployed
	return Share{
		Employed:        r.Employed,
		Unemployed:      r.Unemployed,
		EmployedShare:   rate(r.Employed, total),
		UnemployedShare: rate(r.Unemployed, total),
	}
}
