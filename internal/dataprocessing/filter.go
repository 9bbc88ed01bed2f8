package dataprocessing

import (
	"sort"

	"labordash/pkg/contracts/domain"
)

// ByYear returns all records of the given year
func ByYear(table *domain.Table, year int) []domain.Record {
	if table == nil {
		return nil
	}
	var out []domain.Record
	for _, r := range table.Records {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}

// ByRegion returns all records of the given region across years
func ByRegion(table *domain.Table, region string) []domain.Record {
	if table == nil {
		return nil
	}
	var out []domain.Record
	for _, r := range table.Records {
		if r.Region == region {
			out = append(out, r)
		}
	}
	return out
}

// ByYearAndRegion returns the first record matching both year and region.
// Later duplicates are ignored.
func ByYearAndRegion(table *domain.Table, year int, region string) (domain.Record, bool) {
	if table == nil {
		return domain.Record{}, false
	}
	for _, r := range table.Records {
		if r.Year == year && r.Region == region {
			return r, true
		}
	}
	return domain.Record{}, false
}

// AvailableYears returns the distinct years, most recent first
func AvailableYears(table *domain.Table) []int {
	if table == nil {
		return nil
	}
	seen := make(map[int]struct{})
	years := make([]int, 0)
	for _, r := range table.Records {
		if _, ok := seen[r.Year]; ok {
			continue
		}
		seen[r.Year] = struct{}{}
		years = append(years, r.Year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// AvailableRegions returns the aggregate region followed by the distinct
// non-aggregate regions in first-seen order. The aggregate is listed even
// when the table has no row for it, since it is the default selection.
func AvailableRegions(table *domain.Table, aggregate string) []string {
	regions := []string{aggregate}
	if table == nil {
		return regions
	}
	seen := map[string]struct{}{aggregate: {}}
	for _, r := range table.Records {
		if _, ok := seen[r.Region]; ok {
			continue
		}
		seen[r.Region] = struct{}{}
		regions = append(regions, r.Region)
	}
	return regions
}

// HasRegion reports whether any record belongs to region
func HasRegion(table *domain.Table, region string) bool {
	if table == nil {
		return false
	}
	for _, r := range table.Records {
		if r.Region == region {
			return true
		}
	}
	return false
}

// DuplicateKeys returns every (year, region) pair that occurs more than
// once, in order of first repetition
func DuplicateKeys(table *domain.Table) []domain.RecordKey {
	if table == nil {
		return nil
	}
	counts := make(map[domain.RecordKey]int, len(table.Records))
	var dups []domain.RecordKey
	for _, r := range table.Records {
		k := r.Key()
		counts[k]++
		if counts[k] == 2 {
			dups = append(dups, k)
		}
	}
	return dups
}

// SortByYear returns a copy of records ordered by ascending year. Records of
// the same year keep their relative order.
func SortByYear(records []domain.Record) []domain.Record {
	out := make([]domain.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
