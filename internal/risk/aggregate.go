// Package risk aggregates crime records into per-area totals and derives
// per-city risk levels from classified areas.
package risk

import (
	"sort"

	"github.com/sells-group/area-risk/internal/model"
)

// Aggregate sums CrimeFrequency per (City, Area, Latitude, Longitude) and
// returns one row per group, most frequent first. Ties are ordered by the
// grouping key so the output is stable. RiskLevel is left unset.
func Aggregate(records []model.CrimeRecord) []model.AreaAggregate {
	idx := make(map[model.AreaKey]int, len(records))
	areas := make([]model.AreaAggregate, 0)

	for _, r := range records {
		k := r.Key()
		if i, ok := idx[k]; ok {
			areas[i].CrimeFrequency += r.CrimeFrequency
			continue
		}
		idx[k] = len(areas)
		areas = append(areas, model.AreaAggregate{
			City:           r.City,
			Area:           r.Area,
			Latitude:       r.Latitude,
			Longitude:      r.Longitude,
			CrimeFrequency: r.CrimeFrequency,
		})
	}

	sort.SliceStable(areas, func(i, j int) bool {
		a, b := areas[i], areas[j]
		if a.CrimeFrequency != b.CrimeFrequency {
			return a.CrimeFrequency > b.CrimeFrequency
		}
		return keyLess(a.Key(), b.Key())
	})
	return areas
}

// Frequencies returns the CrimeFrequency column of areas.
func Frequencies(areas []model.AreaAggregate) []float64 {
	out := make([]float64, len(areas))
	for i, a := range areas {
		out[i] = a.CrimeFrequency
	}
	return out
}

func keyLess(a, b model.AreaKey) bool {
	if a.City != b.City {
		return a.City < b.City
	}
	if a.Area != b.Area {
		return a.Area < b.Area
	}
	if a.Latitude != b.Latitude {
		return a.Latitude < b.Latitude
	}
	return a.Longitude < b.Longitude
}
