package risk

import (
	"math"
	"sort"

	"github.com/sells-group/area-risk/internal/model"
)

// CityRisks derives one risk level per city: the mean of its areas' ordinal
// scores rounded half to even (0.5 -> Low, 1.5 -> High). Cities are returned
// in ascending name order.
//
// areas must already be classified (cluster.Model.Classify); only then is
// there exactly one row per distinct City. Areas without a valid RiskLevel
// are ignored, and a city with none of them is omitted.
func CityRisks(areas []model.AreaAggregate) []model.CityRisk {
	type tally struct {
		sum, n int
	}
	byCity := make(map[string]*tally)
	for _, a := range areas {
		score := a.RiskLevel.Score()
		if score < 0 {
			continue
		}
		t, ok := byCity[a.City]
		if !ok {
			t = &tally{}
			byCity[a.City] = t
		}
		t.sum += score
		t.n++
	}

	cities := make([]string, 0, len(byCity))
	for c := range byCity {
		cities = append(cities, c)
	}
	sort.Strings(cities)

	out := make([]model.CityRisk, 0, len(cities))
	for _, c := range cities {
		t := byCity[c]
		out = append(out, model.CityRisk{
			City:               c,
			PredictedRiskLevel: RoundScore(float64(t.sum) / float64(t.n)),
		})
	}
	return out
}

// RoundScore rounds a mean ordinal score half to even and maps it back to a
// level, clamped to the known range.
func RoundScore(mean float64) model.RiskLevel {
	s := int(math.RoundToEven(mean))
	s = max(0, min(s, len(model.RiskLevels)-1))
	level, err := model.RiskLevelFromScore(s)
	if err != nil {
		panic(err) // unreachable after clamping
	}
	return level
}
