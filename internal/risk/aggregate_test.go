package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/area-risk/internal/model"
)

func TestAggregate_SumsPerTuple(t *testing.T) {
	records := []model.CrimeRecord{
		{City: "Mumbai", Area: "Andheri", Latitude: 19.11, Longitude: 72.84, CrimeFrequency: 12},
		{City: "Mumbai", Area: "Andheri", Latitude: 19.11, Longitude: 72.84, CrimeFrequency: 3},
		{City: "Mumbai", Area: "Andheri", Latitude: 19.12, Longitude: 72.84, CrimeFrequency: 1},
		{City: "Delhi", Area: "Saket", Latitude: 28.52, Longitude: 77.21, CrimeFrequency: 7},
	}

	areas := Aggregate(records)
	require.Len(t, areas, 3)

	assert.Equal(t, "Andheri", areas[0].Area)
	assert.InDelta(t, 15, areas[0].CrimeFrequency, 1e-9)
	assert.Equal(t, "Saket", areas[1].Area)
	assert.InDelta(t, 1, areas[2].CrimeFrequency, 1e-9)
	assert.InDelta(t, 19.12, areas[2].Latitude, 1e-9)
	for _, a := range areas {
		assert.Empty(t, a.RiskLevel)
	}
}

func TestAggregate_RowCountEqualsDistinctTuples(t *testing.T) {
	var records []model.CrimeRecord
	cities := []string{"Pune", "Delhi", "Chennai"}
	for i := 0; i < 60; i++ {
		records = append(records, model.CrimeRecord{
			City:           cities[i%3],
			Area:           []string{"North", "South"}[i%2],
			Latitude:       float64(i % 4),
			Longitude:      1,
			CrimeFrequency: float64(i),
		})
	}

	distinct := make(map[model.AreaKey]bool)
	var total float64
	for _, r := range records {
		distinct[r.Key()] = true
		total += r.CrimeFrequency
	}

	areas := Aggregate(records)
	assert.Len(t, areas, len(distinct))

	var got float64
	for _, a := range areas {
		got += a.CrimeFrequency
	}
	assert.InDelta(t, total, got, 1e-9)
}

func TestAggregate_OrderIndependentValues(t *testing.T) {
	records := []model.CrimeRecord{
		{City: "B", Area: "y", CrimeFrequency: 2},
		{City: "A", Area: "x", CrimeFrequency: 5},
		{City: "B", Area: "y", CrimeFrequency: 3},
		{City: "C", Area: "z", CrimeFrequency: 5},
	}
	reversed := make([]model.CrimeRecord, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	assert.Equal(t, Aggregate(records), Aggregate(reversed))

	areas := Aggregate(records)
	require.Len(t, areas, 3)
	// 5,5,5 all tie; key order decides
	assert.Equal(t, []string{"A", "B", "C"}, []string{areas[0].City, areas[1].City, areas[2].City})
}

func TestAggregate_Empty(t *testing.T) {
	areas := Aggregate(nil)
	assert.NotNil(t, areas)
	assert.Empty(t, areas)
}

func TestFrequencies(t *testing.T) {
	areas := []model.AreaAggregate{{CrimeFrequency: 3}, {CrimeFrequency: 9}}
	assert.Equal(t, []float64{3, 9}, Frequencies(areas))
}
