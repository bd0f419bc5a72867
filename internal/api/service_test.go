package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/area-risk/internal/cluster"
	"github.com/sells-group/area-risk/internal/model"
	"github.com/sells-group/area-risk/internal/pipeline"
)

// testState builds a small classified state: Mumbai high, Delhi medium,
// Pune low.
func testState(t *testing.T) *pipeline.State {
	t.Helper()
	m, err := cluster.Fit([]float64{5, 50, 500}, cluster.Options{})
	require.NoError(t, err)

	areas := []model.AreaAggregate{
		{City: "Mumbai", Area: "Andheri", Latitude: 19.11, Longitude: 72.84, CrimeFrequency: 500},
		{City: "Mumbai", Area: "Bandra", Latitude: 19.05, Longitude: 72.82, CrimeFrequency: 500},
		{City: "Delhi", Area: "Saket", Latitude: 28.52, Longitude: 77.21, CrimeFrequency: 50},
		{City: "Pune", Area: "Kothrud", Latitude: 18.50, Longitude: 73.81, CrimeFrequency: 5},
	}
	return pipeline.Build(areas, m)
}

func TestService_CityRisk_All(t *testing.T) {
	svc := NewService(testState(t))

	cities, err := svc.CityRisk("")
	require.NoError(t, err)
	assert.Equal(t, []model.CityRisk{
		{City: "Delhi", PredictedRiskLevel: model.RiskMedium},
		{City: "Mumbai", PredictedRiskLevel: model.RiskHigh},
		{City: "Pune", PredictedRiskLevel: model.RiskLow},
	}, cities)
}

func TestService_CityRisk_CaseInsensitive(t *testing.T) {
	svc := NewService(testState(t))

	upper, err := svc.CityRisk("Mumbai")
	require.NoError(t, err)
	lower, err := svc.CityRisk("mumbai")
	require.NoError(t, err)
	shout, err := svc.CityRisk("MUMBAI")
	require.NoError(t, err)

	assert.Equal(t, upper, lower)
	assert.Equal(t, upper, shout)
	require.Len(t, upper, 1)
	assert.Equal(t, model.RiskHigh, upper[0].PredictedRiskLevel)
}

func TestService_CityRisk_NotFound(t *testing.T) {
	svc := NewService(testState(t))

	_, err := svc.CityRisk("Nowhereville")
	assert.ErrorIs(t, err, ErrCityNotFound)

	// exact match only, no prefix matching
	_, err = svc.CityRisk("Mum")
	assert.ErrorIs(t, err, ErrCityNotFound)
}

func TestService_AreaRisk_Filtered(t *testing.T) {
	svc := NewService(testState(t))

	areas, err := svc.AreaRisk("mUmBaI")
	require.NoError(t, err)
	require.Len(t, areas, 2)
	for _, a := range areas {
		assert.Equal(t, "Mumbai", a.City)
		assert.Equal(t, model.RiskHigh, a.RiskLevel)
		assert.Nil(t, a.CrimeFrequency)
	}
}

func TestService_AreaRisk_All(t *testing.T) {
	state := testState(t)
	svc := NewService(state)

	areas, err := svc.AreaRisk("")
	require.NoError(t, err)
	require.Len(t, areas, len(state.Areas))
	require.NotNil(t, areas[0].CrimeFrequency)
	assert.InDelta(t, 500, *areas[0].CrimeFrequency, 1e-9)
}

func TestService_AreaRisk_NotFound(t *testing.T) {
	svc := NewService(testState(t))

	_, err := svc.AreaRisk("Nowhereville")
	assert.ErrorIs(t, err, ErrAreasNotFound)
}

func TestService_UnicodeFold(t *testing.T) {
	m, err := cluster.Fit([]float64{1, 2, 3}, cluster.Options{})
	require.NoError(t, err)
	state := pipeline.Build([]model.AreaAggregate{{City: "Évry", Area: "Centre", CrimeFrequency: 2}}, m)
	svc := NewService(state)

	got, err := svc.CityRisk("ÉVRY")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Évry", got[0].City)
}

func TestAreaFeatures(t *testing.T) {
	freq := 12.0
	fc := AreaFeatures([]AreaView{
		{City: "Pune", Area: "Kothrud", RiskLevel: model.RiskLow, Latitude: 18.5, Longitude: 73.8, CrimeFrequency: &freq},
	})

	require.Len(t, fc.Features, 1)
	f := fc.Features[0]
	assert.Equal(t, []float64{73.8, 18.5}, f.Geometry.FlatCoords())
	assert.Equal(t, "Kothrud", f.Properties["Area"])
	assert.Equal(t, model.RiskLow, f.Properties["Risk Level"])
	assert.InDelta(t, 12.0, f.Properties["Crime Frequency"], 1e-9)
}
