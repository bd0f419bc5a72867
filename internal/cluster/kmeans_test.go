package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sells-group/area-risk/internal/model"
)

func TestFit_ThreeValues(t *testing.T) {
	m, err := Fit([]float64{500, 5, 50}, Options{})
	require.NoError(t, err)

	assert.Equal(t, []float64{5, 50, 500}, m.Centroids)
	assert.Equal(t, []model.RiskLevel{model.RiskLow, model.RiskMedium, model.RiskHigh}, m.Levels)
	assert.Equal(t, model.RiskLow, m.Predict(5))
	assert.Equal(t, model.RiskMedium, m.Predict(50))
	assert.Equal(t, model.RiskHigh, m.Predict(500))
	assert.InDelta(t, 0, m.Inertia, 1e-9)
}

func TestFit_SeparatesGroups(t *testing.T) {
	values := []float64{1, 2, 3, 2, 40, 42, 41, 39, 200, 210, 190, 205}

	m, err := Fit(values, Options{})
	require.NoError(t, err)
	require.Len(t, m.Centroids, 3)

	assert.InDelta(t, 2, m.Centroids[0], 0.01)
	assert.InDelta(t, 40.5, m.Centroids[1], 0.01)
	assert.InDelta(t, 201.25, m.Centroids[2], 0.01)
	assert.Less(t, m.Centroids[0], m.Centroids[1])
	assert.Less(t, m.Centroids[1], m.Centroids[2])

	for _, v := range []float64{1, 2, 3} {
		assert.Equal(t, model.RiskLow, m.Predict(v))
	}
	for _, v := range []float64{39, 42} {
		assert.Equal(t, model.RiskMedium, m.Predict(v))
	}
	for _, v := range []float64{190, 210} {
		assert.Equal(t, model.RiskHigh, m.Predict(v))
	}
}

func TestFit_Deterministic(t *testing.T) {
	values := []float64{3, 17, 8, 95, 64, 12, 30, 41, 77, 5, 22, 58, 88, 14}

	a, err := Fit(values, Options{})
	require.NoError(t, err)
	b, err := Fit(values, Options{})
	require.NoError(t, err)

	assert.Equal(t, a.Centroids, b.Centroids)
	assert.Equal(t, a.Levels, b.Levels)
	assert.InDelta(t, a.Inertia, b.Inertia, 1e-12)
	for _, v := range values {
		assert.Equal(t, a.Predict(v), b.Predict(v))
	}
}

func TestFit_OrderingMatchesFrequency(t *testing.T) {
	values := []float64{10, 11, 12, 100, 101, 102, 1000, 1001}

	m, err := Fit(values, Options{})
	require.NoError(t, err)

	prev := -1
	for _, v := range values {
		score := m.Predict(v).Score()
		assert.GreaterOrEqual(t, score, prev, "risk must not decrease as frequency grows")
		prev = score
	}
}

func TestFit_TwoDistinctValues(t *testing.T) {
	m, err := Fit([]float64{5, 5, 50, 50}, Options{})
	require.NoError(t, err)

	assert.Equal(t, []float64{5, 50, 50}, m.Centroids)
	assert.Equal(t, []model.RiskLevel{model.RiskLow, model.RiskMedium, model.RiskMedium}, m.Levels)
	assert.Equal(t, model.RiskLow, m.Predict(5))
	assert.Equal(t, model.RiskMedium, m.Predict(50))
	assert.Equal(t, model.RiskMedium, m.Predict(5000))
}

func TestFit_SingleDistinctValue(t *testing.T) {
	m, err := Fit([]float64{7, 7, 7}, Options{})
	require.NoError(t, err)

	assert.Equal(t, []float64{7, 7, 7}, m.Centroids)
	for _, l := range m.Levels {
		assert.Equal(t, model.RiskLow, l)
	}
	assert.NoError(t, m.Validate())
}

func TestFit_Errors(t *testing.T) {
	_, err := Fit(nil, Options{})
	assert.ErrorIs(t, err, ErrNoSamples)

	_, err = Fit([]float64{1, 2, 3}, Options{K: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "k must be 3")
}

func TestPredict_TieGoesToLowerCentroid(t *testing.T) {
	m := &Model{
		Centroids: []float64{0, 10, 20},
		Levels:    []model.RiskLevel{model.RiskLow, model.RiskMedium, model.RiskHigh},
	}
	assert.Equal(t, model.RiskLow, m.Predict(5))
	assert.Equal(t, model.RiskMedium, m.Predict(15))
}

func TestClassify(t *testing.T) {
	m, err := Fit([]float64{5, 50, 500}, Options{})
	require.NoError(t, err)

	areas := []model.AreaAggregate{
		{City: "A", Area: "x", CrimeFrequency: 500},
		{City: "A", Area: "y", CrimeFrequency: 5},
		{City: "B", Area: "z", CrimeFrequency: 50},
	}
	m.Classify(areas)

	assert.Equal(t, model.RiskHigh, areas[0].RiskLevel)
	assert.Equal(t, model.RiskLow, areas[1].RiskLevel)
	assert.Equal(t, model.RiskMedium, areas[2].RiskLevel)
}

func TestLevelsFor(t *testing.T) {
	tests := []struct {
		name      string
		centroids []float64
		want      []model.RiskLevel
	}{
		{"distinct", []float64{1, 2, 3}, []model.RiskLevel{model.RiskLow, model.RiskMedium, model.RiskHigh}},
		{"low pair", []float64{1, 1, 3}, []model.RiskLevel{model.RiskLow, model.RiskLow, model.RiskHigh}},
		{"high pair", []float64{1, 3, 3}, []model.RiskLevel{model.RiskLow, model.RiskMedium, model.RiskMedium}},
		{"all equal", []float64{2, 2, 2}, []model.RiskLevel{model.RiskLow, model.RiskLow, model.RiskLow}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, levelsFor(tt.centroids))
		})
	}
}

// observeLogs routes the global logger into an in-memory recorder for the
// duration of the test.
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestFit_DegenerateWarning(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		warned bool
	}{
		{"two distinct", []float64{5, 50, 50}, true},
		{"one distinct", []float64{7, 7}, true},
		{"exactly k distinct", []float64{5, 50, 500}, false},
		{"more than k distinct", []float64{1, 2, 50, 51, 500}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := observeLogs(t)

			_, err := Fit(tt.values, Options{})
			require.NoError(t, err)

			warns := logs.FilterMessage("cluster: fewer distinct values than clusters").Len()
			if tt.warned {
				assert.Equal(t, 1, warns)
			} else {
				assert.Zero(t, warns)
			}
		})
	}
}
