package cluster

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/area-risk/internal/model"
)

// Model is a fitted clustering: ascending centroids and the risk level each
// one maps to.
type Model struct {
	Version   int
	ID        string
	K         int
	Seed      int64
	Centroids []float64
	Levels    []model.RiskLevel
	Inertia   float64
	Samples   int
	FittedAt  time.Time
}

// Predict returns the risk level of the centroid nearest to v.
func (m *Model) Predict(v float64) model.RiskLevel {
	return m.Levels[nearest(v, m.Centroids)]
}

// Classify assigns a risk level to every area in place.
func (m *Model) Classify(areas []model.AreaAggregate) {
	for i := range areas {
		areas[i].RiskLevel = m.Predict(areas[i].CrimeFrequency)
	}
}

// Validate checks the structural invariants of the model.
func (m *Model) Validate() error {
	if m == nil {
		return eris.New("cluster: nil model")
	}
	if len(m.Centroids) != DefaultK {
		return eris.Errorf("cluster: expected %d centroids, got %d", DefaultK, len(m.Centroids))
	}
	if len(m.Levels) != len(m.Centroids) {
		return eris.Errorf("cluster: %d levels for %d centroids", len(m.Levels), len(m.Centroids))
	}
	for i := 1; i < len(m.Centroids); i++ {
		if m.Centroids[i] < m.Centroids[i-1] {
			return eris.New("cluster: centroids not in ascending order")
		}
	}
	for _, l := range m.Levels {
		if !l.Valid() {
			return eris.Errorf("cluster: invalid risk level %q", l)
		}
	}
	return nil
}

func (m *Model) inertia(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += nearestDistSq(v, m.Centroids)
	}
	return total
}
