// Package pipeline runs the load, aggregate, cluster and city-risk steps once
// at startup and produces the immutable tables served by the API.
package pipeline

import (
	"context"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/area-risk/internal/cluster"
	"github.com/sells-group/area-risk/internal/dataset"
	"github.com/sells-group/area-risk/internal/model"
	"github.com/sells-group/area-risk/internal/risk"
	"github.com/sells-group/area-risk/internal/store"
)

// Options configures a pipeline run.
type Options struct {
	DatasetPath string
	Sheet       string
	Cluster     cluster.Options
}

// State is the application state built once at startup. Nothing mutates it
// afterwards, so handlers may read it concurrently without locking.
type State struct {
	Areas  []model.AreaAggregate
	Cities []model.CityRisk
	Model  *cluster.Model
}

// Run loads the dataset, fits and persists the model, reloads it from the
// store and classifies areas and cities with the reloaded copy.
func Run(ctx context.Context, opts Options, st store.ModelStore) (*State, error) {
	log := zap.L().With(zap.String("dataset", opts.DatasetPath))
	start := time.Now()

	records, err := dataset.Load(ctx, opts.DatasetPath, dataset.Options{Sheet: opts.Sheet})
	if err != nil {
		return nil, err
	}

	areas := risk.Aggregate(records)
	log.Info("pipeline: aggregated areas",
		zap.Int("records", len(records)),
		zap.Int("areas", len(areas)),
	)

	fitted, err := cluster.Fit(risk.Frequencies(areas), opts.Cluster)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fit")
	}

	if err := st.Save(ctx, fitted); err != nil {
		return nil, err
	}
	loaded, err := st.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !sameModel(fitted, loaded) {
		return nil, &store.PersistenceError{
			Backend: "verify",
			Op:      "load",
			Err:     eris.Errorf("reloaded model %s differs from fitted model %s", loaded.ID, fitted.ID),
		}
	}

	state := Build(areas, loaded)
	log.Info("pipeline: complete",
		zap.String("model_id", loaded.ID),
		zap.Int("cities", len(state.Cities)),
		zap.Any("levels", state.LevelCounts()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return state, nil
}

// Classify loads the dataset and classifies it with the model already held by
// st. Nothing is fitted or saved.
func Classify(ctx context.Context, opts Options, st store.ModelStore) (*State, error) {
	records, err := dataset.Load(ctx, opts.DatasetPath, dataset.Options{Sheet: opts.Sheet})
	if err != nil {
		return nil, err
	}
	m, err := st.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Build(risk.Aggregate(records), m), nil
}

// Build classifies areas with m and derives city risks. areas is modified in
// place.
func Build(areas []model.AreaAggregate, m *cluster.Model) *State {
	m.Classify(areas)
	return &State{
		Areas:  areas,
		Cities: risk.CityRisks(areas),
		Model:  m,
	}
}

// LevelCounts returns how many areas fall in each risk level.
func (s *State) LevelCounts() map[model.RiskLevel]int {
	counts := make(map[model.RiskLevel]int, len(model.RiskLevels))
	for _, a := range s.Areas {
		counts[a.RiskLevel]++
	}
	return counts
}

func sameModel(a, b *cluster.Model) bool {
	return a.ID == b.ID &&
		slices.Equal(a.Centroids, b.Centroids) &&
		slices.Equal(a.Levels, b.Levels)
}
