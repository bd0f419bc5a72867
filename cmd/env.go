package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/area-risk/internal/cluster"
	"github.com/sells-group/area-risk/internal/config"
	"github.com/sells-group/area-risk/internal/pipeline"
	"github.com/sells-group/area-risk/internal/store"
)

// storeConfig maps the model section of the config onto a store backend.
func storeConfig(c *config.Config) store.Config {
	return store.Config{
		Driver:      c.Model.Driver,
		Path:        c.Model.Path,
		DatabaseURL: c.Model.DatabaseURL,
		Name:        c.Model.Name,
	}
}

// pipelineOptions maps the dataset and cluster sections onto pipeline options.
func pipelineOptions(c *config.Config) pipeline.Options {
	return pipeline.Options{
		DatasetPath: c.Dataset.Path,
		Sheet:       c.Dataset.Sheet,
		Cluster: cluster.Options{
			K:       c.Cluster.K,
			Seed:    c.Cluster.Seed,
			NInit:   c.Cluster.NInit,
			MaxIter: c.Cluster.MaxIter,
		},
	}
}

// openStore opens the configured model store. Callers must Close it.
func openStore(ctx context.Context, c *config.Config) (store.ModelStore, error) {
	st, err := store.Open(ctx, storeConfig(c))
	if err != nil {
		return nil, eris.Wrap(err, "open model store")
	}
	return st, nil
}

// train runs the full pipeline against the configured store.
func train(ctx context.Context, c *config.Config) (*pipeline.State, error) {
	st, err := openStore(ctx, c)
	if err != nil {
		return nil, err
	}
	defer st.Close() //nolint:errcheck

	return pipeline.Run(ctx, pipelineOptions(c), st)
}
