package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/area-risk/internal/cluster"
	"github.com/sells-group/area-risk/internal/config"
	"github.com/sells-group/area-risk/internal/model"
	"github.com/sells-group/area-risk/internal/pipeline"
)

const testCSV = `City,Area,Latitude,Longitude,Crime Frequency
Mumbai,Andheri,19.11,72.84,500
Delhi,Saket,28.52,77.21,50
Pune,Kothrud,18.50,73.81,5
`

// testConfig returns a valid config rooted in a temp dir with the sample
// dataset written to it.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	dataset := filepath.Join(dir, "crime_dataset.csv")
	require.NoError(t, os.WriteFile(dataset, []byte(testCSV), 0o644))

	return &config.Config{
		Dataset: config.DatasetConfig{Path: dataset},
		Model: config.ModelConfig{
			Driver: "file",
			Path:   filepath.Join(dir, "kmeans_model.json"),
			Name:   "risk",
		},
		Cluster: config.ClusterConfig{K: 3, Seed: 42, NInit: 10, MaxIter: 300},
		Server:  config.ServerConfig{Host: "0.0.0.0", Port: 5000, RateBurst: 20, CORSOrigins: []string{"*"}},
		Log:     config.LogConfig{Level: "info", Format: "json"},
	}
}

func testState(t *testing.T) *pipeline.State {
	t.Helper()
	m, err := cluster.Fit([]float64{5, 50, 500}, cluster.Options{})
	require.NoError(t, err)
	return pipeline.Build([]model.AreaAggregate{
		{City: "Mumbai", Area: "Andheri", Latitude: 19.11, Longitude: 72.84, CrimeFrequency: 500},
		{City: "Delhi", Area: "Saket", Latitude: 28.52, Longitude: 77.21, CrimeFrequency: 50},
		{City: "Pune", Area: "Kothrud", Latitude: 18.50, Longitude: 73.81, CrimeFrequency: 5},
	}, m)
}
