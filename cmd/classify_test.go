package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrequencies(t *testing.T) {
	got, err := parseFrequencies([]string{"5", "50.5", "1e3"})
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 50.5, 1000}, got)

	_, err = parseFrequencies([]string{"abc"})
	assert.Error(t, err)

	_, err = parseFrequencies([]string{"-1"})
	assert.Error(t, err)
}

func TestPrintLevels(t *testing.T) {
	var buf bytes.Buffer
	printLevels(&buf, testState(t).Model, []float64{5, 50, 500, 1000})

	assert.Equal(t, "5\tLow\n50\tMedium\n500\tHigh\n1000\tHigh\n", buf.String())
}

func TestTrain_PersistsForClassify(t *testing.T) {
	c := testConfig(t)
	trained, err := train(t.Context(), c)
	require.NoError(t, err)

	st, err := openStore(t.Context(), c)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	loaded, err := st.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, trained.Model.ID, loaded.ID)
	assert.Equal(t, trained.Model.Centroids, loaded.Centroids)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, testState(t))

	out := buf.String()
	assert.Contains(t, out, "3 areas, 3 cities")
	assert.Contains(t, out, "centroid 0: 5 -> Low")
	assert.Contains(t, out, "centroid 2: 500 -> High")
	assert.Contains(t, out, "Medium: 1\n")
}
