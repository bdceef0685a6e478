package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/san-kum/mbsim/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testResult() *dynamo.Result {
	return &dynamo.Result{
		States: []dynamo.State{
			{1.0, 0.0},
			{0.99926425, -0.14713},
			{0.9970571, -0.2941},
		},
		Controls: []dynamo.Control{
			{0.0},
			{0.25},
		},
		Times:       []float64{0.0, 0.01, 0.02},
		Metrics:     map[string]float64{"energy": -2.65},
		EnergyDrift: 1e-9,
		StepsTaken:  2,
	}
}

func testRun() Run {
	return Run{
		Model:      "pendulum",
		Params:     map[string]float64{"mass": 1, "length": 1},
		Integrator: "rk4",
		Controller: "pid",
		Dt:         0.01,
		Duration:   0.02,
		Seed:       42,
	}
}

func newStore(t *testing.T) *Store {
	t.Helper()
	st := New(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, st.Init())
	return st
}

func TestSaveLoad(t *testing.T) {
	st := newStore(t)

	runID, err := st.Save(testRun(), testResult())
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^pendulum_[0-9a-f]{8}$`), runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, testRun(), meta.Run)
	assert.Equal(t, 2, meta.Steps)
	assert.Equal(t, -2.65, meta.Metrics["energy"])
}

func TestLoadStatesRoundTrips(t *testing.T) {
	st := newStore(t)
	want := testResult()

	runID, err := st.Save(testRun(), want)
	require.NoError(t, err)

	states, times, err := st.LoadStates(runID)
	require.NoError(t, err)
	assert.Equal(t, want.Times, times)
	require.Len(t, states, 3)
	assert.Equal(t, []float64{0.99926425, -0.14713, 0.25}, states[1])
	assert.Equal(t, []float64{0.9970571, -0.2941, 0}, states[2])
}

func TestLoadResult(t *testing.T) {
	st := newStore(t)
	want := testResult()

	runID, err := st.Save(testRun(), want)
	require.NoError(t, err)

	got, err := st.LoadResult(runID)
	require.NoError(t, err)
	assert.Equal(t, want.States, got.States)
	assert.Equal(t, want.Controls, got.Controls)
	assert.Equal(t, want.Times, got.Times)
	assert.Equal(t, want.Metrics, got.Metrics)
	assert.Equal(t, 2, got.StepsTaken)
}

func TestSaveFailureLeavesNoRunDir(t *testing.T) {
	st := newStore(t)
	res := testResult()
	// a diverged run; encoding/json rejects NaN
	res.EnergyDrift = math.NaN()

	id, err := st.Save(testRun(), res)
	require.Error(t, err)
	assert.Empty(t, id)

	entries, err := os.ReadDir(st.baseDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestUniqueIDs(t *testing.T) {
	st := newStore(t)
	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		id, err := st.Save(testRun(), testResult())
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}

	runs, err := st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 5)
}

func TestListSkipsForeignDirs(t *testing.T) {
	st := newStore(t)
	_, err := st.Save(testRun(), testResult())
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(st.baseDir, "junk"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(st.baseDir, "notes.txt"), []byte("x"), 0644))

	runs, err := st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"), nil)
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestLoadMissing(t *testing.T) {
	st := newStore(t)
	_, err := st.Load("pendulum_deadbeef")
	assert.Error(t, err)
	_, err = st.LoadResult("pendulum_deadbeef")
	assert.Error(t, err)
}

func TestLoadResultRejectsCorruptCSV(t *testing.T) {
	st := newStore(t)
	runID, err := st.Save(testRun(), testResult())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(st.CSVPath(runID), []byte("time,x0\n0,abc\n"), 0644))
	_, err = st.LoadResult(runID)
	assert.ErrorContains(t, err, "line 2 column 2")
}

func TestExportJSON(t *testing.T) {
	st := newStore(t)
	runID, err := st.Save(testRun(), testResult())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.ExportJSON(runID, &buf))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, runID, got["id"])
	assert.Equal(t, "pendulum", got["model"])
	assert.Equal(t, "rk4", got["integrator"])
	assert.Len(t, got["states"], 3)
	assert.Len(t, got["controls"], 2)
	assert.Len(t, got["times"], 3)
}
