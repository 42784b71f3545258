package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/reflectivity.report/internal/config"
	"github.com/banshee-data/reflectivity.report/internal/fsutil"
	"github.com/banshee-data/reflectivity.report/internal/knn"
	"github.com/banshee-data/reflectivity.report/internal/monitoring"
	"github.com/banshee-data/reflectivity.report/internal/testutil"
	"github.com/banshee-data/reflectivity.report/internal/timeutil"
)

var testEpoch = time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)

// newTestApp lays out a workspace with one five-sweep raw log per digit.
func newTestApp(t *testing.T) (*app, string, *bytes.Buffer) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = original })

	dir := t.TempDir()
	rawDir := filepath.Join(dir, "raw")
	require.NoError(t, os.MkdirAll(rawDir, 0755))
	for d := 0; d < 10; d++ {
		log := testutil.RawLog(testutil.RawSweeps(5, testutil.DigitProfile(d)))
		require.NoError(t, os.WriteFile(filepath.Join(rawDir, fmt.Sprintf("train%d.csv", d)), []byte(log), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(rawDir, "notes.txt"), []byte("not a log"), 0644))

	cfg := config.EmptyPipelineConfig()
	cfg.RawDir = config.PtrString(rawDir)
	cfg.CleanDir = config.PtrString(filepath.Join(dir, "clean"))
	cfg.ModelPath = config.PtrString(filepath.Join(dir, "model", "knn.json"))
	cfg.PlotsDir = config.PtrString("")

	var out bytes.Buffer
	return &app{
		cfg:    cfg,
		dbPath: filepath.Join(dir, "runs.db"),
		fs:     fsutil.OSFileSystem{},
		clock:  timeutil.NewFixedClock(testEpoch),
		out:    &out,
	}, dir, &out
}

func TestCleanTrainAndListRuns(t *testing.T) {
	a, dir, out := newTestApp(t)

	require.NoError(t, a.dispatch("clean", nil))
	assert.Contains(t, out.String(), "train7.csv")
	assert.NotContains(t, out.String(), "notes.txt")
	assert.Contains(t, out.String(), "(50 rows, sha256 ")
	_, err := os.Stat(filepath.Join(dir, "clean", "train3.csv"))
	require.NoError(t, err)

	out.Reset()
	plots := filepath.Join(dir, "plots")
	metricsFile := filepath.Join(dir, "reflectivity.prom")
	require.NoError(t, a.dispatch("train", []string{"-plots", plots, "-metrics", metricsFile}))
	text := out.String()
	assert.Contains(t, text, "train rows: 35, test rows: 15")
	assert.Contains(t, text, "predicted: [")
	assert.Contains(t, text, "weighted avg")

	model, err := knn.LoadFile(filepath.Join(dir, "model", "knn.json"))
	require.NoError(t, err)
	assert.Equal(t, 10, model.K())

	for _, name := range []string{"model_complexity.png", "model_complexity.html"} {
		_, err := os.Stat(filepath.Join(plots, name))
		assert.NoError(t, err, name)
	}
	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "reflectivity_model_test_accuracy")

	out.Reset()
	require.NoError(t, a.dispatch("runs", []string{"-limit", "5"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2, "header plus one run")
	assert.Contains(t, lines[1], "2024-03-14T09:30:00Z")
}

func TestTrainRejectsMissingClass(t *testing.T) {
	a, dir, _ := newTestApp(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "raw", "train4.csv")))
	require.NoError(t, a.dispatch("clean", nil))

	err := a.dispatch("train", []string{"-record=false"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing a digit class")

	_, statErr := os.Stat(filepath.Join(dir, "model", "knn.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCleanReportsMalformedFiles(t *testing.T) {
	a, dir, _ := newTestApp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw", "trainX.csv"), []byte("angle, reflectivity\n1, 2\n"), 0644))

	err := a.dispatch("clean", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trainX.csv")

	_, statErr := os.Stat(filepath.Join(dir, "clean", "training_dataset.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestMigrateAndVersionCommands(t *testing.T) {
	a, _, out := newTestApp(t)

	require.NoError(t, a.dispatch("migrate", []string{"up"}))
	require.NoError(t, a.dispatch("migrate", []string{"status"}))
	assert.Contains(t, out.String(), "Current version: 2")

	out.Reset()
	require.NoError(t, a.dispatch("version", nil))
	assert.True(t, strings.HasPrefix(out.String(), "reflectivity dev"))
}

func TestUnknownCommand(t *testing.T) {
	a, _, _ := newTestApp(t)
	err := a.dispatch("fly", nil)
	assert.ErrorIs(t, err, errUnknownCommand)
}

func TestCaptureRequiresPort(t *testing.T) {
	a, _, _ := newTestApp(t)
	assert.Error(t, a.dispatch("capture", []string{"-label", "3"}))
}
