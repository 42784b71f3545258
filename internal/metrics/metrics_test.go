package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/reflectivity.report/internal/dataset"
	"github.com/banshee-data/reflectivity.report/internal/features"
	"github.com/banshee-data/reflectivity.report/internal/knn"
	"github.com/banshee-data/reflectivity.report/internal/train"
)

func TestObserveDataset(t *testing.T) {
	r := NewRecorder()
	res := &dataset.Result{
		Files: []dataset.FileResult{
			{Source: "train1.csv", TailBuckets: 12},
			{Source: "train2.csv"},
			{Source: "train3.csv", TailBuckets: 3},
		},
		Rows: []features.Row{{Target: 1}, {Target: 1}, {Target: 2}},
	}
	r.ObserveDataset(res, time.Unix(1700000000, 0))

	assert.Equal(t, 3.0, promtestutil.ToFloat64(r.datasetRows))
	assert.Equal(t, 3.0, promtestutil.ToFloat64(r.datasetFiles))
	assert.Equal(t, 2.0, promtestutil.ToFloat64(r.rowsPerTarget.WithLabelValues("1")))
	assert.Equal(t, 0.0, promtestutil.ToFloat64(r.rowsPerTarget.WithLabelValues("7")))
	assert.Equal(t, 2.0, promtestutil.ToFloat64(r.discardedSweeps))
	assert.Equal(t, 15.0, promtestutil.ToFloat64(r.discardedBuckets))
	assert.Equal(t, 1700000000.0, promtestutil.ToFloat64(r.datasetBuiltUnix))
}

func TestObserveTrainingAndWriteTextfile(t *testing.T) {
	model, err := knn.New(3)
	require.NoError(t, err)
	require.NoError(t, model.Fit([][]float64{{0}, {1}, {2}}, []int{0, 1, 2}))

	out := &train.Outcome{
		Split:      train.Split{Train: make([]features.Row, 14), Test: make([]features.Row, 6)},
		Model:      model,
		Evaluation: &train.Evaluation{Accuracy: 0.9, Classes: []train.ClassMetrics{{Label: 4, F1: 0.8}}},
		Sweep:      []train.SweepPoint{{K: 1, TrainAccuracy: 1, TestAccuracy: 0.85}},
	}

	r := NewRecorder()
	r.ObserveTraining(out, time.Unix(1700000100, 0))

	assert.Equal(t, 3.0, promtestutil.ToFloat64(r.modelNeighbours))
	assert.Equal(t, 0.9, promtestutil.ToFloat64(r.modelAccuracy))
	assert.Equal(t, 14.0, promtestutil.ToFloat64(r.trainRows))
	assert.Equal(t, 0.8, promtestutil.ToFloat64(r.classF1.WithLabelValues("4")))
	assert.Equal(t, 0.85, promtestutil.ToFloat64(r.sweepAccuracy.WithLabelValues("1", "test")))

	path := filepath.Join(t.TempDir(), "reflectivity.prom")
	require.NoError(t, r.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `reflectivity_model_sweep_accuracy{k="1",partition="train"} 1`)
	assert.Contains(t, string(data), "reflectivity_model_test_accuracy 0.9")
}
