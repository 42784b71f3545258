package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/reflectivity.report/internal/db"
	"github.com/banshee-data/reflectivity.report/internal/train"
)

func sampleEvaluation() *train.Evaluation {
	ev := &train.Evaluation{
		Accuracy:    0.75,
		Predictions: []int{0, 1, 1, 3},
		Truth:       []int{0, 1, 2, 3},
	}
	ev.Confusion[0][0] = 1
	ev.Confusion[1][1] = 1
	ev.Confusion[2][1] = 1
	ev.Confusion[3][3] = 1
	for label := 0; label < 10; label++ {
		ev.Classes = append(ev.Classes, train.ClassMetrics{Label: label, Precision: 1, Recall: 1, F1: 1, Support: 1})
	}
	ev.MacroAvg = train.ClassMetrics{Label: -1, Precision: 0.5, Recall: 0.5, F1: 0.5, Support: 4}
	ev.WeightedAvg = train.ClassMetrics{Label: -1, Precision: 0.6, Recall: 0.75, F1: 0.65, Support: 4}
	return ev
}

func samplePoints() []train.SweepPoint {
	return []train.SweepPoint{
		{K: 1, TrainAccuracy: 1, TestAccuracy: 0.9},
		{K: 2, TrainAccuracy: 0.97, TestAccuracy: 0.92},
		{K: 3, TrainAccuracy: 0.95, TestAccuracy: 0.93},
	}
}

func TestWriteConfusion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteConfusion(&buf, sampleEvaluation().Confusion))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 11)
	assert.True(t, strings.HasPrefix(lines[0], "true\\pred"))
	assert.Equal(t, []string{"2", "0", "1", "0", "0", "0", "0", "0", "0", "0", "0"}, strings.Fields(lines[3]))
}

func TestWriteClassificationReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteClassificationReport(&buf, sampleEvaluation()))
	out := buf.String()

	assert.Contains(t, out, "precision")
	assert.Contains(t, out, "accuracy")
	assert.Contains(t, out, "macro avg")
	assert.Contains(t, out, "weighted avg")
	assert.Contains(t, out, "0.75")
	assert.Contains(t, out, "0.65")
}

func TestWritePredictions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePredictions(&buf, sampleEvaluation()))
	assert.Equal(t, "predicted: [0 1 1 3]\nactual:    [0 1 2 3]\n", buf.String())
}

func TestWriteSweep(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSweep(&buf, samplePoints()))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"2", "0.9700", "0.9200"}, strings.Fields(lines[2]))
}

func TestWriteRuns(t *testing.T) {
	runs := []db.TrainingRun{{
		RunID:         "0f7d1c2e-0000-4000-8000-000000000001",
		CreatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		DatasetDigest: "0123456789abcdef",
		DatasetRows:   200,
		Neighbours:    10,
		Accuracy:      0.95,
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteRuns(&buf, runs))
	out := buf.String()
	assert.Contains(t, out, "2026-03-01T12:00:00Z")
	assert.Contains(t, out, "0123456789ab")
	assert.NotContains(t, out, "0123456789abc")
}

func TestComplexityCurvePNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	path, err := ComplexityCurvePNG(samplePoints(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "model_complexity.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	_, err = ComplexityCurvePNG(nil, dir)
	assert.Error(t, err)
}

func TestTrainingPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TrainingPage(&buf, samplePoints(), sampleEvaluation()))
	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "Model complexity")
	assert.Contains(t, out, "F1 per digit")

	buf.Reset()
	require.NoError(t, TrainingPage(&buf, samplePoints(), nil))
	assert.NotContains(t, buf.String(), "F1 per digit")

	assert.Error(t, TrainingPage(&buf, nil, nil))
}
