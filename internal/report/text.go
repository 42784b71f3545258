// Package report renders training results: plain-text tables for the
// terminal, a PNG model-complexity curve, and an HTML chart page.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/banshee-data/reflectivity.report/internal/db"
	"github.com/banshee-data/reflectivity.report/internal/features"
	"github.com/banshee-data/reflectivity.report/internal/train"
)

// WriteConfusion prints the matrix with true labels down the side and
// predicted labels across the top.
func WriteConfusion(w io.Writer, m train.ConfusionMatrix) error {
	var b strings.Builder
	b.WriteString("true\\pred")
	for p := 0; p < features.NumClasses; p++ {
		fmt.Fprintf(&b, "%5d", p)
	}
	b.WriteByte('\n')
	for t := 0; t < features.NumClasses; t++ {
		fmt.Fprintf(&b, "%9d", t)
		for p := 0; p < features.NumClasses; p++ {
			fmt.Fprintf(&b, "%5d", m[t][p])
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteClassificationReport prints precision, recall, F1 and support per
// label followed by accuracy and the macro and weighted averages.
func WriteClassificationReport(w io.Writer, ev *train.Evaluation) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%12s %9s %9s %9s %9s\n\n", "", "precision", "recall", "f1-score", "support")
	for _, c := range ev.Classes {
		fmt.Fprintf(&b, "%12d %9.2f %9.2f %9.2f %9d\n", c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%12s %9s %9s %9.2f %9d\n", "accuracy", "", "", ev.Accuracy, ev.MacroAvg.Support)
	for _, row := range []struct {
		name string
		m    train.ClassMetrics
	}{
		{"macro avg", ev.MacroAvg},
		{"weighted avg", ev.WeightedAvg},
	} {
		fmt.Fprintf(&b, "%12s %9.2f %9.2f %9.2f %9d\n", row.name, row.m.Precision, row.m.Recall, row.m.F1, row.m.Support)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WritePredictions prints the test-set predictions in order, then the
// true labels beneath them.
func WritePredictions(w io.Writer, ev *train.Evaluation) error {
	_, err := fmt.Fprintf(w, "predicted: %s\nactual:    %s\n", joinInts(ev.Predictions), joinInts(ev.Truth))
	return err
}

// WriteSweep prints one line per k of the complexity curve.
func WriteSweep(w io.Writer, points []train.SweepPoint) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%4s %10s %10s\n", "k", "train", "test")
	for _, p := range points {
		fmt.Fprintf(&b, "%4d %10.4f %10.4f\n", p.K, p.TrainAccuracy, p.TestAccuracy)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteRuns prints a summary line per recorded training run.
func WriteRuns(w io.Writer, runs []db.TrainingRun) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%-36s  %-20s  %5s  %3s  %8s  %-12s\n", "run", "created", "rows", "k", "accuracy", "dataset")
	for _, r := range runs {
		digest := r.DatasetDigest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		fmt.Fprintf(&b, "%-36s  %-20s  %5d  %3d  %8.4f  %-12s\n",
			r.RunID, r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"), r.DatasetRows, r.Neighbours, r.Accuracy, digest)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
