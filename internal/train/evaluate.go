package train

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/reflectivity.report/internal/features"
	"github.com/banshee-data/reflectivity.report/internal/knn"
)

// ConfusionMatrix counts predictions; rows are true labels and columns
// predicted labels.
type ConfusionMatrix [features.NumClasses][features.NumClasses]int

// RowSum returns the number of samples whose true label is label.
func (m ConfusionMatrix) RowSum(label int) int {
	n := 0
	for _, v := range m[label] {
		n += v
	}
	return n
}

// ColSum returns the number of samples predicted as label.
func (m ConfusionMatrix) ColSum(label int) int {
	n := 0
	for i := range m {
		n += m[i][label]
	}
	return n
}

// ClassMetrics are the per-label entries of a classification report.
type ClassMetrics struct {
	Label     int
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Evaluation summarises a classifier's performance on one partition.
type Evaluation struct {
	Accuracy    float64
	Predictions []int
	Truth       []int
	Confusion   ConfusionMatrix
	Classes     []ClassMetrics
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
}

// Evaluate predicts every row and scores the result.
func Evaluate(c *knn.Classifier, rows []features.Row) (*Evaluation, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot evaluate an empty partition")
	}
	X, y := Vectors(rows)
	pred, err := c.PredictAll(X)
	if err != nil {
		return nil, err
	}

	ev := &Evaluation{
		Accuracy:    knn.Accuracy(y, pred),
		Predictions: pred,
		Truth:       y,
	}
	for i := range y {
		ev.Confusion[y[i]][pred[i]]++
	}

	precision := make([]float64, features.NumClasses)
	recall := make([]float64, features.NumClasses)
	f1 := make([]float64, features.NumClasses)
	support := make([]float64, features.NumClasses)
	for label := 0; label < features.NumClasses; label++ {
		tp := float64(ev.Confusion[label][label])
		precision[label] = ratio(tp, float64(ev.Confusion.ColSum(label)))
		recall[label] = ratio(tp, float64(ev.Confusion.RowSum(label)))
		f1[label] = ratio(2*precision[label]*recall[label], precision[label]+recall[label])
		support[label] = float64(ev.Confusion.RowSum(label))
		ev.Classes = append(ev.Classes, ClassMetrics{
			Label:     label,
			Precision: precision[label],
			Recall:    recall[label],
			F1:        f1[label],
			Support:   ev.Confusion.RowSum(label),
		})
	}

	total := floats.Sum(support)
	n := float64(features.NumClasses)
	ev.MacroAvg = ClassMetrics{
		Label:     -1,
		Precision: floats.Sum(precision) / n,
		Recall:    floats.Sum(recall) / n,
		F1:        floats.Sum(f1) / n,
		Support:   int(total),
	}
	ev.WeightedAvg = ClassMetrics{
		Label:     -1,
		Precision: floats.Dot(precision, support) / total,
		Recall:    floats.Dot(recall, support) / total,
		F1:        floats.Dot(f1, support) / total,
		Support:   int(total),
	}
	return ev, nil
}

// ratio returns a/b, or 0 when b is zero.
func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// SweepPoint is one entry of the model-complexity curve.
type SweepPoint struct {
	K             int
	TrainAccuracy float64
	TestAccuracy  float64
}

// SweepNeighbours fits a classifier for every k in [kMin, kMax] and records
// its accuracy on both partitions.
func SweepNeighbours(s Split, kMin, kMax int) ([]SweepPoint, error) {
	if err := validateSweep(kMin, kMax, len(s.Train)); err != nil {
		return nil, err
	}
	trainX, trainY := Vectors(s.Train)
	testX, testY := Vectors(s.Test)

	points := make([]SweepPoint, 0, kMax-kMin+1)
	for k := kMin; k <= kMax; k++ {
		c, err := knn.New(k)
		if err != nil {
			return nil, err
		}
		if err := c.Fit(trainX, trainY); err != nil {
			return nil, fmt.Errorf("k=%d: %w", k, err)
		}
		trainAcc, err := c.Score(trainX, trainY)
		if err != nil {
			return nil, fmt.Errorf("k=%d: %w", k, err)
		}
		testAcc, err := c.Score(testX, testY)
		if err != nil {
			return nil, fmt.Errorf("k=%d: %w", k, err)
		}
		points = append(points, SweepPoint{K: k, TrainAccuracy: trainAcc, TestAccuracy: testAcc})
	}
	return points, nil
}

// validateSweep checks that every k in [kMin, kMax] can be fitted to
// trainRows rows.
func validateSweep(kMin, kMax, trainRows int) error {
	if kMin < 1 || kMax < kMin {
		return fmt.Errorf("invalid k range [%d, %d]", kMin, kMax)
	}
	if kMax > trainRows {
		return fmt.Errorf("k=%d exceeds %d training rows", kMax, trainRows)
	}
	return nil
}
