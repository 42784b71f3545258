// Package train splits a feature dataset, fits the digit classifier, and
// evaluates it.
package train

import (
	"fmt"

	"github.com/banshee-data/reflectivity.report/internal/features"
	"github.com/banshee-data/reflectivity.report/internal/knn"
	"github.com/banshee-data/reflectivity.report/internal/monitoring"
)

// DefaultNeighbours is the k used for the persisted model.
const DefaultNeighbours = 10

// Default model-complexity sweep range.
const (
	DefaultSweepMinK = 1
	DefaultSweepMaxK = 11
)

// Trainer runs one training pass. The zero value is not usable; set at
// least Neighbours and TestFraction.
type Trainer struct {
	TestFraction float64
	Seed         uint64
	Neighbours   int
	// SweepMinK and SweepMaxK bound the complexity sweep. A zero SweepMaxK
	// skips the sweep.
	SweepMinK int
	SweepMaxK int
	// ModelPath is where the fitted model is written. Empty skips writing.
	ModelPath string
}

// NewTrainer returns a Trainer with the default parameters.
func NewTrainer(modelPath string) *Trainer {
	return &Trainer{
		TestFraction: DefaultTestFraction,
		Seed:         DefaultSeed,
		Neighbours:   DefaultNeighbours,
		SweepMinK:    DefaultSweepMinK,
		SweepMaxK:    DefaultSweepMaxK,
		ModelPath:    modelPath,
	}
}

// Outcome is everything a training pass produced.
type Outcome struct {
	Split      Split
	Model      *knn.Classifier
	ModelPath  string
	Evaluation *Evaluation
	Sweep      []SweepPoint
}

// Run validates and splits rows, fits the classifier, writes the model,
// evaluates it on the test partition and sweeps k. Nothing is written
// unless the split succeeds, the fit is valid and the sweep range fits the
// training partition.
func (t *Trainer) Run(rows []features.Row) (*Outcome, error) {
	split, err := StratifiedSplit(rows, t.TestFraction, t.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to split dataset: %w", err)
	}
	monitoring.Logf("split %d rows: %d train, %d test (seed %d)", len(rows), len(split.Train), len(split.Test), t.Seed)

	model, err := knn.New(t.Neighbours)
	if err != nil {
		return nil, err
	}
	X, y := Vectors(split.Train)
	if err := model.Fit(X, y); err != nil {
		return nil, fmt.Errorf("failed to fit classifier: %w", err)
	}

	if t.SweepMaxK > 0 {
		if err := validateSweep(t.SweepMinK, t.SweepMaxK, len(split.Train)); err != nil {
			return nil, fmt.Errorf("failed to sweep k: %w", err)
		}
	}

	out := &Outcome{Split: split, Model: model}
	if t.ModelPath != "" {
		if err := model.SaveFile(t.ModelPath); err != nil {
			return nil, err
		}
		out.ModelPath = t.ModelPath
		monitoring.Logf("model written to %s", t.ModelPath)
	}

	out.Evaluation, err = Evaluate(model, split.Test)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate: %w", err)
	}
	monitoring.Debugf("test accuracy with k=%d: %.4f", t.Neighbours, out.Evaluation.Accuracy)

	if t.SweepMaxK > 0 {
		out.Sweep, err = SweepNeighbours(split, t.SweepMinK, t.SweepMaxK)
		if err != nil {
			return nil, fmt.Errorf("failed to sweep k: %w", err)
		}
	}
	return out, nil
}
